// Package parse builds declaration trees from C and C++ sources using
// tree-sitter.
package parse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/modgen/internal/decl"
	"github.com/phobologic/modgen/internal/lang"
)

// Unit is one parsed source file.
type Unit struct {
	Path string
	Root *decl.Decl
	// HasErrors is set when tree-sitter recovered from syntax errors. Declarations
	// inside ERROR nodes are dropped.
	HasErrors bool
}

// File parses source and returns its translation unit. The parser must be
// created for l. filePath is only used for error messages.
func File(ctx context.Context, l *lang.Language, parser *sitter.Parser, source []byte, filePath string) (*Unit, error) {
	unit := &Unit{Path: filePath, Root: decl.NewTranslationUnit()}
	if len(source) == 0 {
		return unit, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	unit.HasErrors = root.HasError()

	b := &builder{source: source, cplusplus: l.Name == "cpp"}
	b.scope(unit.Root, root)
	return unit, nil
}

// Merge folds units into a single translation unit in the given order and
// resolves namespace alias targets across all of them.
func Merge(units []*Unit) *decl.Decl {
	root := decl.NewTranslationUnit()
	for _, u := range units {
		root.Merge(u.Root)
	}
	ResolveAliases(root)
	return root
}

type templateKind int

const (
	noTemplate templateKind = iota
	primaryTemplate
	explicitSpecialization
)

type builder struct {
	source    []byte
	cplusplus bool
	// declaredExtern is set while building the single declaration of a
	// brace-less extern "C", which counts as declared extern.
	declaredExtern bool
}

func (b *builder) text(n *sitter.Node) string {
	return lang.NodeText(n, b.source)
}

// scope adds the declarations found among the named children of n.
func (b *builder) scope(parent *decl.Decl, n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.item(parent, n.NamedChild(i))
	}
}

func (b *builder) item(parent *decl.Decl, n *sitter.Node) {
	switch n.Type() {
	case "namespace_definition":
		b.namespace(parent, n)
	case "linkage_specification", "export_declaration":
		block := parent.Add(decl.New(decl.Unexposed, ""))
		body := n.ChildByFieldName("body")
		if body == nil {
			b.scope(block, n)
		} else if body.Type() == "declaration_list" {
			b.scope(block, body)
		} else {
			prev := b.declaredExtern
			b.declaredExtern = n.Type() == "linkage_specification"
			b.item(block, body)
			b.declaredExtern = prev
		}
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef", "declaration_list":
		// Conditional blocks are transparent: both branches are kept.
		b.scope(parent, n)
	case "function_definition":
		b.function(parent, n, noTemplate)
	case "declaration":
		b.declaration(parent, n, noTemplate)
	case "template_declaration":
		b.template(parent, n)
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		b.record(parent, n, noTemplate)
	case "type_definition":
		b.typedef(parent, n)
	case "alias_declaration":
		b.typeAlias(parent, n, decl.TypeAlias)
	case "using_declaration":
		b.using(parent, n)
	case "namespace_alias_definition":
		b.namespaceAlias(parent, n)
	case "concept_definition":
		b.concept(parent, n)
	}
}

func (b *builder) namespace(parent *decl.Decl, n *sitter.Node) {
	inline := hasToken(n, "inline")
	body := n.ChildByFieldName("body")

	cur := parent
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		cur = parent.Add(decl.New(decl.Namespace, "").SetAnonymous(true).SetInline(inline))
	} else {
		for i, seg := range b.namespaceSegments(nameNode) {
			cur = cur.Add(decl.New(decl.Namespace, seg.name).SetInline(seg.inline || (i == 0 && inline)))
		}
	}

	if body != nil {
		b.scope(cur, body)
	}
}

type segment struct {
	name   string
	inline bool
}

// namespaceSegments splits a (possibly nested) namespace name such as
// a::inline b::c.
func (b *builder) namespaceSegments(n *sitter.Node) []segment {
	switch n.Type() {
	case "namespace_identifier", "identifier":
		return []segment{{name: b.text(n)}}
	}

	var segs []segment
	inline := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "inline":
			inline = true
		case "namespace_identifier", "identifier":
			segs = append(segs, segment{name: b.text(c), inline: inline})
			inline = false
		case "nested_namespace_specifier":
			segs = append(segs, b.namespaceSegments(c)...)
		}
	}
	return segs
}

func (b *builder) function(parent *decl.Decl, n *sitter.Node, tk templateKind) {
	d := b.unwrap(n.ChildByFieldName("declarator"))
	if d.name == "" {
		return
	}
	b.addFunction(parent, d, modifiers(n), tk)
}

func (b *builder) addFunction(parent *decl.Decl, d declarator, mods map[string]bool, tk templateKind) {
	kind := decl.Function
	if tk == primaryTemplate {
		kind = decl.FunctionTemplate
	}
	fn := decl.New(kind, d.name)
	b.placeQualified(parent, fn, d.scope)

	linkage := decl.External
	if mods["static"] || inAnonymousNamespace(parent) {
		linkage = decl.Internal
	}
	parent.Add(fn.SetLinkage(linkage))
}

func (b *builder) declaration(parent *decl.Decl, n *sitter.Node, tk templateKind) {
	if typ := n.ChildByFieldName("type"); typ != nil && isRecord(typ) && typ.ChildByFieldName("body") != nil {
		b.record(parent, typ, noTemplate)
	}

	mods := modifiers(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		d := b.unwrap(n.Child(i))
		if d.name == "" {
			continue
		}
		if d.function {
			b.addFunction(parent, d, mods, tk)
			continue
		}
		b.addVariable(parent, d, mods, tk)
	}
}

func (b *builder) addVariable(parent *decl.Decl, d declarator, mods map[string]bool, tk templateKind) {
	if tk == primaryTemplate {
		// Variable templates have no dedicated kind.
		v := decl.New(decl.Unexposed, d.name)
		b.placeQualified(parent, v, d.scope)
		parent.Add(v)
		return
	}

	v := decl.New(decl.Variable, d.name)
	b.placeQualified(parent, v, d.scope)

	// Namespace-scope const objects have internal linkage in C++ unless
	// declared extern or inline.
	constObject := mods["constexpr"] || (mods["const"] && !d.indirect) || d.constPointer
	linkage := decl.External
	switch {
	case mods["static"], inAnonymousNamespace(parent):
		linkage = decl.Internal
	case mods["extern"], mods["inline"], b.declaredExtern:
	case b.cplusplus && constObject:
		linkage = decl.Internal
	}
	parent.Add(v.SetLinkage(linkage))
}

func (b *builder) template(parent *decl.Decl, n *sitter.Node) {
	tk := primaryTemplate
	if params := n.ChildByFieldName("parameters"); params != nil && params.NamedChildCount() == 0 {
		tk = explicitSpecialization
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			b.record(parent, c, tk)
		case "declaration":
			b.declaration(parent, c, tk)
		case "function_definition":
			b.function(parent, c, tk)
		case "alias_declaration":
			b.typeAlias(parent, c, decl.TypeAliasTemplate)
		case "concept_definition":
			b.concept(parent, c)
		case "template_declaration":
			b.template(parent, c)
		default:
			continue
		}
		return
	}
}

var recordKinds = map[string]decl.Kind{
	"class_specifier":  decl.Class,
	"struct_specifier": decl.Struct,
	"union_specifier":  decl.Union,
	"enum_specifier":   decl.Enum,
}

func isRecord(n *sitter.Node) bool {
	_, ok := recordKinds[n.Type()]
	return ok
}

func (b *builder) record(parent *decl.Decl, n *sitter.Node, tk templateKind) {
	kind := recordKinds[n.Type()]

	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		parent.Add(decl.New(kind, "").SetAnonymous(true))
		return
	}

	if tk == primaryTemplate && kind != decl.Enum {
		kind = decl.ClassTemplate
		if nameNode.Type() == "template_type" {
			kind = decl.ClassTemplatePartialSpecialization
		}
	}

	d := b.unwrap(nameNode)
	rec := decl.New(kind, d.name)
	b.placeQualified(parent, rec, d.scope)
	parent.Add(rec)
}

func (b *builder) typedef(parent *decl.Decl, n *sitter.Node) {
	if typ := n.ChildByFieldName("type"); typ != nil && isRecord(typ) && typ.ChildByFieldName("body") != nil {
		b.record(parent, typ, noTemplate)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		if d := b.unwrap(n.Child(i)); d.name != "" {
			parent.Add(decl.New(decl.Typedef, d.name))
		}
	}
}

func (b *builder) typeAlias(parent *decl.Decl, n *sitter.Node, kind decl.Kind) {
	if name := n.ChildByFieldName("name"); name != nil {
		parent.Add(decl.New(kind, b.text(name)))
	}
}

func (b *builder) concept(parent *decl.Decl, n *sitter.Node) {
	if name := n.ChildByFieldName("name"); name != nil {
		parent.Add(decl.New(decl.Concept, b.text(name)))
	}
}

func (b *builder) using(parent *decl.Decl, n *sitter.Node) {
	// using namespace x; and using enum E; are directives, not declarations.
	if hasToken(n, "namespace") || hasToken(n, "enum") {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if d := b.unwrap(n.NamedChild(i)); d.name != "" {
			parent.Add(decl.New(decl.UsingDeclaration, d.name))
			return
		}
	}
}

func (b *builder) namespaceAlias(parent *decl.Decl, n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}

	var target strings.Builder
	seenEq := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.Type() == "=":
			seenEq = true
		case seenEq && c.Type() != ";":
			target.WriteString(b.text(c))
		}
	}

	written := strings.Join(strings.Fields(target.String()), "")
	parent.Add(decl.New(decl.NamespaceAlias, b.text(name)).SetAliasTarget(written))
}

// placeQualified gives d a semantic parent when it was declared with a
// qualified name (void ns::f() {}, struct A::B {}).
func (b *builder) placeQualified(parent, d *decl.Decl, scope []string) {
	if len(scope) == 0 {
		return
	}
	if ns := lookupNamespace(parent, scope); ns != nil {
		d.SetSemanticParent(ns)
		return
	}
	d.SetSemanticParent(decl.New(decl.Class, strings.Join(scope, "::")))
}

// lookupNamespace finds an already built namespace named by path, searching
// outwards from the enclosing scope.
func lookupNamespace(from *decl.Decl, path []string) *decl.Decl {
	for s := from; s != nil; s = s.Parent() {
		cur := s
		for _, seg := range path {
			if cur = cur.Find(decl.Namespace, seg); cur == nil {
				break
			}
		}
		if cur != nil {
			return cur
		}
	}
	return nil
}

func inAnonymousNamespace(d *decl.Decl) bool {
	for p := d; p != nil; p = p.Parent() {
		if p.Kind() == decl.Namespace && p.IsAnonymous() {
			return true
		}
	}
	return false
}

// modifiers collects storage classes and qualifiers written on a declaration.
func modifiers(n *sitter.Node) map[string]bool {
	mods := make(map[string]bool)
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.Type() == "storage_class_specifier" || c.Type() == "type_qualifier":
			for j := 0; j < int(c.ChildCount()); j++ {
				mods[c.Child(j).Type()] = true
			}
		case !c.IsNamed():
			mods[c.Type()] = true
		}
	}
	return mods
}

func hasToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() && c.Type() == token {
			return true
		}
	}
	return false
}
