// Package clangjson builds declaration trees from the JSON AST that clang
// prints with -Xclang -ast-dump=json.
package clangjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phobologic/modgen/internal/decl"
	"github.com/phobologic/modgen/internal/symbols"
)

// ErrNotTranslationUnit is returned when the document root is not a
// TranslationUnitDecl.
var ErrNotTranslationUnit = errors.New("not a translation unit")

type qualType struct {
	QualType string `json:"qualType"`
}

type declRef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// node is the subset of a clang JSON AST node that modgen reads.
type node struct {
	ID                  string    `json:"id"`
	Kind                string    `json:"kind"`
	Name                string    `json:"name"`
	TagUsed             string    `json:"tagUsed"`
	IsImplicit          bool      `json:"isImplicit"`
	IsInline            bool      `json:"isInline"`  // NamespaceDecl
	HasBraces           bool      `json:"hasBraces"` // LinkageSpecDecl
	Inline              bool      `json:"inline"`    // FunctionDecl, VarDecl
	Constexpr           bool      `json:"constexpr"`
	StorageClass        string    `json:"storageClass"`
	Type                *qualType `json:"type"`
	ParentDeclContextID string    `json:"parentDeclContextId"`
	AliasedNamespace    *declRef  `json:"aliasedNamespace"`
	Inner               []*node   `json:"inner"`
}

var kinds = map[string]decl.Kind{
	"NamespaceDecl":                          decl.Namespace,
	"LinkageSpecDecl":                        decl.Unexposed,
	"ExportDecl":                             decl.Unexposed,
	"FunctionDecl":                           decl.Function,
	"FunctionTemplateDecl":                   decl.FunctionTemplate,
	"VarDecl":                                decl.Variable,
	"VarTemplateDecl":                        decl.Unexposed,
	"EnumDecl":                               decl.Enum,
	"TypedefDecl":                            decl.Typedef,
	"TypeAliasDecl":                          decl.TypeAlias,
	"TypeAliasTemplateDecl":                  decl.TypeAliasTemplate,
	"ClassTemplateDecl":                      decl.ClassTemplate,
	"ClassTemplatePartialSpecializationDecl": decl.ClassTemplatePartialSpecialization,
	"ConceptDecl":                            decl.Concept,
	"UsingDecl":                              decl.UsingDeclaration,
	"NamespaceAliasDecl":                     decl.NamespaceAlias,
	"CXXMethodDecl":                          decl.Method,
	"CXXConstructorDecl":                     decl.Method,
	"CXXDestructorDecl":                      decl.Method,
	"CXXConversionDecl":                      decl.Method,
}

var tagKinds = map[string]decl.Kind{
	"struct":    decl.Struct,
	"class":     decl.Class,
	"union":     decl.Union,
	"interface": decl.Struct,
}

// kindOf maps a clang node kind to a declaration kind. ok is false for nodes
// that are not declarations.
func kindOf(n *node) (decl.Kind, bool) {
	switch n.Kind {
	case "CXXRecordDecl", "RecordDecl", "ClassTemplateSpecializationDecl":
		if k, ok := tagKinds[n.TagUsed]; ok {
			return k, true
		}
		return decl.Struct, true
	}
	if k, ok := kinds[n.Kind]; ok {
		return k, true
	}
	if strings.HasSuffix(n.Kind, "Decl") {
		return decl.Other, true
	}
	return decl.Invalid, false
}

type pendingParent struct {
	d  *decl.Decl
	id string
}

type pendingAlias struct {
	d   *decl.Decl
	ref *declRef
}

// builder converts the JSON tree and resolves id references once every
// declaration has been seen.
type builder struct {
	byID    map[string]*decl.Decl
	aliases map[string]*declRef // alias id -> its target
	parents []pendingParent
	pending []pendingAlias
	unknown *decl.Decl
	// declaredExtern is set inside a LinkageSpecDecl without braces.
	declaredExtern bool
}

// Parse reads a clang JSON AST dump and returns its translation unit.
func Parse(r io.Reader) (*decl.Decl, error) {
	var root node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decoding clang AST: %w", err)
	}
	if root.Kind != "TranslationUnitDecl" {
		return nil, fmt.Errorf("%w: root is %q", ErrNotTranslationUnit, root.Kind)
	}

	b := &builder{
		byID:    make(map[string]*decl.Decl),
		aliases: make(map[string]*declRef),
	}
	tu := decl.NewTranslationUnit()
	b.byID[root.ID] = tu
	b.scope(tu, &root, false)
	b.resolve()
	return tu, nil
}

func (b *builder) scope(parent *decl.Decl, n *node, anonymous bool) {
	for _, c := range n.Inner {
		if c == nil || c.IsImplicit {
			continue
		}
		kind, ok := kindOf(c)
		if !ok {
			continue
		}
		b.add(parent, c, kind, anonymous)
	}
}

func (b *builder) add(parent *decl.Decl, n *node, kind decl.Kind, inAnonymous bool) {
	name := n.Name
	switch kind {
	case decl.Unexposed:
		if n.Kind == "LinkageSpecDecl" || n.Kind == "ExportDecl" {
			name = ""
		}
	case decl.UsingDeclaration:
		_, name = symbols.Parent(name)
	}

	d := parent.Add(decl.New(kind, name))
	if n.ID != "" {
		b.byID[n.ID] = d
	}
	if n.ParentDeclContextID != "" {
		b.parents = append(b.parents, pendingParent{d: d, id: n.ParentDeclContextID})
	}

	switch kind {
	case decl.Namespace:
		anonymous := n.Name == ""
		d.SetAnonymous(anonymous).SetInline(n.IsInline)
		b.scope(d, n, inAnonymous || anonymous)
	case decl.Unexposed:
		if name == "" {
			prev := b.declaredExtern
			b.declaredExtern = n.Kind == "LinkageSpecDecl" && !n.HasBraces
			b.scope(d, n, inAnonymous)
			b.declaredExtern = prev
		}
	case decl.Struct, decl.Class, decl.Union, decl.Enum:
		d.SetAnonymous(n.Name == "")
	case decl.Function:
		d.SetLinkage(functionLinkage(n, inAnonymous))
	case decl.FunctionTemplate:
		d.SetLinkage(functionLinkage(templated(n, "FunctionDecl"), inAnonymous))
	case decl.Variable:
		d.SetLinkage(variableLinkage(n, inAnonymous, b.declaredExtern))
	case decl.NamespaceAlias:
		if n.AliasedNamespace != nil {
			b.aliases[n.ID] = n.AliasedNamespace
			b.pending = append(b.pending, pendingAlias{d: d, ref: n.AliasedNamespace})
		}
	}
}

// templated returns the declaration a template wraps, or n itself.
func templated(n *node, kind string) *node {
	for _, c := range n.Inner {
		if c != nil && c.Kind == kind {
			return c
		}
	}
	return n
}

func (b *builder) resolve() {
	for _, p := range b.parents {
		parent, ok := b.byID[p.id]
		if !ok {
			// A context outside the dump, such as a class whose members were
			// not traversed.
			if b.unknown == nil {
				b.unknown = decl.New(decl.Other, "")
			}
			parent = b.unknown
		}
		p.d.SetSemanticParent(parent)
	}

	for _, a := range b.pending {
		a.d.SetAliasTarget("namespace " + a.d.Spelling() + " = " + b.aliasTarget(a.ref))
	}
}

// aliasTarget follows alias chains to the aliased namespace and returns its
// qualified name.
func (b *builder) aliasTarget(ref *declRef) string {
	seen := make(map[string]bool)
	for ref != nil && !seen[ref.ID] {
		seen[ref.ID] = true
		if next, ok := b.aliases[ref.ID]; ok {
			ref = next
			continue
		}
		if d, ok := b.byID[ref.ID]; ok && d.Kind() == decl.Namespace {
			if name := symbols.QualifiedName(d); name != "" {
				return name
			}
		}
		break
	}
	if ref == nil {
		return ""
	}
	return ref.Name
}
