package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/modgen/internal/lang"
)

// declarator is the declared entity found by peeling a C declarator.
type declarator struct {
	name  string
	scope []string // qualifier segments of ns::Cls::name
	// function is set when the name is declared as a function, including
	// functions returning pointers (int *f()).
	function bool
	// indirect is set when the name is a pointer or reference, so a leading
	// const qualifies the pointee rather than the object.
	indirect     bool
	constPointer bool // T *const p
}

// unwrap peels pointer, reference, array, init and function declarators
// until it reaches the declared name.
func (b *builder) unwrap(n *sitter.Node) declarator {
	if n == nil {
		return declarator{}
	}

	switch n.Type() {
	case "identifier", "field_identifier", "type_identifier", "namespace_identifier":
		return declarator{name: b.text(n)}

	case "operator_name", "destructor_name", "operator_cast":
		return declarator{name: lang.CollapseWhitespace(b.text(n))}

	case "qualified_identifier", "qualified_type_identifier":
		d := b.unwrap(n.ChildByFieldName("name"))
		if scope := n.ChildByFieldName("scope"); scope != nil {
			if seg := b.scopeName(scope); seg != "" {
				d.scope = append([]string{seg}, d.scope...)
			}
		}
		return d

	case "template_function", "template_type", "template_method":
		return b.unwrap(n.ChildByFieldName("name"))

	case "function_declarator":
		d := b.unwrap(n.ChildByFieldName("declarator"))
		if !d.indirect {
			d.function = true
		}
		return d

	case "pointer_declarator", "reference_declarator":
		d := b.unwrap(innerDeclarator(n))
		if d.function || d.indirect {
			return d
		}
		d.indirect = true
		d.constPointer = n.Type() == "pointer_declarator" && hasQualifier(n, "const")
		return d

	case "array_declarator", "init_declarator", "parenthesized_declarator", "attributed_declarator":
		return b.unwrap(innerDeclarator(n))
	}
	return declarator{}
}

// scopeName returns the printed name of a qualifier segment.
func (b *builder) scopeName(n *sitter.Node) string {
	switch n.Type() {
	case "namespace_identifier", "type_identifier", "identifier":
		return b.text(n)
	case "template_type":
		if name := n.ChildByFieldName("name"); name != nil {
			return b.text(name)
		}
	}
	return ""
}

func innerDeclarator(n *sitter.Node) *sitter.Node {
	if d := n.ChildByFieldName("declarator"); d != nil {
		return d
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "type_qualifier", "attribute_declaration", "attribute_specifier", "ms_pointer_modifier", "ms_based_modifier":
			continue
		}
		return c
	}
	return nil
}

func hasQualifier(n *sitter.Node, qualifier string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "type_qualifier" {
			continue
		}
		for j := 0; j < int(c.ChildCount()); j++ {
			if c.Child(j).Type() == qualifier {
				return true
			}
		}
	}
	return false
}
