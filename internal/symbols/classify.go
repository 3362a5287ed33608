package symbols

import (
	"strings"

	"github.com/phobologic/modgen/internal/decl"
)

// Decision is the classifier's verdict for one node.
type Decision struct {
	Recurse   bool // descend into children
	Emit      bool // record as an exportable name
	Alias     bool // node is a namespace alias
	OutOfLine bool
}

// exportedKinds emit regardless of linkage.
var exportedKinds = map[decl.Kind]bool{
	decl.Struct:                             true,
	decl.Class:                              true,
	decl.Enum:                               true,
	decl.Union:                              true,
	decl.UsingDeclaration:                   true,
	decl.Typedef:                            true,
	decl.TypeAlias:                          true,
	decl.ClassTemplate:                      true,
	decl.ClassTemplatePartialSpecialization: true,
	decl.TypeAliasTemplate:                  true,
	decl.Concept:                            true,
}

// Classify decides whether n is a scope to descend into and whether it is an
// exportable symbol. fqn must be QualifiedName(n).
func Classify(n decl.Node, fqn string) Decision {
	var d Decision
	kind := n.Kind()
	name := n.Spelling()

	if kind == decl.TranslationUnit || kind == decl.Namespace || (kind == decl.Unexposed && name == "") {
		d.Recurse = true
	} else {
		d.OutOfLine = isOutOfLine(n)
	}

	switch {
	case kind == decl.Function || kind == decl.Variable || kind == decl.FunctionTemplate:
		d.Emit = n.Linkage() == decl.External
	case exportedKinds[kind]:
		d.Emit = true
	case kind == decl.Unexposed && name != "":
		d.Emit = true
	case kind == decl.NamespaceAlias:
		d.Alias = true
		d.Emit = true
	}

	// Printed names with spaces come from synthesized declarations
	// ("operator new", "(anonymous namespace)") and cannot be re-exported.
	if n.IsAnonymous() || d.OutOfLine || strings.Contains(fqn, " ") {
		d.Emit = false
	}
	return d
}

// isOutOfLine reports a declaration that is not a direct member of a
// namespace-like scope, or whose semantic scope differs from where it is
// written.
func isOutOfLine(n decl.Node) bool {
	sp := n.SemanticParent()
	if sp == nil {
		return false
	}
	if !sp.Kind().IsScope() {
		return true
	}
	lp := n.LexicalParent()
	return lp != nil && lp != sp
}
