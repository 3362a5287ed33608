// Package symbols walks a declaration tree and collects the fully qualified
// names of the declarations that a module interface can re-export.
package symbols

import (
	"strings"

	"github.com/phobologic/modgen/internal/decl"
)

// Separator joins the segments of a qualified name.
const Separator = "::"

// QualifiedName returns the root-to-leaf scope path of n following lexical
// parents. Inline namespaces and unnamed scopes contribute no segment. A node
// that cannot be qualified yields "".
func QualifiedName(n decl.Node) string {
	var path []string
	for cur := n; cur != nil; cur = cur.LexicalParent() {
		k := cur.Kind()
		if k == decl.Invalid || k == decl.TranslationUnit {
			break
		}
		if cur.IsInline() {
			continue
		}
		if name := cur.Spelling(); name != "" {
			path = append(path, name)
		}
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return strings.Join(path, Separator)
}

// Parent returns the enclosing scope of a qualified name and its last
// segment. Names without a separator live in the root scope "".
func Parent(fqn string) (scope, local string) {
	idx := strings.LastIndex(fqn, Separator)
	if idx < 0 {
		return "", fqn
	}
	return fqn[:idx], fqn[idx+len(Separator):]
}
