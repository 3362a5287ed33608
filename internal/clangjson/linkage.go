package clangjson

import (
	"strings"

	"github.com/phobologic/modgen/internal/decl"
)

func functionLinkage(n *node, inAnonymous bool) decl.Linkage {
	if n.StorageClass == "static" || inAnonymous {
		return decl.Internal
	}
	return decl.External
}

// variableLinkage applies the C++ rules for namespace-scope variables: const
// objects have internal linkage unless declared extern or inline. A variable
// directly inside a brace-less extern "C" counts as declared extern.
func variableLinkage(n *node, inAnonymous, declaredExtern bool) decl.Linkage {
	switch {
	case n.StorageClass == "static" || inAnonymous:
		return decl.Internal
	case n.StorageClass == "extern" || n.Inline || declaredExtern:
		return decl.External
	case n.Constexpr:
		return decl.Internal
	case n.Type != nil && isConstObject(n.Type.QualType):
		return decl.Internal
	}
	return decl.External
}

// isConstObject reports whether a printed type is const at the top level:
// "const int" and "char *const" are, "const char *" is not.
func isConstObject(t string) bool {
	t = strings.TrimSpace(t)
	if t == "" || strings.Contains(t, "volatile") {
		return false
	}
	if strings.HasSuffix(t, " const") || strings.HasSuffix(t, "*const") {
		return true
	}
	return strings.HasPrefix(t, "const ") && !strings.ContainsAny(t, "*&")
}
