package symbols

import (
	"strings"

	"github.com/phobologic/modgen/internal/decl"
)

// ResolveAlias returns the fully qualified target namespace of a namespace
// alias node. Providers print the whole declaration ("namespace fs =
// std::filesystem"), so only the text after the last space is kept.
func ResolveAlias(n decl.Node) string {
	target := strings.TrimSpace(n.PrettyAliasTarget())
	target = strings.TrimSuffix(target, ";")
	if idx := strings.LastIndexByte(target, ' '); idx >= 0 {
		target = target[idx+1:]
	}
	return strings.TrimPrefix(target, Separator)
}
