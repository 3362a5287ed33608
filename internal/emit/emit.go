// Package emit renders the exported name set as a module interface body or as
// a flat list of names.
package emit

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/phobologic/modgen/internal/model"
	"github.com/phobologic/modgen/internal/symbols"
)

// Options control rendering.
type Options struct {
	// OnlyNames prints one qualified name per line instead of export blocks.
	OnlyNames bool
	// Module, when set, prefixes the export blocks with a module declaration.
	Module string
}

// Group buckets names by their immediate enclosing namespace. Groups are
// ordered by namespace and entries by local name.
func Group(names model.NameSet, aliases model.AliasMap) model.NamespaceGroups {
	buckets := make(map[string][]model.ExportedName)
	for name := range names {
		ns, local := symbols.Parent(name)
		buckets[ns] = append(buckets[ns], model.ExportedName{
			Local:       local,
			AliasTarget: aliases[name],
		})
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make(model.NamespaceGroups, 0, len(keys))
	for _, k := range keys {
		entries := buckets[k]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Local < entries[j].Local
		})
		groups = append(groups, model.NamespaceGroup{Namespace: k, Entries: entries})
	}
	return groups
}

// Names writes one name per line in lexicographic order.
func Names(w io.Writer, names model.NameSet) error {
	var b strings.Builder
	for _, n := range names.Sorted() {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Module writes the export statements for groups.
func Module(w io.Writer, groups model.NamespaceGroups, module string) error {
	var b strings.Builder
	if module != "" {
		fmt.Fprintf(&b, "export module %s;\n\n", module)
	}

	for _, g := range groups {
		if len(g.Entries) == 0 {
			continue
		}
		root := g.Namespace == ""
		if !root {
			fmt.Fprintf(&b, "export namespace %s {\n", g.Namespace)
		}
		for _, e := range g.Entries {
			if root {
				b.WriteString("export ")
			} else {
				b.WriteString("  ")
			}
			b.WriteString(statement(g.Namespace, e))
			b.WriteByte('\n')
		}
		if !root {
			b.WriteString("}\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func statement(ns string, e model.ExportedName) string {
	if e.AliasTarget != "" {
		return fmt.Sprintf("namespace %s = %s;", e.Local, e.AliasTarget)
	}
	fqn := e.Local
	if ns != "" {
		fqn = ns + symbols.Separator + e.Local
	}
	return fmt.Sprintf("using ::%s;", fqn)
}

// Render writes names in the format selected by opts.
func Render(w io.Writer, names model.NameSet, aliases model.AliasMap, opts Options) error {
	if opts.OnlyNames {
		return Names(w, names)
	}
	return Module(w, Group(names, aliases), opts.Module)
}
