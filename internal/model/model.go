// Package model defines core data structures for modgen.
package model

import "sort"

// NameSet is a set of fully qualified names. Order is irrelevant; Sorted
// re-establishes lexicographic order for emission.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s NameSet) Add(name string) { s[name] = struct{}{} }

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s NameSet) Len() int { return len(s) }

// Sorted returns the names in lexicographic order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AliasMap maps a namespace alias's qualified name to the qualified name of
// the namespace it targets.
type AliasMap map[string]string

// Keys returns the alias names in lexicographic order.
func (m AliasMap) Keys() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ExportedName is one entry of a namespace bucket. AliasTarget is set when the
// name is itself a namespace alias.
type ExportedName struct {
	Local       string
	AliasTarget string
}

// NamespaceGroup holds the exported names whose immediate enclosing namespace
// is Namespace. The root bucket has an empty Namespace.
type NamespaceGroup struct {
	Namespace string
	Entries   []ExportedName
}

// NamespaceGroups is ordered by Namespace.
type NamespaceGroups []NamespaceGroup

// Len returns the total number of entries across all groups.
func (g NamespaceGroups) Len() int {
	n := 0
	for i := range g {
		n += len(g[i].Entries)
	}
	return n
}
