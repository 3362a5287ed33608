package parse

import (
	"strings"

	"github.com/phobologic/modgen/internal/decl"
	"github.com/phobologic/modgen/internal/symbols"
)

const anonymousKey = "{anon}"

// nsScope is one namespace, merged across every place it is reopened.
type nsScope struct {
	parent  string
	root    bool
	display string // printed qualified name, without inline or anonymous parts
	// namespaces maps a member name to its scope key.
	namespaces map[string]string
	// transparent lists inline and anonymous members, whose names are
	// visible from this scope.
	transparent []string
	aliases     map[string]*decl.Decl
}

type aliasResolver struct {
	scopes  map[string]*nsScope
	sites   []*decl.Decl
	scopeOf map[*decl.Decl]string
	done    map[*decl.Decl]resolved
	active  map[*decl.Decl]bool
}

type resolved struct {
	key     string // scope key of the target, empty when not found
	display string
}

// ResolveAliases rewrites the target of every namespace alias under root to
// the printed form "namespace name = target", where target is the qualified
// name of the aliased namespace. Targets naming namespaces that were not
// parsed keep their written spelling.
func ResolveAliases(root *decl.Decl) {
	r := &aliasResolver{
		scopes:  map[string]*nsScope{"": {root: true, namespaces: map[string]string{}, aliases: map[string]*decl.Decl{}}},
		scopeOf: make(map[*decl.Decl]string),
		done:    make(map[*decl.Decl]resolved),
		active:  make(map[*decl.Decl]bool),
	}
	r.index(root, "")

	targets := make(map[*decl.Decl]string, len(r.sites))
	for _, a := range r.sites {
		targets[a] = r.resolve(a).display
	}
	for _, a := range r.sites {
		a.SetAliasTarget("namespace " + a.Spelling() + " = " + targets[a])
	}
}

func (r *aliasResolver) index(d *decl.Decl, key string) {
	cur := r.scopes[key]
	for _, c := range d.Decls() {
		switch c.Kind() {
		case decl.Namespace:
			name := c.Spelling()
			if c.IsAnonymous() || name == "" {
				name = anonymousKey
			}
			childKey := name
			if !cur.root {
				childKey = key + symbols.Separator + name
			}

			if _, ok := r.scopes[childKey]; !ok {
				display := cur.display
				if name != anonymousKey && !c.IsInline() {
					display = join(cur.display, name)
				}
				r.scopes[childKey] = &nsScope{
					parent:     key,
					display:    display,
					namespaces: map[string]string{},
					aliases:    map[string]*decl.Decl{},
				}
				if name != anonymousKey {
					cur.namespaces[name] = childKey
				}
				if name == anonymousKey || c.IsInline() {
					cur.transparent = append(cur.transparent, childKey)
				}
			}
			r.index(c, childKey)

		case decl.Unexposed:
			if c.Spelling() == "" {
				r.index(c, key)
			}

		case decl.NamespaceAlias:
			cur.aliases[c.Spelling()] = c
			r.scopeOf[c] = key
			r.sites = append(r.sites, c)
		}
	}
}

func (r *aliasResolver) resolve(alias *decl.Decl) resolved {
	if res, ok := r.done[alias]; ok {
		return res
	}

	written := alias.PrettyAliasTarget()
	fallback := resolved{display: strings.TrimPrefix(written, symbols.Separator)}
	if r.active[alias] {
		return fallback
	}
	r.active[alias] = true
	defer delete(r.active, alias)

	res := fallback
	if key, ok := r.lookup(written, r.scopeOf[alias]); ok {
		res = resolved{key: key, display: r.scopes[key].display}
	}

	r.done[alias] = res
	return res
}

// lookup finds the scope named by a written qualified name, searching outward
// from the scope key from. Names starting with :: are looked up from the
// global namespace only.
func (r *aliasResolver) lookup(written, from string) (string, bool) {
	if written == "" {
		return "", false
	}
	segs := strings.Split(strings.TrimPrefix(written, symbols.Separator), symbols.Separator)
	if strings.HasPrefix(written, symbols.Separator) {
		return r.descend("", segs)
	}

	for start := from; ; {
		if key, ok := r.descend(start, segs); ok {
			return key, true
		}
		s := r.scopes[start]
		if s.root {
			return "", false
		}
		start = s.parent
	}
}

func (r *aliasResolver) descend(key string, segs []string) (string, bool) {
	for _, seg := range segs {
		next, ok := r.member(key, seg, map[string]bool{})
		if !ok {
			return "", false
		}
		key = next
	}
	return key, true
}

func (r *aliasResolver) member(key, name string, seen map[string]bool) (string, bool) {
	if seen[key] {
		return "", false
	}
	seen[key] = true

	s := r.scopes[key]
	if child, ok := s.namespaces[name]; ok {
		return child, true
	}
	if a, ok := s.aliases[name]; ok {
		if res := r.resolve(a); res.key != "" {
			return res.key, true
		}
	}
	for _, t := range s.transparent {
		if child, ok := r.member(t, name, seen); ok {
			return child, true
		}
	}
	return "", false
}

func join(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + symbols.Separator + name
}
