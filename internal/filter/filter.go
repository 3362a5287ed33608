// Package filter selects which collected names end up in the generated
// module, using include and exclude regular expressions. Patterns use
// ECMAScript syntax, so lookahead and backreferences are accepted.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/phobologic/modgen/internal/model"
)

// DefaultExclude rejects reserved identifiers (_Ugly, __ugly) and detail
// namespaces in any segment.
const DefaultExclude = `^(.*::)?(_[_a-zA-Z]|_*detail).*$`

// ErrBadPattern is wrapped by New when a pattern does not compile.
var ErrBadPattern = errors.New("invalid pattern")

// Options are the user-facing filter settings. Empty strings mean "not set".
type Options struct {
	Namespaces []string
	Include    string
	Exclude    string
}

// Filter is an immutable include/exclude predicate over qualified names.
type Filter struct {
	include *regexp2.Regexp
	exclude *regexp2.Regexp
}

// New compiles opts. An explicit Include overrides Namespaces. When neither
// Include nor Exclude is given, DefaultExclude is installed whether or not
// Namespaces is set.
func New(opts Options) (*Filter, error) {
	f := &Filter{}

	if opts.Include != "" {
		re, err := compile("filter", opts.Include)
		if err != nil {
			return nil, err
		}
		f.include = re
	} else {
		if pattern := namespacePattern(opts.Namespaces); pattern != "" {
			re, err := compile("namespaces", pattern)
			if err != nil {
				return nil, err
			}
			f.include = re
		}
		if opts.Exclude == "" {
			f.exclude = regexp2.MustCompile(DefaultExclude, regexp2.ECMAScript)
		}
	}

	if opts.Exclude != "" {
		re, err := compile("exclude", opts.Exclude)
		if err != nil {
			return nil, err
		}
		f.exclude = re
	}
	return f, nil
}

// compile anchors pattern so it must match the whole name.
func compile(what, pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(`^(?:`+pattern+`)$`, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w: %v", what, pattern, ErrBadPattern, err)
	}
	return re, nil
}

// matches reports whether re matches s. A match that fails at run time
// counts as no match.
func matches(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}

// namespacePattern builds ^((a)|(b))(::.*)?$ from a namespace list, which
// selects each namespace and everything below it.
func namespacePattern(namespaces []string) string {
	var parts []string
	for _, ns := range namespaces {
		ns = strings.TrimSpace(ns)
		if ns == "" {
			continue
		}
		parts = append(parts, "("+ns+")")
	}
	if len(parts) == 0 {
		return ""
	}
	return "^(" + strings.Join(parts, "|") + ")(::.*)?$"
}

// Includes reports whether name passes the include test, either directly or
// because it lives inside a namespace that an included alias points at.
func (f *Filter) Includes(name string, aliases model.AliasMap) bool {
	if f.include == nil || matches(f.include, name) {
		return true
	}
	for _, alias := range aliases.Keys() {
		if !matches(f.include, alias) {
			continue
		}
		if target := aliases[alias]; target != "" && strings.HasPrefix(name, target+"::") {
			return true
		}
	}
	return false
}

// Excludes reports whether name matches the exclude pattern.
func (f *Filter) Excludes(name string) bool {
	return f.exclude != nil && matches(f.exclude, name)
}

// Keep reports whether name survives the filter.
func (f *Filter) Keep(name string, aliases model.AliasMap) bool {
	return f.Includes(name, aliases) && !f.Excludes(name)
}

// Apply returns the subset of names that survive. The input is not modified.
func (f *Filter) Apply(names model.NameSet, aliases model.AliasMap) model.NameSet {
	out := model.NewNameSet()
	for name := range names {
		if f.Keep(name, aliases) {
			out.Add(name)
		}
	}
	return out
}

// Describe returns the effective patterns for diagnostics.
func (f *Filter) Describe() (include, exclude string) {
	if f.include != nil {
		include = f.include.String()
	}
	if f.exclude != nil {
		exclude = f.exclude.String()
	}
	return include, exclude
}
