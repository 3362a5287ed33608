package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/modgen/internal/decl"
)

func fn(name string) *decl.Decl {
	return decl.New(decl.Function, name).SetLinkage(decl.External)
}

func TestQualifiedName(t *testing.T) {
	t.Parallel()

	tu := decl.NewTranslationUnit()
	std := tu.Add(decl.New(decl.Namespace, "std"))
	v1 := std.Add(decl.New(decl.Namespace, "__1").SetInline(true))
	vec := v1.Add(decl.New(decl.ClassTemplate, "vector"))
	anon := std.Add(decl.New(decl.Namespace, "").SetAnonymous(true))
	helper := anon.Add(fn("helper"))
	top := tu.Add(fn("main"))

	assert.Equal(t, "std::vector", QualifiedName(vec))
	assert.Equal(t, "std::helper", QualifiedName(helper))
	assert.Equal(t, "main", QualifiedName(top))
	assert.Equal(t, "std", QualifiedName(std))
	assert.Equal(t, "", QualifiedName(tu))
}

func TestQualifiedNameStopsAtInvalid(t *testing.T) {
	t.Parallel()

	bogus := decl.New(decl.Invalid, "ignored")
	ns := bogus.Add(decl.New(decl.Namespace, "ns"))
	f := ns.Add(fn("f"))

	assert.Equal(t, "ns::f", QualifiedName(f))
}

func TestParent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fqn, scope, local string
	}{
		{"foo", "", "foo"},
		{"ns::foo", "ns", "foo"},
		{"a::b::c", "a::b", "c"},
	}
	for _, tt := range tests {
		t.Run(tt.fqn, func(t *testing.T) {
			t.Parallel()
			scope, local := Parent(tt.fqn)
			assert.Equal(t, tt.scope, scope)
			assert.Equal(t, tt.local, local)
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tu := decl.NewTranslationUnit()
	ns := tu.Add(decl.New(decl.Namespace, "ns"))
	cls := ns.Add(decl.New(decl.Class, "Widget"))

	tests := []struct {
		name    string
		node    *decl.Decl
		recurse bool
		emit    bool
	}{
		{"translation unit", tu, true, false},
		{"namespace", ns, true, false},
		{"extern C block", ns.Add(decl.New(decl.Unexposed, "")), true, false},
		{"external function", ns.Add(fn("f")), false, true},
		{"internal function", ns.Add(decl.New(decl.Function, "g").SetLinkage(decl.Internal)), false, false},
		{"unique external function", ns.Add(decl.New(decl.Function, "h").SetLinkage(decl.UniqueExternal)), false, false},
		{"external variable", ns.Add(decl.New(decl.Variable, "v").SetLinkage(decl.External)), false, true},
		{"no-linkage variable", ns.Add(decl.New(decl.Variable, "w")), false, false},
		{"function template", ns.Add(decl.New(decl.FunctionTemplate, "t").SetLinkage(decl.External)), false, true},
		{"class", cls, false, true},
		{"struct", ns.Add(decl.New(decl.Struct, "S")), false, true},
		{"enum", ns.Add(decl.New(decl.Enum, "E")), false, true},
		{"union", ns.Add(decl.New(decl.Union, "U")), false, true},
		{"using declaration", ns.Add(decl.New(decl.UsingDeclaration, "swap")), false, true},
		{"typedef", ns.Add(decl.New(decl.Typedef, "size_type")), false, true},
		{"type alias", ns.Add(decl.New(decl.TypeAlias, "ptr")), false, true},
		{"class template", ns.Add(decl.New(decl.ClassTemplate, "box")), false, true},
		{"partial specialization", ns.Add(decl.New(decl.ClassTemplatePartialSpecialization, "box")), false, true},
		{"alias template", ns.Add(decl.New(decl.TypeAliasTemplate, "box_t")), false, true},
		{"concept", ns.Add(decl.New(decl.Concept, "boxed")), false, true},
		{"named unexposed", ns.Add(decl.New(decl.Unexposed, "is_box_v")), false, true},
		{"namespace alias", ns.Add(decl.New(decl.NamespaceAlias, "fs")), false, true},
		{"anonymous struct", ns.Add(decl.New(decl.Struct, "").SetAnonymous(true)), false, false},
		{"other", ns.Add(decl.New(decl.Other, "static_assert")), false, false},
		{"method", cls.Add(decl.New(decl.Method, "draw").SetLinkage(decl.External)), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := Classify(tt.node, QualifiedName(tt.node))
			assert.Equal(t, tt.recurse, d.Recurse, "recurse")
			assert.Equal(t, tt.emit, d.Emit, "emit")
		})
	}
}

func TestClassifyOutOfLine(t *testing.T) {
	t.Parallel()

	tu := decl.NewTranslationUnit()
	ns := tu.Add(decl.New(decl.Namespace, "ns"))
	cls := ns.Add(decl.New(decl.Class, "Widget"))

	// Nested class defined outside its enclosing class: struct Widget::Part {}
	part := ns.Add(decl.New(decl.Struct, "Part").SetSemanticParent(cls))
	d := Classify(part, QualifiedName(part))
	assert.True(t, d.OutOfLine)
	assert.False(t, d.Emit)

	// void ns::f() {} written at global scope.
	qualified := tu.Add(fn("f").SetSemanticParent(ns))
	d = Classify(qualified, QualifiedName(qualified))
	assert.True(t, d.OutOfLine)
	assert.False(t, d.Emit)

	// Declarations inside an extern "C" block are in line.
	block := ns.Add(decl.New(decl.Unexposed, ""))
	inBlock := block.Add(fn("c_api"))
	d = Classify(inBlock, QualifiedName(inBlock))
	assert.False(t, d.OutOfLine)
	assert.True(t, d.Emit)
}

func TestClassifyRejectsSpaces(t *testing.T) {
	t.Parallel()

	tu := decl.NewTranslationUnit()
	op := tu.Add(fn("operator new"))

	d := Classify(op, QualifiedName(op))
	assert.False(t, d.Emit)
}

func TestResolveAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		printed string
		want    string
	}{
		{"namespace fs = std::filesystem", "std::filesystem"},
		{"namespace fs = ::std::filesystem;", "std::filesystem"},
		{"std::filesystem", "std::filesystem"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.printed, func(t *testing.T) {
			t.Parallel()
			n := decl.New(decl.NamespaceAlias, "fs").SetAliasTarget(tt.printed)
			assert.Equal(t, tt.want, ResolveAlias(n))
		})
	}
}

func sampleTree() *decl.Decl {
	tu := decl.NewTranslationUnit()
	ns := tu.Add(decl.New(decl.Namespace, "ns"))
	ns.Add(fn("foo"))
	ns.Add(fn("foo")) // redeclaration
	detail := ns.Add(decl.New(decl.Namespace, "_detail"))
	detail.Add(fn("bar"))
	cls := ns.Add(decl.New(decl.Class, "Widget"))
	cls.Add(decl.New(decl.Method, "draw").SetLinkage(decl.External))
	ns.Add(decl.New(decl.NamespaceAlias, "d").SetAliasTarget("namespace d = ns::_detail"))
	anon := tu.Add(decl.New(decl.Namespace, "").SetAnonymous(true))
	anon.Add(decl.New(decl.Function, "local").SetLinkage(decl.Internal))
	anon.Add(decl.New(decl.Struct, "Hidden"))
	return tu
}

func TestWalk(t *testing.T) {
	t.Parallel()

	res := Walk(sampleTree())

	assert.Equal(t, []string{
		"Hidden",
		"ns::Widget",
		"ns::_detail::bar",
		"ns::d",
		"ns::foo",
	}, res.Names.Sorted())
	assert.Equal(t, map[string]string{"ns::d": "ns::_detail"}, map[string]string(res.Aliases))
	// Widget's method is never visited: classes are not recursed into.
	assert.Equal(t, 11, res.Visited)
	assert.Equal(t, 3, res.MaxDepth)
}

func TestWalkNil(t *testing.T) {
	t.Parallel()

	res := Walk(nil)
	require.NotNil(t, res)
	assert.Zero(t, res.Names.Len())
	assert.Empty(t, res.Aliases)
}

func TestWalkAliasLastWriteWins(t *testing.T) {
	t.Parallel()

	tu := decl.NewTranslationUnit()
	tu.Add(decl.New(decl.NamespaceAlias, "x").SetAliasTarget("namespace x = a"))
	tu.Add(decl.New(decl.NamespaceAlias, "x").SetAliasTarget("namespace x = b"))

	res := Walk(tu)
	assert.Equal(t, "b", res.Aliases["x"])
}

func TestWalkPrefixConsistent(t *testing.T) {
	t.Parallel()

	// Every emitted a::b::c has a parent that qualifies to a::b.
	tu := decl.NewTranslationUnit()
	a := tu.Add(decl.New(decl.Namespace, "a"))
	inl := a.Add(decl.New(decl.Namespace, "v2").SetInline(true))
	b := inl.Add(decl.New(decl.Namespace, "b"))
	c := b.Add(fn("c"))

	res := Walk(tu)
	require.True(t, res.Names.Has("a::b::c"))
	scope, _ := Parent(QualifiedName(c))
	assert.Equal(t, QualifiedName(c.Parent()), scope)
}

func TestWalkDeepTree(t *testing.T) {
	t.Parallel()

	tu := decl.NewTranslationUnit()
	cur := tu
	for range 2000 {
		cur = cur.Add(decl.New(decl.Unexposed, ""))
	}
	cur.Add(fn("deep"))

	res := Walk(tu)
	assert.True(t, res.Names.Has("deep"))
	assert.Equal(t, 2001, res.MaxDepth)
}
