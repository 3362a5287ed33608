package decl

// Decl is the in-memory Node implementation built by providers and tests.
type Decl struct {
	kind        Kind
	spelling    string
	linkage     Linkage
	anonymous   bool
	inline      bool
	lexical     *Decl
	semantic    *Decl
	children    []*Decl
	aliasTarget string
}

// New creates a detached declaration.
func New(kind Kind, spelling string) *Decl {
	return &Decl{kind: kind, spelling: spelling}
}

// NewTranslationUnit creates an empty root.
func NewTranslationUnit() *Decl {
	return New(TranslationUnit, "")
}

// Add appends child to d and returns child. The child's lexical parent
// becomes d; its semantic parent also becomes d unless one was set already.
func (d *Decl) Add(child *Decl) *Decl {
	child.lexical = d
	if child.semantic == nil {
		child.semantic = d
	}
	d.children = append(d.children, child)
	return child
}

// Merge moves the children of other under d. Used to fold several parsed
// files into a single translation unit.
func (d *Decl) Merge(other *Decl) {
	for _, c := range other.children {
		if c.semantic == other {
			c.semantic = nil
		}
		d.Add(c)
	}
	other.children = nil
}

func (d *Decl) SetLinkage(l Linkage) *Decl {
	d.linkage = l
	return d
}

func (d *Decl) SetAnonymous(v bool) *Decl {
	d.anonymous = v
	return d
}

func (d *Decl) SetInline(v bool) *Decl {
	d.inline = v
	return d
}

// SetSemanticParent records a semantic scope that differs from the lexical one,
// as for out-of-line definitions.
func (d *Decl) SetSemanticParent(p *Decl) *Decl {
	d.semantic = p
	return d
}

func (d *Decl) SetAliasTarget(s string) *Decl {
	d.aliasTarget = s
	return d
}

func (d *Decl) Kind() Kind        { return d.kind }
func (d *Decl) Spelling() string  { return d.spelling }
func (d *Decl) Linkage() Linkage  { return d.linkage }
func (d *Decl) IsAnonymous() bool { return d.anonymous }
func (d *Decl) IsInline() bool    { return d.inline }

func (d *Decl) PrettyAliasTarget() string { return d.aliasTarget }

func (d *Decl) LexicalParent() Node {
	if d.lexical == nil {
		return nil
	}
	return d.lexical
}

func (d *Decl) SemanticParent() Node {
	if d.semantic == nil {
		return nil
	}
	return d.semantic
}

// Parent returns the concrete lexical parent, or nil at the root.
func (d *Decl) Parent() *Decl { return d.lexical }

// Decls returns the concrete children.
func (d *Decl) Decls() []*Decl { return d.children }

func (d *Decl) Children() []Node {
	if len(d.children) == 0 {
		return nil
	}
	out := make([]Node, len(d.children))
	for i, c := range d.children {
		out[i] = c
	}
	return out
}

// Find returns the first direct child with the given kind and spelling.
func (d *Decl) Find(kind Kind, spelling string) *Decl {
	for _, c := range d.children {
		if c.kind == kind && c.spelling == spelling {
			return c
		}
	}
	return nil
}
