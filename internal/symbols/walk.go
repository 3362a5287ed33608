package symbols

import (
	"github.com/phobologic/modgen/internal/decl"
	"github.com/phobologic/modgen/internal/model"
)

// Result is what a walk accumulates.
type Result struct {
	Names    model.NameSet
	Aliases  model.AliasMap
	Visited  int
	MaxDepth int
}

type frame struct {
	node  decl.Node
	depth int
}

// walker carries the traversal state for a single pass.
type walker struct {
	res   *Result
	stack []frame
}

// Walk traverses the tree rooted at root depth-first in pre-order and collects
// every exportable qualified name plus the namespace alias map. Only scopes
// the classifier marks for recursion are descended into. The tree must be
// acyclic.
func Walk(root decl.Node) *Result {
	w := &walker{
		res: &Result{
			Names:   model.NewNameSet(),
			Aliases: make(model.AliasMap),
		},
	}
	if root == nil {
		return w.res
	}

	w.stack = append(w.stack, frame{node: root})
	for len(w.stack) > 0 {
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		w.visit(f)
	}
	return w.res
}

func (w *walker) visit(f frame) {
	w.res.Visited++
	if f.depth > w.res.MaxDepth {
		w.res.MaxDepth = f.depth
	}

	fqn := QualifiedName(f.node)
	d := Classify(f.node, fqn)

	if d.Alias {
		w.res.Aliases[fqn] = ResolveAlias(f.node)
	}
	if d.Emit {
		w.res.Names.Add(fqn)
	}
	if !d.Recurse {
		return
	}

	children := f.node.Children()
	for i := len(children) - 1; i >= 0; i-- {
		w.stack = append(w.stack, frame{node: children[i], depth: f.depth + 1})
	}
}
