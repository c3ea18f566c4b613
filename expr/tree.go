package expr

// TransformFunc rewrites one node. It returns the replacement (or the node
// itself) and whether anything changed.
type TransformFunc func(Expr) (Expr, bool, error)

// TransformDown rewrites e top-down: fn runs on a node first, then on the
// children of whatever fn returned. Unchanged subtrees are shared with the
// input, changed ones are rebuilt, so e itself is never modified.
func TransformDown(e Expr, fn TransformFunc) (Expr, error) {
	out, _, err := transformDown(e, fn)
	return out, err
}

func transformDown(e Expr, fn TransformFunc) (Expr, bool, error) {
	node, changed, err := fn(e)
	if err != nil {
		return nil, false, err
	}
	children := node.Children()
	if len(children) == 0 {
		return node, changed, nil
	}

	var newChildren []Expr
	for i, child := range children {
		newChild, childChanged, err := transformDown(child, fn)
		if err != nil {
			return nil, false, err
		}
		if childChanged && newChildren == nil {
			newChildren = make([]Expr, len(children))
			copy(newChildren, children[:i])
		}
		if newChildren != nil {
			newChildren[i] = newChild
		}
	}
	if newChildren == nil {
		return node, changed, nil
	}
	return node.WithChildren(newChildren), true, nil
}

// Walk visits e in pre-order; returning false from fn skips the node's children
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range e.Children() {
		Walk(child, fn)
	}
}

// Columns returns every column reference of e in pre-order
func Columns(e Expr) []*Column {
	var cols []*Column
	Walk(e, func(n Expr) bool {
		if c, ok := n.(*Column); ok {
			cols = append(cols, c)
		}
		return true
	})
	return cols
}

// Conjuncts splits a tree of ANDs into its operands
func Conjuncts(e Expr) []Expr {
	if b, ok := e.(*BinaryExpr); ok && b.Op == OpAnd {
		return append(Conjuncts(b.Left), Conjuncts(b.Right)...)
	}
	return []Expr{e}
}
