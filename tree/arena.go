package tree

import "github.com/jlab-dift/evio/evioerr"

// AddChild appends child as the last child of parent, taking ownership
// of it (a node may only be added once; the caller must not reuse a
// child already attached elsewhere). Marks both ancestors dirty.
func (t *Tree) AddChild(parent, child NodeID) error {
	p := t.Node(parent)
	c := t.Node(child)

	if p == nil || c == nil {
		return evioerr.ErrIndexOutOfRange
	}

	if c.Parent != NoNode {
		return evioerr.ErrConflict
	}

	p.Children = append(p.Children, child)
	c.Parent = parent

	t.MarkDirty(parent)
	t.bump()

	return nil
}

// RemoveChild detaches child from parent without deallocating it from
// the arena (the detached subtree becomes a new, parentless root the
// caller may discard or re-attach elsewhere).
func (t *Tree) RemoveChild(parent, child NodeID) error {
	p := t.Node(parent)
	c := t.Node(child)

	if p == nil || c == nil {
		return evioerr.ErrIndexOutOfRange
	}

	idx := -1
	for i, id := range p.Children {
		if id == child {
			idx = i

			break
		}
	}

	if idx < 0 {
		return evioerr.ErrIndexOutOfRange
	}

	p.Children = append(p.Children[:idx], p.Children[idx+1:]...)
	c.Parent = NoNode

	t.MarkDirty(parent)
	t.bump()

	return nil
}

// Ancestors returns id's ancestor chain, nearest first, root last.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID

	n := t.Node(id)
	for n != nil && n.Parent != NoNode {
		out = append(out, n.Parent)
		n = t.Node(n.Parent)
	}

	return out
}

// Descendants returns all descendants of id in depth-first order.
func (t *Tree) Descendants(id NodeID) []NodeID {
	var out []NodeID

	n := t.Node(id)
	if n == nil {
		return nil
	}

	var walk func(NodeID)
	walk = func(cur NodeID) {
		c := t.Node(cur)
		for _, child := range c.Children {
			out = append(out, child)
			walk(child)
		}
	}
	walk(id)

	return out
}

// Siblings returns id's siblings (children of the same parent, id excluded).
func (t *Tree) Siblings(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil || n.Parent == NoNode {
		return nil
	}

	p := t.Node(n.Parent)

	var out []NodeID
	for _, c := range p.Children {
		if c != id {
			out = append(out, c)
		}
	}

	return out
}

// IsLeaf reports whether id has no children.
func (t *Tree) IsLeaf(id NodeID) bool {
	n := t.Node(id)

	return n != nil && len(n.Children) == 0
}

// Leaves returns all leaf descendants of id (including id itself if it
// is a leaf).
func (t *Tree) Leaves(id NodeID) []NodeID {
	var out []NodeID

	n := t.Node(id)
	if n == nil {
		return nil
	}

	if len(n.Children) == 0 {
		return []NodeID{id}
	}

	for _, c := range n.Children {
		out = append(out, t.Leaves(c)...)
	}

	return out
}
