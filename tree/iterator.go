package tree

import "github.com/jlab-dift/evio/evioerr"

// levelFrame is the (iter, end) pair spec §4.4 calls for: a position
// within one node's children plus that children slice itself.
type levelFrame struct {
	children []NodeID
	idx      int
}

// DepthFirstIterator walks a subtree pre-order (parent before children),
// per spec §4.4. It is a snapshot of the tree's structure as of its
// creation: any AddChild/RemoveChild call on the owning Tree bumps the
// tree's version counter, and the next Next() call on a stale iterator
// returns ErrIteratorStale instead of silently walking changed data.
type DepthFirstIterator struct {
	tree    *Tree
	version uint64
	stack   []levelFrame
	next    NodeID
	done    bool
}

// DepthFirst creates an iterator rooted at id (id itself is the first
// value returned).
func (t *Tree) DepthFirst(id NodeID) *DepthFirstIterator {
	if t.Node(id) == nil {
		return &DepthFirstIterator{tree: t, version: t.version, done: true}
	}

	return &DepthFirstIterator{
		tree:    t,
		version: t.version,
		next:    id,
	}
}

// HasNext reports whether another node is available without consuming it.
func (it *DepthFirstIterator) HasNext() bool {
	return !it.done
}

// Next returns the next node in pre-order, or ErrEndOfStream once
// exhausted, or ErrIteratorStale if the tree mutated since creation.
func (it *DepthFirstIterator) Next() (NodeID, error) {
	if it.tree.version != it.version {
		return NoNode, evioerr.ErrIteratorStale
	}

	if it.done {
		return NoNode, evioerr.ErrEndOfStream
	}

	cur := it.next
	n := it.tree.Node(cur)

	if len(n.Children) > 0 {
		it.stack = append(it.stack, levelFrame{children: n.Children, idx: 0})
	} else {
		it.advance()
	}

	if !it.done && len(it.stack) > 0 {
		f := &it.stack[len(it.stack)-1]
		if f.idx < len(f.children) {
			it.next = f.children[f.idx]
		}
	}

	return cur, nil
}

// advance pops exhausted frames and lands it.next on the next sibling,
// or marks done when the stack empties.
func (it *DepthFirstIterator) advance() {
	for len(it.stack) > 0 {
		f := &it.stack[len(it.stack)-1]
		f.idx++

		if f.idx < len(f.children) {
			it.next = f.children[f.idx]

			return
		}

		it.stack = it.stack[:len(it.stack)-1]
	}

	it.done = true
}

// BreadthFirstIterator walks a subtree level by level using a FIFO of
// the same (children, idx) frame shape as the depth-first walk, per
// spec §4.4 ("the breadth-first iterator uses a FIFO of the same
// pair"). Also invalidated by the tree's version counter.
type BreadthFirstIterator struct {
	tree    *Tree
	version uint64
	queue   []NodeID
	pos     int
}

// BreadthFirst creates a level-order iterator rooted at id.
func (t *Tree) BreadthFirst(id NodeID) *BreadthFirstIterator {
	it := &BreadthFirstIterator{tree: t, version: t.version}
	if t.Node(id) != nil {
		it.queue = append(it.queue, id)
	}

	return it
}

// HasNext reports whether another node is available.
func (it *BreadthFirstIterator) HasNext() bool {
	return it.pos < len(it.queue)
}

// Next returns the next node in level order.
func (it *BreadthFirstIterator) Next() (NodeID, error) {
	if it.tree.version != it.version {
		return NoNode, evioerr.ErrIteratorStale
	}

	if it.pos >= len(it.queue) {
		return NoNode, evioerr.ErrEndOfStream
	}

	cur := it.queue[it.pos]
	it.pos++

	n := it.tree.Node(cur)
	it.queue = append(it.queue, n.Children...)

	return cur, nil
}
