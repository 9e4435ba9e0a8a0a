// Package tree implements the in-memory Bank/Segment/TagSegment event
// tree of spec §4.4: an arena of nodes referenced by index (NodeID),
// each owning zero-or-more children plus, for leaves, one typed
// payload. Ownership is unique-child / weak-parent, per spec §3.
//
// The arena design follows spec §9 Design Notes verbatim ("allocate
// all tree nodes in a vector, reference them by index; parent is an
// Option<NodeId>"), replacing the teacher's smart-pointer idiom (mebo
// has no tree at all — there is nothing to generalize for the
// container/payload split, this package is new) with the offset/length
// bookkeeping style of github.com/arloliu/mebo's
// section/numeric_index_entry.go.
package tree

import (
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/header"
)

// NodeID indexes into a Tree's arena. The zero value is the first
// arena slot; NoNode (-1) marks the absence of a node.
type NodeID int32

// NoNode is the absence of a node reference (an Option<NodeId> in the
// terms of spec §9).
const NoNode NodeID = -1

// Kind distinguishes the three structure shapes, each with a different
// header width and tag/type/num field layout (spec GLOSSARY).
type Kind uint8

const (
	KindBank Kind = iota
	KindSegment
	KindTagSegment
)

// Node is one element of the event tree: either a container (its
// Payload is nil/empty and Children holds its subtree) or a leaf (its
// Children is empty and Payload holds its typed data), per spec §3's
// "a container node's payload is the serialization of its children; it
// carries no primitive payload" invariant.
type Node struct {
	Kind Kind
	Tag  uint16 // width depends on Kind: 16 (bank), 8 (segment), 12 (tagsegment)
	Type datatype.Type
	Num  uint8 // banks only
	Pad  uint8 // 0-3, leaves with byte/short or composite payload only

	Length uint32 // header length field; see RecomputeLengths

	Parent   NodeID
	Children []NodeID

	// Payload holds the leaf's raw data in host-native element layout
	// (e.g. for Int32 payload, 4 native-endian bytes per element);
	// Serialize converts to the requested wire byte order.
	Payload []byte

	dirty bool
}

// Tree is an arena of Nodes plus a root reference and a mutation
// version counter that invalidates in-flight iterators (spec §4.4,
// §9 Design Notes "Iteration").
type Tree struct {
	arena   []Node
	root    NodeID
	version uint64
}

// New creates an empty Tree with no root; the first node added via
// NewBank/NewSegment/NewTagSegment (with Parent==NoNode) becomes the root.
func New() *Tree {
	return &Tree{root: NoNode}
}

// Root returns the tree's root node ID, or NoNode if empty.
func (t *Tree) Root() NodeID { return t.root }

// Node returns a pointer to the node with the given ID. The pointer is
// only valid until the next structural mutation (add/remove) of the
// tree, since mutation may reallocate the arena.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.arena) {
		return nil
	}

	return &t.arena[id]
}

// Version returns the tree's current mutation counter.
func (t *Tree) Version() uint64 { return t.version }

func (t *Tree) bump() { t.version++ }

func (t *Tree) alloc(n Node) NodeID {
	id := NodeID(len(t.arena))
	t.arena = append(t.arena, n)

	return id
}

// NewBank creates a new, parentless bank node and returns its ID.
func (t *Tree) NewBank(tag uint16, typ datatype.Type, num uint8) NodeID {
	id := t.alloc(Node{Kind: KindBank, Tag: tag, Type: typ, Num: num, Parent: NoNode})
	if t.root == NoNode {
		t.root = id
	}

	t.bump()

	return id
}

// NewSegment creates a new, parentless segment node and returns its ID.
func (t *Tree) NewSegment(tag uint8, typ datatype.Type) NodeID {
	id := t.alloc(Node{Kind: KindSegment, Tag: uint16(tag), Type: typ, Parent: NoNode})
	if t.root == NoNode {
		t.root = id
	}

	t.bump()

	return id
}

// NewTagSegment creates a new, parentless tagsegment node and returns its ID.
func (t *Tree) NewTagSegment(tag uint16, typ datatype.Type) NodeID {
	id := t.alloc(Node{Kind: KindTagSegment, Tag: tag & 0xFFF, Type: typ, Parent: NoNode})
	if t.root == NoNode {
		t.root = id
	}

	t.bump()

	return id
}

// headerWords returns the fixed header word count for n's Kind.
func (n *Node) headerWords() uint32 {
	switch n.Kind {
	case KindBank:
		return header.BankHeaderWords
	default:
		return header.SegmentHeaderWords
	}
}

// MarkDirty flags id and each of its ancestors, stopping at the first
// one already dirty, as needing a length recompute before serialization.
func (t *Tree) MarkDirty(id NodeID) {
	for id != NoNode {
		n := t.Node(id)
		if n == nil || n.dirty {
			return
		}

		n.dirty = true
		id = n.Parent
	}
}

// Dirty reports whether n's length is stale relative to its children
// or payload (spec §3 "a dirty flag tracks whether lengths match children").
func (t *Tree) Dirty(id NodeID) bool {
	n := t.Node(id)

	return n != nil && n.dirty
}
