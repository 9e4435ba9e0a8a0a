package reader

import (
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/tree"
)

// Event is one parsed top-level structure (always bank-rooted, spec
// §3), materialized as a Tree so its typed leaf payload and nested
// Bank/Segment/TagSegment children are reachable the same way a
// Writer-side tree is, rather than handing callers raw bytes they
// would have to re-decode themselves.
type Event struct {
	tree *tree.Tree
}

func newEvent(raw []byte, order byteorder.Order) (*Event, error) {
	t, err := tree.Decode(raw, order)
	if err != nil {
		return nil, err
	}

	return &Event{tree: t}, nil
}

// Tree exposes the event's underlying node arena for full navigation:
// Children, DepthFirst/BreadthFirst iteration, Get*Payload reads.
func (e *Event) Tree() *tree.Tree { return e.tree }

// Root is e.Tree().Root(), the event's top-level bank node.
func (e *Event) Root() tree.NodeID { return e.tree.Root() }

// Tag returns the root bank's tag.
func (e *Event) Tag() uint16 { return e.tree.Node(e.tree.Root()).Tag }

// Num returns the root bank's num field.
func (e *Event) Num() uint8 { return e.tree.Node(e.tree.Root()).Num }

// DataType returns the root bank's declared data type.
func (e *Event) DataType() datatype.Type { return e.tree.Node(e.tree.Root()).Type }

// IntData returns the root bank's payload as []int32 (spec §8 scenario
// #2's getEvent(1).intData). Fails with ErrConflict if the root is a
// container rather than an Int32 leaf.
func (e *Event) IntData() ([]int32, error) { return e.tree.GetInt32Payload(e.tree.Root()) }

// Uint32Data returns the root bank's payload as []uint32.
func (e *Event) Uint32Data() ([]uint32, error) { return e.tree.GetUint32Payload(e.tree.Root()) }

// Float32Data returns the root bank's payload as []float32.
func (e *Event) Float32Data() ([]float32, error) { return e.tree.GetFloat32Payload(e.tree.Root()) }

// Float64Data returns the root bank's payload as []float64.
func (e *Event) Float64Data() ([]float64, error) { return e.tree.GetFloat64Payload(e.tree.Root()) }

// Int64Data returns the root bank's payload as []int64.
func (e *Event) Int64Data() ([]int64, error) { return e.tree.GetInt64Payload(e.tree.Root()) }

// Short16Data returns the root bank's payload as []int16.
func (e *Event) Short16Data() ([]int16, error) { return e.tree.GetShort16Payload(e.tree.Root()) }

// Uchar8Data returns a copy of the root bank's raw byte payload.
func (e *Event) Uchar8Data() ([]byte, error) { return e.tree.GetUchar8Payload(e.tree.Root()) }

// EventVisitor receives depth-first start/end callbacks while an
// event's tree is walked (spec §4.9's SAX-style traversal). Returning
// false from StartStructure skips that node's children and every one
// of their descendants; EndStructure is still called for the node
// itself once its (possibly empty) subtree walk finishes.
type EventVisitor interface {
	StartStructure(t *tree.Tree, id tree.NodeID) (descend bool)
	EndStructure(t *tree.Tree, id tree.NodeID)
}

// Walk performs a depth-first SAX traversal of e's tree starting at
// its root.
func (e *Event) Walk(v EventVisitor) error {
	return walkNode(e.tree, e.tree.Root(), v)
}

func walkNode(t *tree.Tree, id tree.NodeID, v EventVisitor) error {
	n := t.Node(id)
	if n == nil {
		return evioerr.ErrIndexOutOfRange
	}

	if v.StartStructure(t, id) {
		for _, c := range n.Children {
			if err := walkNode(t, c, v); err != nil {
				return err
			}
		}
	}

	v.EndStructure(t, id)

	return nil
}

// Filter decides whether a node (and its entire subtree) should be
// visited at all.
type Filter func(t *tree.Tree, id tree.NodeID) bool

// FilteredVisitor wraps an EventVisitor with a Filter evaluated before
// the wrapped visitor ever sees the node, so a caller can reject whole
// subtrees (spec §4.9's "filter can reject subtrees before they're
// published") without every EventVisitor implementation having to
// remember to decline via its own StartStructure.
type FilteredVisitor struct {
	Filter  Filter
	Visitor EventVisitor
}

func (f FilteredVisitor) StartStructure(t *tree.Tree, id tree.NodeID) bool {
	if f.Filter != nil && !f.Filter(t, id) {
		return false
	}

	return f.Visitor.StartStructure(t, id)
}

func (f FilteredVisitor) EndStructure(t *tree.Tree, id tree.NodeID) {
	if f.Filter != nil && !f.Filter(t, id) {
		return
	}

	f.Visitor.EndStructure(t, id)
}
