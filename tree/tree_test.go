package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-dift/evio/buffer"
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/evioerr"
)

func buildSample(t *testing.T) (*Tree, NodeID) {
	t.Helper()

	tr := New()
	root := tr.NewBank(1, datatype.Bank, 0)

	leaf := tr.NewBank(2, datatype.Int32, 1)
	require.NoError(t, tr.AddChild(root, leaf))
	require.NoError(t, tr.SetInt32Payload(leaf, []int32{7, 8, 9}))

	seg := tr.NewSegment(3, datatype.Float32)
	require.NoError(t, tr.AddChild(root, seg))
	require.NoError(t, tr.SetFloat32Payload(seg, []float32{1.5, 2.5}))

	return tr, root
}

func TestAddRemoveChild(t *testing.T) {
	tr, root := buildSample(t)
	require.Len(t, tr.Node(root).Children, 2)

	child := tr.Node(root).Children[0]
	require.NoError(t, tr.RemoveChild(root, child))
	require.Len(t, tr.Node(root).Children, 1)
	require.Equal(t, NoNode, tr.Node(child).Parent)
}

func TestAddChildAlreadyParented(t *testing.T) {
	tr, root := buildSample(t)
	child := tr.Node(root).Children[0]

	other := tr.NewBank(9, datatype.Bank, 0)
	require.ErrorIs(t, tr.AddChild(other, child), evioerr.ErrConflict)
}

func TestDepthFirstOrder(t *testing.T) {
	tr, root := buildSample(t)

	it := tr.DepthFirst(root)
	var seen []NodeID
	for it.HasNext() {
		id, err := it.Next()
		require.NoError(t, err)
		seen = append(seen, id)
	}

	require.Equal(t, root, seen[0])
	require.Len(t, seen, 3)
}

func TestBreadthFirstOrder(t *testing.T) {
	tr, root := buildSample(t)

	it := tr.BreadthFirst(root)
	var seen []NodeID
	for it.HasNext() {
		id, err := it.Next()
		require.NoError(t, err)
		seen = append(seen, id)
	}

	require.Equal(t, root, seen[0])
	require.Len(t, seen, 3)
}

func TestIteratorStaleAfterMutation(t *testing.T) {
	tr, root := buildSample(t)

	it := tr.DepthFirst(root)
	_, err := it.Next()
	require.NoError(t, err)

	extra := tr.NewBank(5, datatype.Bank, 0)
	require.NoError(t, tr.AddChild(root, extra))

	_, err = it.Next()
	require.ErrorIs(t, err, evioerr.ErrIteratorStale)
}

func TestRecomputeLengthsAndSerialize(t *testing.T) {
	tr, root := buildSample(t)

	require.NoError(t, tr.RecomputeLengths(root))
	require.False(t, tr.Dirty(root))

	buf := buffer.New(0, byteorder.Little)
	require.NoError(t, tr.Serialize(root, buf, byteorder.Little))
	require.Greater(t, buf.Position(), 0)
}

func TestSerializeFailsWhenDirty(t *testing.T) {
	tr, root := buildSample(t)

	buf := buffer.New(0, byteorder.Little)
	require.ErrorIs(t, tr.Serialize(root, buf, byteorder.Little), evioerr.ErrDirtyTree)
}

func TestToSegmentTruncatesTag(t *testing.T) {
	tr := New()
	bank := tr.NewBank(0x1234, datatype.Int32, 0)
	require.NoError(t, tr.SetInt32Payload(bank, []int32{1}))
	require.NoError(t, tr.RecomputeLengths(bank))

	require.NoError(t, tr.ToSegment(bank))
	require.Equal(t, uint16(0x34), tr.Node(bank).Tag)
}

func TestToSegmentTooLarge(t *testing.T) {
	tr := New()
	bank := tr.NewBank(1, datatype.Int32, 0)
	tr.Node(bank).Length = 0x10000

	require.ErrorIs(t, tr.ToSegment(bank), evioerr.ErrTransformTooLarge)
}

func TestStringArrayRoundTrip(t *testing.T) {
	raw := EncodeStringArray([]string{"hello", "world"})
	require.Equal(t, 0, len(raw)%4)

	out, err := DecodeStringArray(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "world"}, out)
}

func TestStringArrayMalformed(t *testing.T) {
	raw := append([]byte("bad\x01string"), 0x00, stringPadByte, stringPadByte, stringPadByte)
	_, err := DecodeStringArray(raw)
	require.ErrorIs(t, err, evioerr.ErrMalformedString)
}

func TestLegacyStringDecode(t *testing.T) {
	s, err := DecodeLegacyString([]byte("legacy\x00\x00\x00"))
	require.NoError(t, err)
	require.Equal(t, "legacy", s)
}
