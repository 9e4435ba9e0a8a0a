package reader

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/header"
	"github.com/jlab-dift/evio/tree"
	"github.com/jlab-dift/evio/writer"
)

// TestLegacyReaderSingleBankRoundTrip hand-builds a single version-4
// block holding one bank-rooted event with an Int32 payload, satisfying
// spec §8 scenario #2: eventCount==1, getEvent(1).intData==[1,2,3,4].
func TestLegacyReaderSingleBankRoundTrip(t *testing.T) {
	order := byteorder.Little

	bank := header.BankHeader{
		Tag:    1,
		Type:   datatype.Int32,
		Num:    0,
		Length: 1 + 4, // num/pad/type word + 4 data words
	}
	bankBytes := bank.Encode(order)

	body := make([]byte, 16)
	eng := order.Engine()
	eng.PutUint32(body[0:4], 1)
	eng.PutUint32(body[4:8], 2)
	eng.PutUint32(body[8:12], 3)
	eng.PutUint32(body[12:16], 4)

	eventBytes := append(bankBytes, body...)

	bh := header.NewBlockHeaderV4(order)
	bh.EventCount = 1
	bh.BlockWords = uint32(header.BlockHeaderWords + len(eventBytes)/4)
	bh.BitInfo = bh.BitInfo.WithLastBlock(true)

	data := append(bh.Encode(), eventBytes...)

	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.evio")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, uint8(4), r.Version())
	require.Equal(t, 1, r.EventCount())

	magic, ok := r.FirstBlockMagic()
	require.True(t, ok)
	require.Equal(t, header.Magic, magic)

	ev, err := r.GetEvent(1)
	require.NoError(t, err)

	ints, err := ev.IntData()
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3, 4}, ints)
}

// TestRecordReaderOpenSplitRoundTrip writes 10 events split across
// several files via writer.Writer and reads them all back as one
// logical stream, satisfying spec §8 scenario #3.
func TestRecordReaderOpenSplitRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := writer.New(dir, "run", writer.WithSplitBytes(header.RecordHeaderBytes+48))
	require.NoError(t, err)

	const total = 10

	for i := 0; i < total; i++ {
		tr := tree.New()
		id := tr.NewBank(uint16(100+i), datatype.Int32, 0)
		require.NoError(t, tr.SetInt32Payload(id, []int32{int32(i), int32(i * 2)}))
		require.NoError(t, tr.RecomputeLengths(id))

		require.NoError(t, w.AddEventNode(tr, id))
		require.NoError(t, w.Flush())
	}

	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var paths []string
	for _, n := range names {
		paths = append(paths, filepath.Join(dir, n))
	}

	r, err := OpenSplit(paths)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, total, r.EventCount())

	for i := 0; i < total; i++ {
		ev, err := r.GetEvent(i + 1)
		require.NoError(t, err)

		ints, err := ev.IntData()
		require.NoError(t, err)
		require.Equal(t, []int32{int32(i), int32(i * 2)}, ints)

		require.Equal(t, uint16(100+i), ev.Tag())
	}

	// NextEvent/GotoEventNumber walk the same flattened sequence.
	require.NoError(t, r.GotoEventNumber(1))
	for i := 0; i < total; i++ {
		ev, err := r.NextEvent()
		require.NoError(t, err)

		ints, err := ev.IntData()
		require.NoError(t, err)
		require.Equal(t, []int32{int32(i), int32(i * 2)}, ints)
	}

	_, err = r.NextEvent()
	require.Error(t, err)
}

type recordingVisitor struct {
	events []string
}

func (v *recordingVisitor) StartStructure(tr *tree.Tree, id tree.NodeID) bool {
	v.events = append(v.events, "start")
	return true
}

func (v *recordingVisitor) EndStructure(tr *tree.Tree, id tree.NodeID) {
	v.events = append(v.events, "end")
}

// TestEventWalkVisitsContainerAndChildren checks the SAX-style
// depth-first start/end ordering over a container-root event with two
// leaf children.
func TestEventWalkVisitsContainerAndChildren(t *testing.T) {
	dir := t.TempDir()

	w, err := writer.New(dir, "tree-evt")
	require.NoError(t, err)

	tr := tree.New()
	root := tr.NewBank(7, datatype.Bank, 0)

	leaf1 := tr.NewBank(8, datatype.Int32, 0)
	require.NoError(t, tr.SetInt32Payload(leaf1, []int32{42}))
	require.NoError(t, tr.AddChild(root, leaf1))

	leaf2 := tr.NewBank(9, datatype.Int32, 0)
	require.NoError(t, tr.SetInt32Payload(leaf2, []int32{43}))
	require.NoError(t, tr.AddChild(root, leaf2))

	require.NoError(t, tr.RecomputeLengths(root))
	require.NoError(t, w.AddEventNode(tr, root))
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	r, err := Open(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 1, r.EventCount())

	ev, err := r.GetEvent(1)
	require.NoError(t, err)
	require.Equal(t, uint16(7), ev.Tag())

	rv := &recordingVisitor{}
	require.NoError(t, ev.Walk(rv))

	// root start, two leaf start/end pairs, root end.
	require.Equal(t, []string{"start", "start", "end", "start", "end", "end"}, rv.events)
}
