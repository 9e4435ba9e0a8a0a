package compact

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/header"
)

// buildSampleRecord constructs a single-record, single-event little-
// endian stream: one root Bank (tag=1) containing one child Bank
// (tag=2, type=Int32, one payload word).
func buildSampleRecord(t *testing.T) []byte {
	t.Helper()

	order := byteorder.Little

	child := header.BankHeader{Tag: 2, Type: datatype.Int32, Num: 0, Length: 2}
	childBytes := append([]byte{}, child.Encode(order)...)
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, 5)
	childBytes = append(childBytes, payload...)
	require.Len(t, childBytes, 12)

	root := header.BankHeader{Tag: 1, Type: datatype.Bank, Num: 0, Length: 4}
	eventBytes := append([]byte{}, root.Encode(order)...)
	eventBytes = append(eventBytes, childBytes...)
	require.Len(t, eventBytes, 20)

	rh := header.NewRecordHeader(order)
	rh.EntryCount = 1
	rh.IndexArrayBytes = 4
	rh.SetUserHeaderLength(0)
	rh.SetDataLength(uint32(len(eventBytes)))
	rh.SetCompressedDataLength(uint32(len(eventBytes)))
	rh.SetLength(uint32(header.RecordHeaderWords + 1 + len(eventBytes)/4))

	headerBytes, err := rh.Encode()
	require.NoError(t, err)

	index := make([]byte, 4)
	binary.LittleEndian.PutUint32(index, uint32(len(eventBytes)))

	out := append([]byte{}, headerBytes...)
	out = append(out, index...)
	out = append(out, eventBytes...)

	return out
}

func TestScanTopLevel(t *testing.T) {
	s := New(buildSampleRecord(t))
	require.NoError(t, s.ScanTopLevel())
	require.Equal(t, 1, s.Count())

	d, err := s.Descriptor(0)
	require.NoError(t, err)
	require.Equal(t, KindEvent, d.Kind)
	require.Equal(t, uint32(20), d.TotalBytes)
}

func TestScanDeep(t *testing.T) {
	s := New(buildSampleRecord(t))
	require.NoError(t, s.ScanDeep())
	require.Equal(t, 3, s.Count()) // event + root bank + child bank

	ids := s.FindByTagNum(2, 0)
	require.Len(t, ids, 1)

	child, err := s.Descriptor(ids[0])
	require.NoError(t, err)
	require.Equal(t, KindBank, child.Kind)
	require.Equal(t, datatype.Int32, child.DataType)
}

func TestRemoveStructureInvalidatesDescriptor(t *testing.T) {
	s := New(buildSampleRecord(t))
	require.NoError(t, s.ScanDeep())

	ids := s.FindByTagNum(2, 0)
	require.Len(t, ids, 1)
	childID := ids[0]

	require.NoError(t, s.RemoveStructure(childID))

	_, err := s.Descriptor(childID)
	require.Error(t, err)
}
