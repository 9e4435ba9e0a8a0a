package recordio

import (
	"github.com/jlab-dift/evio/compress"
	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/header"
)

// RecordInput decodes one record header from a byte offset into a file
// or buffer, decompresses its data section if needed, and builds an
// event-offset table from the index array so getEvent(i) is a direct
// slice (spec §4.7).
type RecordInput struct {
	Header header.RecordHeader

	data    []byte // decompressed event data for this record only
	offsets []int  // per-event start offset into data
	lengths []int  // per-event byte length
}

// Decode reads a record header at data[offset:], decompresses its data
// section, and indexes its events.
func Decode(data []byte, offset int) (*RecordInput, error) {
	ri := &RecordInput{}

	if err := ri.Header.Decode(data, offset); err != nil {
		return nil, err
	}

	h := &ri.Header
	userHeaderEnd := offset + header.RecordHeaderBytes + int(h.UserHeaderBytes) + h.UserHeaderPad()
	indexEnd := userHeaderEnd + int(h.IndexArrayBytes)

	compressedBytes := int(h.CompressedWords) * 4
	if h.CompressionType == header.CompressionNone {
		compressedBytes = int(h.UncompressedLength) + h.DataPad()
	}

	dataStart := indexEnd
	dataEnd := dataStart + compressedBytes
	if dataEnd > len(data) {
		return nil, evioerr.ErrTruncatedHeader
	}

	rawSection := data[dataStart:dataEnd]
	if h.CompressionType == header.CompressionNone {
		ri.data = rawSection[:h.UncompressedLength]
	} else {
		codec, err := compress.CreateCodec(h.CompressionType, "record input")
		if err != nil {
			return nil, err
		}

		actualCompressed := rawSection[:compressedBytes-h.CompressedDataPad()]

		decompressed, err := codec.Decompress(actualCompressed, int(h.UncompressedLength))
		if err != nil {
			return nil, evioerr.WrapCompression(h.CompressionType.String(), err)
		}

		ri.data = decompressed
	}

	if err := ri.buildIndex(data, userHeaderEnd); err != nil {
		return nil, err
	}

	return ri, nil
}

// buildIndex reads the entryCount u32 lengths of the index array
// starting at indexOffset and derives each event's [start,end) within
// ri.data.
func (ri *RecordInput) buildIndex(data []byte, indexOffset int) error {
	eng := ri.Header.Order.Engine()

	ri.offsets = make([]int, ri.Header.EntryCount)
	ri.lengths = make([]int, ri.Header.EntryCount)

	cursor := 0
	for i := 0; i < int(ri.Header.EntryCount); i++ {
		entryOff := indexOffset + i*4
		if entryOff+4 > len(data) {
			return evioerr.ErrTruncatedHeader
		}

		evLen := int(eng.Uint32(data[entryOff : entryOff+4]))
		if cursor+evLen > len(ri.data) {
			return evioerr.ErrTruncatedHeader
		}

		ri.offsets[i] = cursor
		ri.lengths[i] = evLen
		cursor += evLen
	}

	return nil
}

// EventCount returns the number of events this record holds.
func (ri *RecordInput) EventCount() int { return len(ri.offsets) }

// GetEvent returns a slice view of event i's bytes within the
// decompressed data section.
func (ri *RecordInput) GetEvent(i int) ([]byte, error) {
	if i < 0 || i >= len(ri.offsets) {
		return nil, evioerr.ErrIndexOutOfRange
	}

	start := ri.offsets[i]
	end := start + ri.lengths[i]

	return ri.data[start:end], nil
}

// RecordBytes returns the total on-wire size of this record in bytes,
// for advancing a caller's cursor to the next record.
func (ri *RecordInput) RecordBytes() int {
	return int(ri.Header.RecordWords) * 4
}
