// Package recordio implements the per-record accumulate/build and
// decode/index pair that sits between the event tree and the writer's
// ring, per spec §4.7: RecordOutput collects events and serializes a
// complete wire-format record; RecordInput decodes one record header
// and builds a zero-copy event-offset table over its (decompressed)
// data section.
//
// Grounded on github.com/arloliu/mebo's blob/numeric_encoder.go
// accumulate-then-Finish()/build() shape for RecordOutput, and its
// blob/numeric_decoder.go index-driven slicing for RecordInput.
package recordio

import (
	"fmt"

	"github.com/jlab-dift/evio/buffer"
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/compress"
	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/header"
	"github.com/jlab-dift/evio/tree"
)

// Defaults mirror the teacher's DefaultMaxTimestampDataPoints-style
// named constants rather than bare literals threaded through call sites.
const (
	DefaultMaxEventCount        = 1 << 20
	DefaultMaxUncompressedBytes = 32 * 1024 * 1024
)

// RecordOutput accumulates events for one record and serializes them
// to the wire format on Build. It is not safe for concurrent use; the
// writer package gives each ring slot/compressor goroutine its own
// instance.
type RecordOutput struct {
	order        byteorder.Order
	recordNumber uint32
	compression  header.CompressionType
	codec        compress.Codec

	maxEventCount        uint32
	maxUncompressedBytes uint32

	events       [][]byte // one slice per addEvent, each exactly the event's bytes
	eventDataLen uint32   // sum of len(events[i])

	userHeader []byte
}

// NewRecordOutput creates an accumulator for record number recordNumber
// in the given byte order, compressing its data section with
// compressionType on Build.
func NewRecordOutput(order byteorder.Order, recordNumber uint32, compressionType header.CompressionType) (*RecordOutput, error) {
	codec, err := compress.CreateCodec(compressionType, "record output")
	if err != nil {
		return nil, err
	}

	return &RecordOutput{
		order:                order,
		recordNumber:         recordNumber,
		compression:          compressionType,
		codec:                codec,
		maxEventCount:        DefaultMaxEventCount,
		maxUncompressedBytes: DefaultMaxUncompressedBytes,
	}, nil
}

// SetLimits overrides the default per-record event-count and
// uncompressed-byte-size ceilings.
func (r *RecordOutput) SetLimits(maxEventCount, maxUncompressedBytes uint32) {
	r.maxEventCount = maxEventCount
	r.maxUncompressedBytes = maxUncompressedBytes
}

// SetUserHeader attaches an opaque user-header byte range, written
// between the record header and the index array.
func (r *RecordOutput) SetUserHeader(data []byte) {
	r.userHeader = data
}

// EventCount returns the number of events accumulated so far.
func (r *RecordOutput) EventCount() int { return len(r.events) }

// RecordNumber returns the record number this accumulator was created or
// last Reset with.
func (r *RecordOutput) RecordNumber() uint32 { return r.recordNumber }

// AddEvent appends a pre-encoded event's bytes. Returns ErrConflict if
// doing so would exceed maxEventCount or maxUncompressedBytes — the
// caller is expected to Build/publish the current record and start a
// fresh one with this event.
func (r *RecordOutput) AddEvent(data []byte) error {
	if uint32(len(r.events)+1) > r.maxEventCount {
		return fmt.Errorf("%w: record already holds the configured max of %d events", evioerr.ErrConflict, r.maxEventCount)
	}

	if r.eventDataLen+uint32(len(data)) > r.maxUncompressedBytes {
		return fmt.Errorf("%w: event would exceed the record's max uncompressed size of %d bytes",
			evioerr.ErrConflict, r.maxUncompressedBytes)
	}

	r.events = append(r.events, data)
	r.eventDataLen += uint32(len(data))

	return nil
}

// AddEventNode serializes the subtree rooted at id from t (recomputing
// its lengths first) and appends the result as one event.
func (r *RecordOutput) AddEventNode(t *tree.Tree, id tree.NodeID) error {
	if err := t.RecomputeLengths(id); err != nil {
		return err
	}

	buf := buffer.New(256, r.order)
	if err := t.Serialize(id, buf, r.order); err != nil {
		return err
	}

	return r.AddEvent(buf.Array()[:buf.Position()])
}

// Reset clears the accumulator for reuse with a new record number,
// keeping its configured compression type and limits (mirrors the
// teacher's encoder Reset, which reuses pooled buffers instead of
// reallocating per record).
func (r *RecordOutput) Reset(recordNumber uint32) {
	r.recordNumber = recordNumber
	r.events = r.events[:0]
	r.eventDataLen = 0
	r.userHeader = nil
}

// Build finalizes the record header, concatenates and compresses the
// accumulated event data, and serializes header + user header + index
// array + data (with their respective paddings) into a fresh
// wire-format buffer (spec §4.7, §3).
func (r *RecordOutput) Build() ([]byte, error) {
	rawData := make([]byte, 0, r.eventDataLen)
	index := make([]byte, 0, len(r.events)*4)

	eng := r.order.Engine()
	for _, ev := range r.events {
		rawData = append(rawData, ev...)
		index = eng.AppendUint32(index, uint32(len(ev)))
	}

	compressed, err := r.codec.Compress(rawData)
	if err != nil {
		return nil, evioerr.WrapCompression(r.compression.String(), err)
	}

	h := header.NewRecordHeader(r.order)
	h.RecordNumber = r.recordNumber
	h.EntryCount = uint32(len(r.events))
	h.IndexArrayBytes = uint32(len(index))
	h.CompressionType = r.compression

	h.SetUserHeaderLength(uint32(len(r.userHeader)))
	h.SetDataLength(uint32(len(rawData)))
	h.SetCompressedDataLength(uint32(len(compressed)))

	userHeaderPad := h.UserHeaderPad()
	dataBytes := compressed
	dataPad := h.CompressedDataPad()
	if r.compression == header.CompressionNone {
		dataBytes = rawData
		dataPad = h.DataPad()
	}

	totalWords := header.RecordHeaderWords +
		(len(r.userHeader)+userHeaderPad)/4 +
		len(index)/4 +
		(len(dataBytes)+dataPad)/4
	h.SetLength(uint32(totalWords))

	headerBytes, err := h.Encode()
	if err != nil {
		return nil, err
	}

	out := buffer.New(len(headerBytes)+len(r.userHeader)+userHeaderPad+len(index)+len(dataBytes)+dataPad, r.order)
	out.Clear()

	if err := out.PutBytes(headerBytes); err != nil {
		return nil, err
	}

	if err := out.PutBytes(r.userHeader); err != nil {
		return nil, err
	}

	if err := out.PutBytes(make([]byte, userHeaderPad)); err != nil {
		return nil, err
	}

	if err := out.PutBytes(index); err != nil {
		return nil, err
	}

	if err := out.PutBytes(dataBytes); err != nil {
		return nil, err
	}

	if err := out.PutBytes(make([]byte, dataPad)); err != nil {
		return nil, err
	}

	return out.Array()[:out.Position()], nil
}
