package header

import (
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/evioerr"
)

// RecordState is the record-header lifecycle of spec §4.2: a header
// starts Empty, transitions to LengthsSet once its length fields are
// known, and to Written once encoded to a buffer. Encode requires
// LengthsSet (or Written, for re-encoding).
type RecordState uint8

const (
	StateEmpty RecordState = iota
	StateLengthsSet
	StateWritten
)

// RecordHeader is the 56-byte (14-word) header framing one record
// (spec §3, §6).
type RecordHeader struct {
	RecordWords         uint32 // total record length in 32-bit words
	RecordNumber        uint32
	EntryCount          uint32 // number of events in the record
	IndexArrayBytes     uint32 // entryCount * 4
	BitInfo             BitInfo
	UserHeaderBytes     uint32
	UncompressedLength  uint32 // uncompressed event-data length, bytes
	CompressionType     CompressionType
	CompressedWords     uint32 // compressed-data length in 32-bit words (28 bits)
	UserRegister1       uint64
	UserRegister2       uint64

	Order byteorder.Order
	state RecordState
}

// NewRecordHeader returns an Empty record header with the library
// default version.
func NewRecordHeader(order byteorder.Order) *RecordHeader {
	return &RecordHeader{
		BitInfo: NewBitInfo(DefaultVersion).WithHeaderType(HeaderTypeHipoFile),
		Order:   order,
		state:   StateEmpty,
	}
}

// State returns the header's current lifecycle state.
func (h *RecordHeader) State() RecordState { return h.state }

// SetLength sets RecordWords and transitions Empty/LengthsSet->LengthsSet.
func (h *RecordHeader) SetLength(words uint32) {
	h.RecordWords = words
	h.advanceToLengthsSet()
}

// SetDataLength sets UncompressedLength and derives the data-section
// padding (bytes needed to round up to a 4-byte boundary), packed into
// the bit-info word's pad2 field per spec §3.
func (h *RecordHeader) SetDataLength(bytes uint32) {
	h.UncompressedLength = bytes
	pad := (4 - bytes%4) % 4
	h.BitInfo = h.BitInfo.WithPad2(uint8(pad))
	h.advanceToLengthsSet()
}

// SetCompressedDataLength sets CompressedWords from a byte length and
// derives the compressed-data padding into the bit-info word's pad3 field.
func (h *RecordHeader) SetCompressedDataLength(bytes uint32) {
	pad := (4 - bytes%4) % 4
	h.CompressedWords = (bytes + pad) / 4
	h.BitInfo = h.BitInfo.WithPad3(uint8(pad))
	h.advanceToLengthsSet()
}

// SetUserHeaderLength sets UserHeaderBytes and derives the user-header
// padding into the bit-info word's pad1 field.
func (h *RecordHeader) SetUserHeaderLength(bytes uint32) {
	h.UserHeaderBytes = bytes
	pad := (4 - bytes%4) % 4
	h.BitInfo = h.BitInfo.WithPad1(uint8(pad))
	h.advanceToLengthsSet()
}

func (h *RecordHeader) advanceToLengthsSet() {
	if h.state == StateEmpty {
		h.state = StateLengthsSet
	}
}

// UserHeaderPad returns the bytes of zero-fill after the user header.
func (h *RecordHeader) UserHeaderPad() int { return int(h.BitInfo.Pad1()) }

// DataPad returns the bytes of zero-fill after uncompressed event data.
func (h *RecordHeader) DataPad() int { return int(h.BitInfo.Pad2()) }

// CompressedDataPad returns the bytes of zero-fill after compressed data.
func (h *RecordHeader) CompressedDataPad() int { return int(h.BitInfo.Pad3()) }

// LengthInWords returns RecordHeaderWords (14), the fixed header size.
func (h *RecordHeader) LengthInWords() int { return RecordHeaderWords }

// Encode serializes the header into a fresh 56-byte slice. Requires
// the header to be in LengthsSet or Written state.
func (h *RecordHeader) Encode() ([]byte, error) {
	if h.state == StateEmpty {
		return nil, evioerr.ErrBadFormat
	}

	buf := make([]byte, RecordHeaderBytes)
	eng := h.Order.Engine()

	eng.PutUint32(buf[0:4], h.RecordWords)
	eng.PutUint32(buf[4:8], h.RecordNumber)
	eng.PutUint32(buf[8:12], RecordHeaderWords)
	eng.PutUint32(buf[12:16], h.EntryCount)
	eng.PutUint32(buf[16:20], h.IndexArrayBytes)
	eng.PutUint32(buf[20:24], uint32(h.BitInfo))
	eng.PutUint32(buf[24:28], h.UserHeaderBytes)
	eng.PutUint32(buf[28:32], Magic)
	eng.PutUint32(buf[32:36], h.UncompressedLength)

	word9 := (uint32(h.CompressionType) << 28) | (h.CompressedWords & 0x0FFFFFFF)
	eng.PutUint32(buf[36:40], word9)

	eng.PutUint64(buf[40:48], h.UserRegister1)
	eng.PutUint64(buf[48:56], h.UserRegister2)

	h.state = StateWritten

	return buf, nil
}

// Decode parses a RecordHeader from data[offset:offset+56], detecting
// byte order from the magic word, and validates the invariants listed
// in spec §4.7: magic present, header length == 14, index length a
// multiple of 4, compressed length consistent with the record length.
func (h *RecordHeader) Decode(data []byte, offset int) error {
	if len(data) < offset+RecordHeaderBytes {
		return evioerr.ErrTruncatedHeader
	}

	buf := data[offset : offset+RecordHeaderBytes]

	magicLE := byteorder.Little.Engine().Uint32(buf[28:32])

	order, ok := byteorder.DetectFromMagic(magicLE, Magic)
	if !ok {
		return evioerr.ErrBadMagic
	}

	eng := order.Engine()
	h.Order = order

	h.RecordWords = eng.Uint32(buf[0:4])
	h.RecordNumber = eng.Uint32(buf[4:8])

	headerWords := eng.Uint32(buf[8:12])
	if headerWords != RecordHeaderWords {
		return evioerr.ErrBadHeaderLength
	}

	h.EntryCount = eng.Uint32(buf[12:16])
	h.IndexArrayBytes = eng.Uint32(buf[16:20])
	if h.IndexArrayBytes%4 != 0 {
		return evioerr.ErrBadFormat
	}

	h.BitInfo = BitInfo(eng.Uint32(buf[20:24]))
	h.UserHeaderBytes = eng.Uint32(buf[24:28])
	h.UncompressedLength = eng.Uint32(buf[32:36])

	word9 := eng.Uint32(buf[36:40])
	h.CompressionType = CompressionType(word9 >> 28)
	h.CompressedWords = word9 & 0x0FFFFFFF

	h.UserRegister1 = eng.Uint64(buf[40:48])
	h.UserRegister2 = eng.Uint64(buf[48:56])

	compressedBytes := h.CompressedWords * 4
	available := h.RecordWords*4 - RecordHeaderBytes - h.IndexArrayBytes - h.UserHeaderBytes
	if h.CompressionType != CompressionNone && compressedBytes > available {
		return evioerr.ErrBadFormat
	}

	h.state = StateWritten

	return nil
}
