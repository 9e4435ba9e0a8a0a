package header

import (
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/evioerr"
)

// BlockHeaderV4 is the 32-byte (8-word) legacy block header used by
// format versions 4 (spec §6).
type BlockHeaderV4 struct {
	BlockWords  uint32
	BlockNumber uint32
	EventCount  uint32
	Reserved1   uint32
	BitInfo     BlockBitInfo
	Reserved2   uint32

	Order byteorder.Order
}

func NewBlockHeaderV4(order byteorder.Order) *BlockHeaderV4 {
	return &BlockHeaderV4{
		BitInfo: NewBlockBitInfo(4),
		Order:   order,
	}
}

func (h *BlockHeaderV4) LengthInWords() int { return BlockHeaderWords }

func (h *BlockHeaderV4) Encode() []byte {
	buf := make([]byte, BlockHeaderBytes)
	eng := h.Order.Engine()

	eng.PutUint32(buf[0:4], h.BlockWords)
	eng.PutUint32(buf[4:8], h.BlockNumber)
	eng.PutUint32(buf[8:12], BlockHeaderWords)
	eng.PutUint32(buf[12:16], h.EventCount)
	eng.PutUint32(buf[16:20], h.Reserved1)
	eng.PutUint32(buf[20:24], uint32(h.BitInfo))
	eng.PutUint32(buf[24:28], h.Reserved2)
	eng.PutUint32(buf[28:32], Magic)

	return buf
}

func (h *BlockHeaderV4) Decode(data []byte, offset int) error {
	if len(data) < offset+BlockHeaderBytes {
		return evioerr.ErrTruncatedHeader
	}

	buf := data[offset : offset+BlockHeaderBytes]

	magicLE := byteorder.Little.Engine().Uint32(buf[28:32])

	order, ok := byteorder.DetectFromMagic(magicLE, Magic)
	if !ok {
		return evioerr.ErrBadMagic
	}

	eng := order.Engine()
	h.Order = order

	h.BlockWords = eng.Uint32(buf[0:4])
	h.BlockNumber = eng.Uint32(buf[4:8])

	headerWords := eng.Uint32(buf[8:12])
	if headerWords != BlockHeaderWords {
		return evioerr.ErrBadHeaderLength
	}

	h.EventCount = eng.Uint32(buf[12:16])
	h.Reserved1 = eng.Uint32(buf[16:20])
	h.BitInfo = BlockBitInfo(eng.Uint32(buf[20:24]))
	h.Reserved2 = eng.Uint32(buf[24:28])

	if h.BitInfo.Version() != 4 {
		return evioerr.ErrBadVersion
	}

	return nil
}

// BlockHeaderLegacy is the version-1-through-3 block header: same
// word positions as V4, but words 4/5 are a start/end valid-word range
// rather than reserved/bit-info; the magic word is still checked, but
// byte order comes from the caller (spec §6).
type BlockHeaderLegacy struct {
	BlockWords  uint32
	BlockNumber uint32
	EventCount  uint32
	Start       uint32 // word 4: start of valid data
	End         uint32 // word 5: end of valid data
	Version     uint8

	Order byteorder.Order
}

func NewBlockHeaderLegacy(version uint8, order byteorder.Order) *BlockHeaderLegacy {
	return &BlockHeaderLegacy{Version: version, Order: order}
}

func (h *BlockHeaderLegacy) LengthInWords() int { return BlockHeaderWords }

func (h *BlockHeaderLegacy) Encode() []byte {
	buf := make([]byte, BlockHeaderBytes)
	eng := h.Order.Engine()

	eng.PutUint32(buf[0:4], h.BlockWords)
	eng.PutUint32(buf[4:8], h.BlockNumber)
	eng.PutUint32(buf[8:12], BlockHeaderWords)
	eng.PutUint32(buf[12:16], h.EventCount)
	eng.PutUint32(buf[16:20], h.Start)
	eng.PutUint32(buf[20:24], h.End)
	eng.PutUint32(buf[24:28], uint32(h.Version))
	eng.PutUint32(buf[28:32], Magic)

	return buf
}

// Decode parses a legacy block header. Unlike V4 it has no reliable
// magic field semantics pre-v4, so byte order must be supplied by the
// caller (normally carried over from the file header's detection).
func (h *BlockHeaderLegacy) Decode(data []byte, offset int, order byteorder.Order) error {
	if len(data) < offset+BlockHeaderBytes {
		return evioerr.ErrTruncatedHeader
	}

	buf := data[offset : offset+BlockHeaderBytes]
	eng := order.Engine()
	h.Order = order

	h.BlockWords = eng.Uint32(buf[0:4])
	h.BlockNumber = eng.Uint32(buf[4:8])

	headerWords := eng.Uint32(buf[8:12])
	if headerWords != BlockHeaderWords {
		return evioerr.ErrBadHeaderLength
	}

	h.EventCount = eng.Uint32(buf[12:16])
	h.Start = eng.Uint32(buf[16:20])
	h.End = eng.Uint32(buf[20:24])
	h.Version = uint8(eng.Uint32(buf[24:28]))

	magicLE := byteorder.Little.Engine().Uint32(buf[28:32])
	if _, ok := byteorder.DetectFromMagic(magicLE, Magic); !ok {
		return evioerr.ErrBadMagic
	}

	// Per spec §9 Open Question #3, version 1/2 files where a logical
	// event spans blocks are signaled by Start==0; this module rejects
	// them rather than attempting to stitch cross-block events.
	if h.Version < 3 && h.Start == 0 {
		return evioerr.ErrBadFormat
	}

	return nil
}
