package header

import (
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/evioerr"
)

// FileHeader is the 56-byte (14-word) header at the start of every
// EVIO/HIPO file (spec §3, §6).
type FileHeader struct {
	ID              uint32 // file-family identifier, e.g. MagicHIPO/MagicEVIO
	FileNumber      uint32 // split index
	RecordCount     uint32
	IndexArrayBytes uint32
	BitInfo         BitInfo
	UserHeaderBytes uint32
	UserRegister    uint64
	TrailerPosition uint64 // byte offset of the trailer record, 0 if none
	UserInt1        uint32
	UserInt2        uint32

	Order byteorder.Order
}

// NewFileHeader returns a FileHeader with the library default version
// and header type, ready to be filled in by a writer.
func NewFileHeader(id uint32, headerType HeaderType, order byteorder.Order) *FileHeader {
	return &FileHeader{
		ID:      id,
		BitInfo: NewBitInfo(DefaultVersion).WithHeaderType(headerType),
		Order:   order,
	}
}

// Reset restores a FileHeader to its just-constructed state for reuse
// across file splits, except for ID and HeaderType which a writer
// configures once. Per spec §9 Open Question #2, Version is always
// reset to DefaultVersion, never left as whatever a prior parse set.
func (h *FileHeader) Reset() {
	ht := h.BitInfo.HeaderType()
	h.FileNumber = 0
	h.RecordCount = 0
	h.IndexArrayBytes = 0
	h.BitInfo = NewBitInfo(DefaultVersion).WithHeaderType(ht)
	h.UserHeaderBytes = 0
	h.UserRegister = 0
	h.TrailerPosition = 0
	h.UserInt1 = 0
	h.UserInt2 = 0
}

// Decode parses a FileHeader from data[offset:offset+56], auto-detecting
// byte order from the magic word (word 7).
func (h *FileHeader) Decode(data []byte, offset int) error {
	if len(data) < offset+FileHeaderBytes {
		return evioerr.ErrTruncatedHeader
	}

	buf := data[offset : offset+FileHeaderBytes]

	magicLE := byteorder.Little.Engine().Uint32(buf[28:32])

	order, ok := byteorder.DetectFromMagic(magicLE, Magic)
	if !ok {
		return evioerr.ErrBadMagic
	}

	eng := order.Engine()

	h.Order = order
	h.ID = eng.Uint32(buf[0:4])
	h.FileNumber = eng.Uint32(buf[4:8])

	headerWords := eng.Uint32(buf[8:12])
	if headerWords != FileHeaderWords {
		return evioerr.ErrBadHeaderLength
	}

	h.RecordCount = eng.Uint32(buf[12:16])
	h.IndexArrayBytes = eng.Uint32(buf[16:20])
	h.BitInfo = BitInfo(eng.Uint32(buf[20:24]))
	h.UserHeaderBytes = eng.Uint32(buf[24:28])
	// buf[28:32] is the magic word, already consumed above.
	h.UserRegister = eng.Uint64(buf[32:40])
	h.TrailerPosition = eng.Uint64(buf[40:48])
	h.UserInt1 = eng.Uint32(buf[48:52])
	h.UserInt2 = eng.Uint32(buf[52:56])

	return nil
}

// Encode serializes the FileHeader into a freshly-allocated 56-byte slice.
func (h *FileHeader) Encode() []byte {
	buf := make([]byte, FileHeaderBytes)
	eng := h.Order.Engine()

	eng.PutUint32(buf[0:4], h.ID)
	eng.PutUint32(buf[4:8], h.FileNumber)
	eng.PutUint32(buf[8:12], FileHeaderWords)
	eng.PutUint32(buf[12:16], h.RecordCount)
	eng.PutUint32(buf[16:20], h.IndexArrayBytes)
	eng.PutUint32(buf[20:24], uint32(h.BitInfo))
	eng.PutUint32(buf[24:28], h.UserHeaderBytes)
	eng.PutUint32(buf[28:32], Magic)
	eng.PutUint64(buf[32:40], h.UserRegister)
	eng.PutUint64(buf[40:48], h.TrailerPosition)
	eng.PutUint32(buf[48:52], h.UserInt1)
	eng.PutUint32(buf[52:56], h.UserInt2)

	return buf
}

// LengthInWords always returns FileHeaderWords; present for API parity
// with the other headers' length_in_words() accessor (spec §4.2).
func (h *FileHeader) LengthInWords() int { return FileHeaderWords }
