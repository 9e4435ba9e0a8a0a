package header

import (
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/evioerr"
)

// BankHeader is the 2-word container header: tag is 16 bits wide, num
// is transmitted, and the type field is 6 bits wide allowing it to
// carry ALSOBANK (0x0E)/BANK (0x10) aliases (spec §3, §6).
//
//	word0: length (total words - 1)
//	word1: (tag<<16)|(pad<<14)|(type<<8)|num
type BankHeader struct {
	Tag     uint16
	Type    datatype.Type
	Num     uint8
	Padding uint8 // 0-3
	Length  uint32
}

func (h BankHeader) Encode(order byteorder.Order) []byte {
	buf := make([]byte, BankHeaderWords*4)
	eng := order.Engine()

	eng.PutUint32(buf[0:4], h.Length)
	word1 := (uint32(h.Tag) << 16) | (uint32(h.Padding&0x3) << 14) | (uint32(h.Type) << 8) | uint32(h.Num)
	eng.PutUint32(buf[4:8], word1)

	return buf
}

func DecodeBankHeader(data []byte, offset int, order byteorder.Order) (BankHeader, error) {
	if len(data) < offset+BankHeaderWords*4 {
		return BankHeader{}, evioerr.ErrTruncatedHeader
	}

	eng := order.Engine()
	word0 := eng.Uint32(data[offset : offset+4])
	word1 := eng.Uint32(data[offset+4 : offset+8])

	return BankHeader{
		Length:  word0,
		Tag:     uint16(word1 >> 16),
		Padding: uint8((word1 >> 14) & 0x3),
		Type:    datatype.Type((word1 >> 8) & 0x3F),
		Num:     uint8(word1 & 0xFF),
	}, nil
}

// SegmentHeader is the 1-word container header: tag is 8 bits, no num,
// type field is 6 bits.
//
//	word0: (tag<<24)|(pad<<22)|(type<<16)|length
type SegmentHeader struct {
	Tag     uint8
	Type    datatype.Type
	Padding uint8
	Length  uint32 // 16 bits
}

func (h SegmentHeader) Encode(order byteorder.Order) []byte {
	buf := make([]byte, SegmentHeaderWords*4)
	word := (uint32(h.Tag) << 24) | (uint32(h.Padding&0x3) << 22) | (uint32(h.Type) << 16) | (h.Length & 0xFFFF)
	order.Engine().PutUint32(buf, word)

	return buf
}

func DecodeSegmentHeader(data []byte, offset int, order byteorder.Order) (SegmentHeader, error) {
	if len(data) < offset+SegmentHeaderWords*4 {
		return SegmentHeader{}, evioerr.ErrTruncatedHeader
	}

	word := order.Engine().Uint32(data[offset : offset+4])

	return SegmentHeader{
		Tag:     uint8(word >> 24),
		Padding: uint8((word >> 22) & 0x3),
		Type:    datatype.Type((word >> 16) & 0x3F),
		Length:  word & 0xFFFF,
	}, nil
}

// TagSegmentHeader is the 1-word container header: tag is 12 bits, no
// num, no padding (its data types are restricted to non-padding types),
// type field is 4 bits.
//
//	word0: (tag<<20)|(type<<16)|length
type TagSegmentHeader struct {
	Tag    uint16 // 12 bits
	Type   datatype.Type
	Length uint32 // 16 bits
}

func (h TagSegmentHeader) Encode(order byteorder.Order) []byte {
	buf := make([]byte, TagSegmentHeaderWords*4)
	word := (uint32(h.Tag&0xFFF) << 20) | (uint32(h.Type&0xF) << 16) | (h.Length & 0xFFFF)
	order.Engine().PutUint32(buf, word)

	return buf
}

func DecodeTagSegmentHeader(data []byte, offset int, order byteorder.Order) (TagSegmentHeader, error) {
	if len(data) < offset+TagSegmentHeaderWords*4 {
		return TagSegmentHeader{}, evioerr.ErrTruncatedHeader
	}

	word := order.Engine().Uint32(data[offset : offset+4])

	return TagSegmentHeader{
		Tag:    uint16(word>>20) & 0xFFF,
		Type:   datatype.Type((word >> 16) & 0xF),
		Length: word & 0xFFFF,
	}, nil
}
