// Package byteorder provides the endian-aware integer codec used by
// every wire-format package in this module, plus the magic-number-based
// stream endianness detection defined in spec §3.
//
// This mirrors github.com/arloliu/mebo's endian package: an EndianEngine
// is just encoding/binary's ByteOrder+AppendByteOrder, so binary.LittleEndian
// and binary.BigEndian satisfy it directly.
package byteorder

import (
	"encoding/binary"
	"unsafe"
)

// Engine combines ByteOrder and AppendByteOrder from encoding/binary
// into one interface for convenient byte-order operations.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Order is the closed enumeration {Big, Little} from spec §3, with a
// "native" alias resolved at init time.
type Order uint8

const (
	Little Order = iota
	Big
)

func (o Order) String() string {
	if o == Big {
		return "big"
	}

	return "little"
}

// Engine returns the encoding/binary ByteOrder implementation for o.
func (o Order) Engine() Engine {
	if o == Big {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// Swap returns the opposite byte order.
func (o Order) Swap() Order {
	if o == Big {
		return Little
	}

	return Big
}

// checkNative determines the host's byte order using a fixed 16-bit
// pattern, the same trick as mebo's endian.CheckEndianness.
func checkNative() Order {
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return Big
	}

	return Little
}

var native = checkNative()

// Native returns the host machine's byte order.
func Native() Order { return native }

// NativeEngine returns the Engine for the host machine's byte order.
func NativeEngine() Engine { return native.Engine() }

// DetectFromMagic determines the byte order of a stream by reading a
// magic word and comparing it, and its byte-reversal, against the
// known-good magic constant. Returns ok=false if neither orientation
// matches, meaning the stream is not a recognized file of this format.
func DetectFromMagic(wordLittleEndian uint32, knownMagic uint32) (order Order, ok bool) {
	if wordLittleEndian == knownMagic {
		return Little, true
	}

	if swap32(wordLittleEndian) == knownMagic {
		return Big, true
	}

	return Little, false
}

func swap32(v uint32) uint32 {
	return (v&0x000000FF)<<24 | (v&0x0000FF00)<<8 | (v&0x00FF0000)>>8 | (v&0xFF000000)>>24
}

// Swap16 reverses the byte order of a 16-bit word.
func Swap16(v uint16) uint16 {
	return v<<8 | v>>8
}

// Swap32 reverses the byte order of a 32-bit word.
func Swap32(v uint32) uint32 { return swap32(v) }

// Swap64 reverses the byte order of a 64-bit word.
func Swap64(v uint64) uint64 {
	return (v&0x00000000000000FF)<<56 |
		(v&0x000000000000FF00)<<40 |
		(v&0x0000000000FF0000)<<24 |
		(v&0x00000000FF000000)<<8 |
		(v&0x000000FF00000000)>>8 |
		(v&0x0000FF0000000000)>>24 |
		(v&0x00FF000000000000)>>40 |
		(v&0xFF00000000000000)>>56
}

// SwapWords16 byte-swaps a slice of uint16 words in place.
func SwapWords16(words []uint16) {
	for i := range words {
		words[i] = Swap16(words[i])
	}
}

// SwapWords32 byte-swaps a slice of uint32 words in place.
func SwapWords32(words []uint32) {
	for i := range words {
		words[i] = Swap32(words[i])
	}
}

// SwapWords64 byte-swaps a slice of uint64 words in place.
func SwapWords64(words []uint64) {
	for i := range words {
		words[i] = Swap64(words[i])
	}
}
