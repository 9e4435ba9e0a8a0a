// Package datatype defines the EVIO/HIPO data-type enumeration (spec §3)
// shared by the event tree, composite codec and compact reader.
//
// Modeled after github.com/arloliu/mebo's format.EncodingType /
// format.CompressionType pattern: a sized integer type with a String()
// method and named constants, rather than stdlib iota-only enums with
// no wire meaning.
package datatype

import "fmt"

// Type is the on-wire container/payload type code.
type Type uint8

const (
	Unknown32   Type = 0
	Uint32      Type = 1
	Float32     Type = 2
	Charstar8   Type = 3
	Short16     Type = 4
	Ushort16    Type = 5
	Char8       Type = 6
	Uchar8      Type = 7
	Double64    Type = 8
	Long64      Type = 9
	Ulong64     Type = 10
	Int32       Type = 11
	TagSegment  Type = 12
	AlsoSegment Type = 13
	AlsoBank    Type = 14
	Composite   Type = 15
	Bank        Type = 16
	Segment     Type = 32
)

// Multiplier codes, legal only inside a composite format string (§4.3).
const (
	Hollerit Type = 0x41 // 'A'-ish marker reused from evio's historical code space
	NCount   Type = 0x42
	ncount   Type = 0x43
	mcount   Type = 0x44
)

func (t Type) String() string {
	switch t {
	case Unknown32:
		return "UNKNOWN32"
	case Uint32:
		return "UINT32"
	case Float32:
		return "FLOAT32"
	case Charstar8:
		return "CHARSTAR8"
	case Short16:
		return "SHORT16"
	case Ushort16:
		return "USHORT16"
	case Char8:
		return "CHAR8"
	case Uchar8:
		return "UCHAR8"
	case Double64:
		return "DOUBLE64"
	case Long64:
		return "LONG64"
	case Ulong64:
		return "ULONG64"
	case Int32:
		return "INT32"
	case TagSegment:
		return "TAGSEGMENT"
	case AlsoSegment:
		return "ALSOSEGMENT"
	case AlsoBank:
		return "ALSOBANK"
	case Composite:
		return "COMPOSITE"
	case Bank:
		return "BANK"
	case Segment:
		return "SEGMENT"
	default:
		return fmt.Sprintf("TYPE(0x%02x)", uint8(t))
	}
}

// IsContainer reports whether t denotes a structure that holds children
// (bank-or-alias, segment-or-alias, tagsegment) rather than a leaf
// payload of primitives.
func (t Type) IsContainer() bool {
	switch t {
	case Bank, AlsoBank, Segment, AlsoSegment, TagSegment:
		return true
	default:
		return false
	}
}

// CanonicalBank maps a bank-equivalent code to the canonical Bank code.
func (t Type) CanonicalBank() Type {
	if t == AlsoBank {
		return Bank
	}

	return t
}

// CanonicalSegment maps a segment-equivalent code to the canonical
// Segment code.
func (t Type) CanonicalSegment() Type {
	if t == AlsoSegment {
		return Segment
	}

	return t
}

// ElementSize returns the size in bytes of one primitive element of
// type t, or 0 if t is a container/variable-length type (Charstar8,
// Composite) whose element size isn't fixed.
func (t Type) ElementSize() int {
	switch t {
	case Char8, Uchar8:
		return 1
	case Short16, Ushort16:
		return 2
	case Uint32, Float32, Int32, Unknown32:
		return 4
	case Double64, Long64, Ulong64:
		return 8
	default:
		return 0
	}
}

// PadRules reports whether a leaf of type t carries a padding count in
// its header (true for byte/short array leaves per spec §3/§4.4).
func (t Type) PadRules() bool {
	switch t {
	case Char8, Uchar8, Short16, Ushort16, Charstar8:
		return true
	default:
		return false
	}
}
