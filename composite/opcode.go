// Package composite implements the Composite Data (type 15) format
// string compiler and stack-machine evaluator of spec §4.3: a format
// string like "N(I,2F)" compiles to a flat opcode program, and the same
// program drives either value iteration (decode) or a recursive
// byte-swap (for endian conversion), matching spec's "the same opcode
// program drives either byte-reorder or pure iteration" requirement.
//
// Grounded on github.com/arloliu/mebo's encoding/columnar.go dispatch
// pattern (decode by type, one case per primitive) and the iterative
// bit-consuming loop shape of internal/encoding/numeric_gorilla.go.
package composite

import "github.com/jlab-dift/evio/datatype"

// OpKind distinguishes a leaf opcode from group delimiters.
type OpKind uint8

const (
	OpLeaf OpKind = iota
	OpGroupOpen
	OpGroupClose
)

// DynamicCount names a repeat count read from the payload at runtime,
// rather than fixed at compile time (spec §4.3's N/n/m multiplier codes).
type DynamicCount uint8

const (
	DynamicNone DynamicCount = iota
	DynamicN                 // uint32 count
	DynamicSmallN            // uint16 count ('n')
	DynamicM                 // uint8 count ('m')
)

func (d DynamicCount) byteSize() int {
	switch d {
	case DynamicN:
		return 4
	case DynamicSmallN:
		return 2
	case DynamicM:
		return 1
	default:
		return 0
	}
}

// Opcode is one entry of a compiled composite format program.
type Opcode struct {
	Kind OpKind

	// OpLeaf fields.
	LeafType datatype.Type

	// Repeat count, valid for both OpLeaf (repeat this leaf N times)
	// and OpGroupOpen (repeat the group N times).
	FixedCount   int // used when Dynamic == DynamicNone
	Dynamic      DynamicCount
	MatchIndex   int // OpGroupOpen: index of matching OpGroupClose, and vice versa
}

// MaxStackDepth bounds nested parenthesized groups, guarding against
// runaway or maliciously deep format strings (spec §4.3 "stack
// overflow (fixed max depth)" failure mode).
const MaxStackDepth = 64
