// Package compact implements the zero-copy node-descriptor view of an
// already-decompressed record stream, per spec §4.6: a flat table of
// offset/length/kind tuples referencing the original buffer directly,
// rather than materializing a tree package event tree. Grounded on
// github.com/arloliu/mebo's blob/numeric_decoder.go, which decodes a
// numeric blob by indexing into the backing buffer via
// section.NumericIndexEntry (offset, length) pairs instead of copying
// out individual values.
package compact

import "github.com/jlab-dift/evio/datatype"

// Kind is the structure shape a Descriptor refers to, extended with
// Event for the per-record top-level entries spec §4.6 names alongside
// Bank/Segment/TagSegment.
type Kind uint8

const (
	KindEvent Kind = iota
	KindBank
	KindSegment
	KindTagSegment
)

// noParent marks a descriptor with no parent (a top-level event).
const noParent = -1

// Descriptor is one scanned node: where it starts in the scanner's
// buffer, how many header words precede its body, its total on-wire
// byte length (header + body), its structural kind/tag/num/type, and
// its parent's descriptor index.
type Descriptor struct {
	BufferOffset int
	HeaderWords  uint8
	TotalBytes   uint32
	Kind         Kind
	Tag          uint16
	Num          uint8
	DataType     datatype.Type
	Parent       int // index into the owning Scanner's descriptor slice, or noParent

	obsolete bool
}

// Obsolete reports whether this descriptor has been invalidated by a
// RemoveStructure call (spec §4.6: "all existing node descriptors
// referring to the removed subtree are marked obsolete").
func (d *Descriptor) Obsolete() bool { return d.obsolete }
