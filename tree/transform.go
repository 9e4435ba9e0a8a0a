package tree

import "github.com/jlab-dift/evio/evioerr"

// maxSegmentLength and maxTagSegmentLength are the field widths a
// Bank->Segment/TagSegment conversion must fit into (spec §6: both
// carry a 16-bit length field where Bank carries 32 bits).
const (
	maxSegmentLength    = 0xFFFF
	maxTagSegmentLength = 0xFFFF
)

// ToSegment converts the node at id (in place, same NodeID) from
// KindBank/KindTagSegment to KindSegment, preserving Type and Children
// by reference. Tag is truncated to the low 8 bits (segment tags are
// 8 bits wide; spec §3 does not define a reversible wider encoding).
// Fails with ErrTransformTooLarge if the node's current Length would
// not fit the target's 16-bit length field.
func (t *Tree) ToSegment(id NodeID) error {
	n := t.Node(id)
	if n == nil {
		return evioerr.ErrIndexOutOfRange
	}

	if n.Length > maxSegmentLength {
		return evioerr.ErrTransformTooLarge
	}

	n.Kind = KindSegment
	n.Tag = n.Tag & 0xFF
	n.Num = 0

	t.MarkDirty(id)
	t.bump()

	return nil
}

// ToTagSegment converts the node at id to KindTagSegment. Tag is
// truncated to 12 bits. ALSOBANK (the bank-context alias of Bank) maps
// to the tag-segment 4-bit type code 0x0E rather than being truncated
// from its 6-bit bank-context code, per the decision recorded in
// DESIGN.md: a tag-segment's 4-bit type field has no slot for Bank's
// 0x10, so ALSOBANK's low nibble (which already equals 0x0E, the
// canonical AlsoBank constant) is carried through unchanged.
func (t *Tree) ToTagSegment(id NodeID) error {
	n := t.Node(id)
	if n == nil {
		return evioerr.ErrIndexOutOfRange
	}

	if n.Length > maxTagSegmentLength {
		return evioerr.ErrTransformTooLarge
	}

	n.Kind = KindTagSegment
	n.Tag = n.Tag & 0xFFF
	n.Num = 0
	n.Type = n.Type & 0xF

	t.MarkDirty(id)
	t.bump()

	return nil
}

// ToBank converts the node at id to KindBank. tag16 supplies the full
// 16-bit tag (segment/tagsegment tags are narrower, so the caller must
// provide the missing high bits; passing the node's own truncated Tag
// back is valid when no wider value is known). num is the bank-only
// ordinal field, zero by convention for structures that never carried one.
func (t *Tree) ToBank(id NodeID, tag16 uint16, num uint8) error {
	n := t.Node(id)
	if n == nil {
		return evioerr.ErrIndexOutOfRange
	}

	n.Kind = KindBank
	n.Tag = tag16
	n.Num = num

	t.MarkDirty(id)
	t.bump()

	return nil
}
