package tree

import (
	"fmt"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/header"
)

// Decode parses a single top-level event (always bank-rooted, per spec
// §3) out of data in the given wire byte order, materializing it as a
// Tree whose leaf payloads are stored host-native (the same convention
// Set*Payload uses), ready for RecomputeLengths/Serialize round-trips
// or for Get*Payload reads. Grounded on compact.Scanner.scanBank/
// scanChildren's recursive descent, adapted to build real nodes rather
// than offset/length descriptors.
func Decode(data []byte, order byteorder.Order) (*Tree, error) {
	t := New()

	if _, err := t.decodeBank(data, 0, len(data), NoNode, order); err != nil {
		return nil, err
	}

	t.bump()

	return t, nil
}

func (t *Tree) decodeBank(data []byte, offset, limit int, parent NodeID, order byteorder.Order) (NodeID, error) {
	bh, err := header.DecodeBankHeader(data, offset, order)
	if err != nil {
		return NoNode, err
	}

	total := (int(bh.Length) + 1) * 4
	if offset+total > limit {
		return NoNode, evioerr.ErrTruncatedHeader
	}

	id := t.alloc(Node{
		Kind:   KindBank,
		Tag:    bh.Tag,
		Type:   bh.Type,
		Num:    bh.Num,
		Pad:    bh.Padding,
		Length: bh.Length,
		Parent: parent,
	})
	if parent == NoNode {
		t.root = id
	}

	bodyStart := offset + header.BankHeaderWords*4
	bodyEnd := offset + total

	if bh.Type.IsContainer() {
		if err := t.decodeChildren(data, bodyStart, bodyEnd, id, bh.Type, order); err != nil {
			return NoNode, err
		}
	} else {
		t.decodeLeaf(data, bodyStart, bodyEnd, id, bh.Type, int(bh.Padding), order)
	}

	return id, nil
}

func (t *Tree) decodeSegment(data []byte, offset, limit int, parent NodeID, order byteorder.Order) (NodeID, error) {
	sh, err := header.DecodeSegmentHeader(data, offset, order)
	if err != nil {
		return NoNode, err
	}

	total := (1 + int(sh.Length)) * 4
	if offset+total > limit {
		return NoNode, evioerr.ErrTruncatedHeader
	}

	id := t.alloc(Node{
		Kind:   KindSegment,
		Tag:    uint16(sh.Tag),
		Type:   sh.Type,
		Pad:    sh.Padding,
		Length: sh.Length,
		Parent: parent,
	})
	if parent == NoNode {
		t.root = id
	}

	bodyStart := offset + header.SegmentHeaderWords*4
	bodyEnd := offset + total

	if sh.Type.IsContainer() {
		if err := t.decodeChildren(data, bodyStart, bodyEnd, id, sh.Type, order); err != nil {
			return NoNode, err
		}
	} else {
		t.decodeLeaf(data, bodyStart, bodyEnd, id, sh.Type, int(sh.Padding), order)
	}

	return id, nil
}

func (t *Tree) decodeTagSegment(data []byte, offset, limit int, parent NodeID, order byteorder.Order) (NodeID, error) {
	th, err := header.DecodeTagSegmentHeader(data, offset, order)
	if err != nil {
		return NoNode, err
	}

	total := (1 + int(th.Length)) * 4
	if offset+total > limit {
		return NoNode, evioerr.ErrTruncatedHeader
	}

	id := t.alloc(Node{
		Kind:   KindTagSegment,
		Tag:    th.Tag,
		Type:   th.Type,
		Length: th.Length,
		Parent: parent,
	})
	if parent == NoNode {
		t.root = id
	}

	bodyStart := offset + header.TagSegmentHeaderWords*4
	bodyEnd := offset + total

	if th.Type.IsContainer() {
		if err := t.decodeChildren(data, bodyStart, bodyEnd, id, th.Type, order); err != nil {
			return NoNode, err
		}
	} else {
		t.decodeLeaf(data, bodyStart, bodyEnd, id, th.Type, 0, order)
	}

	return id, nil
}

// decodeChildren walks a run of sibling structures of the kind
// dictated by parentType within [start, end), attaching each to
// parentID as it is decoded.
func (t *Tree) decodeChildren(data []byte, start, end int, parentID NodeID, parentType datatype.Type, order byteorder.Order) error {
	cursor := start

	for cursor < end {
		var (
			childID NodeID
			err     error
		)

		switch parentType.CanonicalBank().CanonicalSegment() {
		case datatype.Bank, datatype.AlsoBank:
			childID, err = t.decodeBank(data, cursor, end, parentID, order)
		case datatype.Segment, datatype.AlsoSegment:
			childID, err = t.decodeSegment(data, cursor, end, parentID, order)
		case datatype.TagSegment:
			childID, err = t.decodeTagSegment(data, cursor, end, parentID, order)
		default:
			return fmt.Errorf("%w: undecodable container data type %v", evioerr.ErrBadFormat, parentType)
		}

		if err != nil {
			return err
		}

		cursor += int(t.wordsOf(childID)) * 4

		p := t.Node(parentID)
		p.Children = append(p.Children, childID)
	}

	return nil
}

// decodeLeaf copies data[start:end) into a freshly decoded leaf's
// Payload, converting from wire order to host-native element layout
// (the inverse of writeLeafPayload), and records its pad count.
func (t *Tree) decodeLeaf(data []byte, start, end int, id NodeID, typ datatype.Type, pad int, order byteorder.Order) {
	n := t.Node(id)
	n.Type = typ
	n.Pad = uint8(pad)

	raw := data[start:end]
	if pad > 0 && pad <= len(raw) {
		raw = raw[:len(raw)-pad]
	}

	elemSize := typ.ElementSize()
	if elemSize == 0 {
		n.Payload = append([]byte(nil), raw...)
		return
	}

	native := byteorder.Native().Engine()
	eng := order.Engine()

	out := make([]byte, len(raw))
	for off := 0; off+elemSize <= len(raw); off += elemSize {
		switch elemSize {
		case 1:
			out[off] = raw[off]
		case 2:
			native.PutUint16(out[off:], eng.Uint16(raw[off:]))
		case 4:
			native.PutUint32(out[off:], eng.Uint32(raw[off:]))
		case 8:
			native.PutUint64(out[off:], eng.Uint64(raw[off:]))
		}
	}

	n.Payload = out
}
