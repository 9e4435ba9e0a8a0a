package tree

import (
	"github.com/jlab-dift/evio/buffer"
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/header"
)

// wordsOf returns the on-wire word count of the subtree rooted at id:
// for a container, header words + body; for a leaf, header words +
// payload words.
func (t *Tree) wordsOf(id NodeID) uint32 {
	n := t.Node(id)
	if len(n.Children) == 0 {
		return n.headerWords() + n.PayloadWords()
	}

	return n.Length + 1
}

// RecomputeLengths walks the subtree rooted at id post-order, setting
// every container's Length field from its children's actual sizes and
// clearing the dirty flag, per spec §3 ("a dirty flag tracks whether
// lengths match children; recompute propagates bottom-up before write").
func (t *Tree) RecomputeLengths(id NodeID) error {
	n := t.Node(id)
	if n == nil {
		return evioerr.ErrIndexOutOfRange
	}

	for _, c := range n.Children {
		if err := t.RecomputeLengths(c); err != nil {
			return err
		}
	}

	if len(n.Children) > 0 {
		var body uint32
		for _, c := range n.Children {
			body += t.wordsOf(c)
		}

		switch n.Kind {
		case KindBank:
			n.Length = 1 + body
		default:
			n.Length = body
		}
	} else {
		// A leaf passed directly as id (rather than reached as someone
		// else's child) still needs its own Length set: wordsOf only
		// derives a leaf's word count for a *parent's* body sum, it never
		// assigns the leaf's own Length field.
		switch n.Kind {
		case KindBank:
			n.Length = 1 + n.PayloadWords()
		default:
			n.Length = n.PayloadWords()
		}
	}

	n.dirty = false

	return nil
}

// Serialize writes the subtree rooted at id to buf in the given wire
// byte order, depth-first. It fails with ErrDirtyTree if any node in
// the subtree has a stale Length (call RecomputeLengths first).
func (t *Tree) Serialize(id NodeID, buf *buffer.Buffer, order byteorder.Order) error {
	n := t.Node(id)
	if n == nil {
		return evioerr.ErrIndexOutOfRange
	}

	if n.dirty {
		return evioerr.ErrDirtyTree
	}

	switch n.Kind {
	case KindBank:
		h := header.BankHeader{Tag: n.Tag, Type: n.Type, Num: n.Num, Padding: n.Pad, Length: n.Length}
		buf.PutBytes(h.Encode(order))
	case KindSegment:
		h := header.SegmentHeader{Tag: uint8(n.Tag), Type: n.Type, Padding: n.Pad, Length: n.Length}
		buf.PutBytes(h.Encode(order))
	case KindTagSegment:
		h := header.TagSegmentHeader{Tag: n.Tag, Type: n.Type, Length: n.Length}
		buf.PutBytes(h.Encode(order))
	}

	if len(n.Children) > 0 {
		for _, c := range n.Children {
			if err := t.Serialize(c, buf, order); err != nil {
				return err
			}
		}

		return nil
	}

	return writeLeafPayload(buf, n, order)
}

// writeLeafPayload writes n's payload (stored host-native) converting
// to order, then appends n.Pad zero bytes. Charstar8/Composite payloads
// are opaque byte streams and are written verbatim.
func writeLeafPayload(buf *buffer.Buffer, n *Node, order byteorder.Order) error {
	elemSize := n.Type.ElementSize()
	if elemSize == 0 {
		if err := buf.PutBytes(n.Payload); err != nil {
			return err
		}

		return putPad(buf, int(n.Pad))
	}

	native := byteorder.Native().Engine()
	eng := order.Engine()

	for off := 0; off+elemSize <= len(n.Payload); off += elemSize {
		switch elemSize {
		case 1:
			if err := buf.PutUint8(n.Payload[off]); err != nil {
				return err
			}
		case 2:
			v := native.Uint16(n.Payload[off:])
			tmp := make([]byte, 2)
			eng.PutUint16(tmp, v)

			if err := buf.PutBytes(tmp); err != nil {
				return err
			}
		case 4:
			v := native.Uint32(n.Payload[off:])
			tmp := make([]byte, 4)
			eng.PutUint32(tmp, v)

			if err := buf.PutBytes(tmp); err != nil {
				return err
			}
		case 8:
			v := native.Uint64(n.Payload[off:])
			tmp := make([]byte, 8)
			eng.PutUint64(tmp, v)

			if err := buf.PutBytes(tmp); err != nil {
				return err
			}
		}
	}

	return putPad(buf, int(n.Pad))
}

func putPad(buf *buffer.Buffer, n int) error {
	for i := 0; i < n; i++ {
		if err := buf.PutUint8(0); err != nil {
			return err
		}
	}

	return nil
}
