package tree

import (
	"math"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/evioerr"
)

// SetType sets a leaf node's declared data type. Callers must follow
// with a matching SetXxx call before serializing. Nothing checks typ
// against the existing Payload: Serialize writes only the whole
// elements of typ's size that Payload holds.
func (t *Tree) SetType(id NodeID, typ datatype.Type) error {
	n := t.Node(id)
	if n == nil {
		return evioerr.ErrIndexOutOfRange
	}

	n.Type = typ
	t.MarkDirty(id)

	return nil
}

// SetInt32Payload stores vs as a leaf payload of Int32 elements, in
// host-native byte order (Serialize converts to wire order).
func (t *Tree) SetInt32Payload(id NodeID, vs []int32) error {
	return t.setFixedPayload(id, datatype.Int32, len(vs)*4, func(buf []byte) {
		for i, v := range vs {
			byteorder.Native().Engine().PutUint32(buf[i*4:], uint32(v))
		}
	})
}

// SetUint32Payload stores vs as a leaf payload of Uint32 elements.
func (t *Tree) SetUint32Payload(id NodeID, vs []uint32) error {
	return t.setFixedPayload(id, datatype.Uint32, len(vs)*4, func(buf []byte) {
		for i, v := range vs {
			byteorder.Native().Engine().PutUint32(buf[i*4:], v)
		}
	})
}

// SetFloat32Payload stores vs as a leaf payload of Float32 elements.
func (t *Tree) SetFloat32Payload(id NodeID, vs []float32) error {
	return t.setFixedPayload(id, datatype.Float32, len(vs)*4, func(buf []byte) {
		for i, v := range vs {
			byteorder.Native().Engine().PutUint32(buf[i*4:], math.Float32bits(v))
		}
	})
}

// SetFloat64Payload stores vs as a leaf payload of Double64 elements.
func (t *Tree) SetFloat64Payload(id NodeID, vs []float64) error {
	return t.setFixedPayload(id, datatype.Double64, len(vs)*8, func(buf []byte) {
		for i, v := range vs {
			byteorder.Native().Engine().PutUint64(buf[i*8:], math.Float64bits(v))
		}
	})
}

// SetInt64Payload stores vs as a leaf payload of Long64 elements.
func (t *Tree) SetInt64Payload(id NodeID, vs []int64) error {
	return t.setFixedPayload(id, datatype.Long64, len(vs)*8, func(buf []byte) {
		for i, v := range vs {
			byteorder.Native().Engine().PutUint64(buf[i*8:], uint64(v))
		}
	})
}

// SetShort16Payload stores vs as a leaf payload of Short16 elements.
// Pad (0 or 2) is computed automatically to round the byte count to a
// 4-byte boundary, per spec §3's byte/short array pad-count rule.
func (t *Tree) SetShort16Payload(id NodeID, vs []int16) error {
	return t.setFixedPayload(id, datatype.Short16, len(vs)*2, func(buf []byte) {
		for i, v := range vs {
			byteorder.Native().Engine().PutUint16(buf[i*2:], uint16(v))
		}
	})
}

// SetUchar8Payload stores vs as a leaf payload of raw bytes (Uchar8).
// Pad (0-3) is computed automatically.
func (t *Tree) SetUchar8Payload(id NodeID, vs []byte) error {
	return t.setFixedPayload(id, datatype.Uchar8, len(vs), func(buf []byte) {
		copy(buf, vs)
	})
}

// SetComposite stores raw, already-encoded composite bytes (produced by
// the composite package) as a leaf payload of type Composite.
func (t *Tree) SetComposite(id NodeID, raw []byte) error {
	n := t.Node(id)
	if n == nil {
		return evioerr.ErrIndexOutOfRange
	}

	if len(n.Children) > 0 {
		return evioerr.ErrConflict
	}

	n.Type = datatype.Composite
	n.Payload = append([]byte(nil), raw...)
	n.Pad = uint8((4 - len(raw)%4) % 4)

	t.MarkDirty(id)

	return nil
}

func (t *Tree) setFixedPayload(id NodeID, typ datatype.Type, byteLen int, fill func([]byte)) error {
	n := t.Node(id)
	if n == nil {
		return evioerr.ErrIndexOutOfRange
	}

	if len(n.Children) > 0 {
		return evioerr.ErrConflict
	}

	buf := make([]byte, byteLen)
	fill(buf)

	n.Type = typ
	n.Payload = buf
	if typ.PadRules() {
		n.Pad = uint8((4 - byteLen%4) % 4)
	} else {
		n.Pad = 0
	}

	t.MarkDirty(id)

	return nil
}

// GetInt32Payload returns a leaf's payload reinterpreted as []int32,
// from host-native storage. Fails with ErrConflict if id is a container.
func (t *Tree) GetInt32Payload(id NodeID) ([]int32, error) {
	n, err := t.leaf(id)
	if err != nil {
		return nil, err
	}

	eng := byteorder.Native().Engine()
	out := make([]int32, len(n.Payload)/4)
	for i := range out {
		out[i] = int32(eng.Uint32(n.Payload[i*4:]))
	}

	return out, nil
}

// GetUint32Payload returns a leaf's payload reinterpreted as []uint32.
func (t *Tree) GetUint32Payload(id NodeID) ([]uint32, error) {
	n, err := t.leaf(id)
	if err != nil {
		return nil, err
	}

	eng := byteorder.Native().Engine()
	out := make([]uint32, len(n.Payload)/4)
	for i := range out {
		out[i] = eng.Uint32(n.Payload[i*4:])
	}

	return out, nil
}

// GetFloat32Payload returns a leaf's payload reinterpreted as []float32.
func (t *Tree) GetFloat32Payload(id NodeID) ([]float32, error) {
	n, err := t.leaf(id)
	if err != nil {
		return nil, err
	}

	out := make([]float32, len(n.Payload)/4)
	for i := range out {
		out[i] = math.Float32frombits(byteorder.Native().Engine().Uint32(n.Payload[i*4:]))
	}

	return out, nil
}

// GetFloat64Payload returns a leaf's payload reinterpreted as []float64.
func (t *Tree) GetFloat64Payload(id NodeID) ([]float64, error) {
	n, err := t.leaf(id)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(n.Payload)/8)
	for i := range out {
		out[i] = math.Float64frombits(byteorder.Native().Engine().Uint64(n.Payload[i*8:]))
	}

	return out, nil
}

// GetInt64Payload returns a leaf's payload reinterpreted as []int64.
func (t *Tree) GetInt64Payload(id NodeID) ([]int64, error) {
	n, err := t.leaf(id)
	if err != nil {
		return nil, err
	}

	eng := byteorder.Native().Engine()
	out := make([]int64, len(n.Payload)/8)
	for i := range out {
		out[i] = int64(eng.Uint64(n.Payload[i*8:]))
	}

	return out, nil
}

// GetShort16Payload returns a leaf's payload reinterpreted as []int16.
func (t *Tree) GetShort16Payload(id NodeID) ([]int16, error) {
	n, err := t.leaf(id)
	if err != nil {
		return nil, err
	}

	eng := byteorder.Native().Engine()
	out := make([]int16, len(n.Payload)/2)
	for i := range out {
		out[i] = int16(eng.Uint16(n.Payload[i*2:]))
	}

	return out, nil
}

// GetUchar8Payload returns a copy of a leaf's raw byte payload.
func (t *Tree) GetUchar8Payload(id NodeID) ([]byte, error) {
	n, err := t.leaf(id)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), n.Payload...), nil
}

// GetComposite returns a copy of a Composite leaf's opaque encoded bytes.
func (t *Tree) GetComposite(id NodeID) ([]byte, error) {
	return t.GetUchar8Payload(id)
}

// leaf returns id's node, failing if it does not exist or is a container.
func (t *Tree) leaf(id NodeID) (*Node, error) {
	n := t.Node(id)
	if n == nil {
		return nil, evioerr.ErrIndexOutOfRange
	}

	if len(n.Children) > 0 {
		return nil, evioerr.ErrConflict
	}

	return n, nil
}

// PayloadWords returns the number of 32-bit words n's raw payload (plus
// its padding bytes) occupies on the wire. Zero for container nodes.
func (n *Node) PayloadWords() uint32 {
	if len(n.Children) > 0 {
		return 0
	}

	total := len(n.Payload) + int(n.Pad)

	return uint32(total+3) / 4
}
