package composite

import (
	"fmt"

	"github.com/jlab-dift/evio/buffer"
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/evioerr"
)

// stackFrame tracks one open parenthesized group during evaluation, as
// described by spec §4.3: the opcode index where the group's body
// starts, how many times it repeats, and how many iterations have run.
type stackFrame struct {
	bodyStart int
	bodyEnd   int
	repeat    int
	iter      int
}

// LeafVisitor receives one primitive element at a time during Decode.
type LeafVisitor func(t datatype.Type, raw []byte) error

// Decode walks ops over buf (which must already be in host/local byte
// order), invoking visit once per scalar leaf element in program order.
// String (Charstar8) leaves are passed their NUL-padded raw bytes
// verbatim; the caller is responsible for un-framing them.
func Decode(buf *buffer.Buffer, ops []Opcode, visit LeafVisitor) error {
	return run(buf, ops, buf.Order(), func(t datatype.Type, raw []byte) error {
		return visit(t, raw)
	})
}

// Swap performs an in-place, recursive byte-reorder of the composite
// payload at buf's current position, driven by the same opcode program
// used for decoding (spec §4.3: "the same opcode program drives either
// byte-reorder or pure iteration"). fromOrder is the byte order the
// data is currently stored in; after Swap the bytes are in fromOrder.Swap().
func Swap(buf *buffer.Buffer, ops []Opcode, fromOrder byteorder.Order) error {
	return run(buf, ops, fromOrder, func(t datatype.Type, raw []byte) error {
		// Reading and writing through the SAME engine (fromOrder, not
		// the host's native order) is what makes this a pure byte
		// reversal regardless of host endianness: Swap16/32/64 flips
		// the numeric value's byte-bytes, and re-encoding it with the
		// identical convention used to decode it flips the wire bytes.
		switch len(raw) {
		case 2:
			v := fromOrder.Engine().Uint16(raw)
			fromOrder.Engine().PutUint16(raw, byteorder.Swap16(v))
		case 4:
			v := fromOrder.Engine().Uint32(raw)
			fromOrder.Engine().PutUint32(raw, byteorder.Swap32(v))
		case 8:
			v := fromOrder.Engine().Uint64(raw)
			fromOrder.Engine().PutUint64(raw, byteorder.Swap64(v))
		}

		return nil
	})
}

// run is the shared stack machine: it reads dynamic N/n/m counts from
// buf using readOrder as they're encountered, tracks repeat frames, and
// calls onLeaf once per scalar element with that element's raw bytes
// (still positioned in buf so callers needing to swap can write back
// through the same slice).
func run(buf *buffer.Buffer, ops []Opcode, readOrder byteorder.Order, onLeaf func(datatype.Type, []byte) error) error {
	var stack []stackFrame

	ip := 0
	for ip < len(ops) {
		op := ops[ip]

		switch op.Kind {
		case OpGroupOpen:
			count, err := readCount(buf, op, readOrder)
			if err != nil {
				return err
			}

			if count == 0 {
				ip = op.MatchIndex + 1

				continue
			}

			if len(stack) >= MaxStackDepth {
				return fmt.Errorf("%w: composite evaluation stack overflow", evioerr.ErrBadFormat)
			}

			stack = append(stack, stackFrame{
				bodyStart: ip + 1,
				bodyEnd:   op.MatchIndex,
				repeat:    count,
				iter:      0,
			})
			ip++

		case OpGroupClose:
			if len(stack) == 0 {
				return fmt.Errorf("%w: unmatched ')' during evaluation", evioerr.ErrBadFormat)
			}

			f := &stack[len(stack)-1]
			f.iter++

			if f.iter < f.repeat {
				ip = f.bodyStart
			} else {
				stack = stack[:len(stack)-1]
				ip++
			}

		case OpLeaf:
			count, err := readCount(buf, op, readOrder)
			if err != nil {
				return err
			}

			if err := stepLeaf(buf, op.LeafType, count, onLeaf); err != nil {
				return err
			}

			ip++

		default:
			return fmt.Errorf("%w: unknown opcode kind", evioerr.ErrBadFormat)
		}
	}

	return nil
}

func readCount(buf *buffer.Buffer, op Opcode, order byteorder.Order) (int, error) {
	if op.Dynamic == DynamicNone {
		return op.FixedCount, nil
	}

	size := op.Dynamic.byteSize()
	if buf.Remaining() < size {
		return 0, evioerr.ErrBufferUnderflow
	}

	raw, err := buf.GetBytes(size)
	if err != nil {
		return 0, err
	}

	switch op.Dynamic {
	case DynamicN:
		return int(order.Engine().Uint32(raw)), nil
	case DynamicSmallN:
		return int(order.Engine().Uint16(raw)), nil
	case DynamicM:
		return int(raw[0]), nil
	default:
		return 0, fmt.Errorf("%w: unknown dynamic count kind", evioerr.ErrBadFormat)
	}
}

func stepLeaf(buf *buffer.Buffer, t datatype.Type, count int, onLeaf func(datatype.Type, []byte) error) error {
	elemSize := t.ElementSize()
	if elemSize == 0 {
		// Charstar8: treat the whole declared count as one opaque,
		// already-padded byte run (string framing is handled by the
		// tree package's string-array codec, not here).
		raw, err := buf.GetBytes(count)
		if err != nil {
			return err
		}

		return onLeaf(t, raw)
	}

	for i := 0; i < count; i++ {
		raw, err := buf.GetBytes(elemSize)
		if err != nil {
			return err
		}

		if err := onLeaf(t, raw); err != nil {
			return err
		}
	}

	return nil
}
