// Package buffer provides the growable byte container used throughout
// this module: capacity, position, limit and mark semantics over a
// single backing array, with absolute and relative typed accessors.
//
// The growth strategy (MustWrite/Grow) is carried over from
// github.com/arloliu/mebo's internal/pool.ByteBuffer; the
// position/limit/mark accessor surface is new, modeled after the
// access pattern spec §4.1 requires (get/put, mark/reset, slice,
// duplicate) which mebo's pooled buffer doesn't need since it never
// exposes relative reads.
package buffer

import (
	"math"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/evioerr"
)

const (
	defaultGrowChunk = 1024 * 16
	largeGrowDivisor = 4
)

// Buffer is a growable byte container with an absolute backing array
// plus a cursor (position), a soft end (limit) and an optional saved
// cursor (mark), in the spirit of java.nio.ByteBuffer.
type Buffer struct {
	buf      []byte
	position int
	limit    int
	mark     int // -1 when unset
	order    byteorder.Order
}

// New allocates a Buffer with the given initial capacity and byte order.
// Its limit starts at capacity and its position at 0.
func New(capacity int, order byteorder.Order) *Buffer {
	return &Buffer{
		buf:      make([]byte, capacity),
		position: 0,
		limit:    capacity,
		mark:     -1,
		order:    order,
	}
}

// Wrap creates a Buffer viewing an existing byte slice directly (no
// copy). Position starts at 0, limit at len(data).
func Wrap(data []byte, order byteorder.Order) *Buffer {
	return &Buffer{
		buf:      data,
		position: 0,
		limit:    len(data),
		mark:     -1,
		order:    order,
	}
}

// Order returns the buffer's current byte order.
func (b *Buffer) Order() byteorder.Order { return b.order }

// SetOrder changes the byte order used by subsequent typed accessors.
func (b *Buffer) SetOrder(order byteorder.Order) { b.order = order }

// Capacity returns the size of the backing array.
func (b *Buffer) Capacity() int { return len(b.buf) }

// Position returns the current cursor.
func (b *Buffer) Position() int { return b.position }

// Limit returns the current soft end.
func (b *Buffer) Limit() int { return b.limit }

// Remaining returns limit - position.
func (b *Buffer) Remaining() int { return b.limit - b.position }

// HasRemaining reports whether any bytes remain before the limit.
func (b *Buffer) HasRemaining() bool { return b.position < b.limit }

// SetPosition moves the cursor. Clears mark if it would now be invalid.
func (b *Buffer) SetPosition(pos int) error {
	if pos < 0 || pos > b.limit {
		return evioerr.ErrIndexOutOfRange
	}

	b.position = pos
	if b.mark > pos {
		b.mark = -1
	}

	return nil
}

// SetLimit moves the soft end. Clamps position and mark if needed.
func (b *Buffer) SetLimit(limit int) error {
	if limit < 0 || limit > len(b.buf) {
		return evioerr.ErrIndexOutOfRange
	}

	b.limit = limit
	if b.position > limit {
		b.position = limit
	}

	if b.mark > limit {
		b.mark = -1
	}

	return nil
}

// Mark saves the current position.
func (b *Buffer) Mark() { b.mark = b.position }

// Reset restores position to the last mark.
func (b *Buffer) Reset() error {
	if b.mark < 0 {
		return evioerr.ErrIndexOutOfRange
	}

	b.position = b.mark

	return nil
}

// Rewind sets position to 0 and clears mark.
func (b *Buffer) Rewind() {
	b.position = 0
	b.mark = -1
}

// Flip sets limit to the current position and position to 0; the
// idiomatic "switch from filling to draining" operation.
func (b *Buffer) Flip() {
	b.limit = b.position
	b.position = 0
	b.mark = -1
}

// Clear resets position to 0 and limit to capacity.
func (b *Buffer) Clear() {
	b.position = 0
	b.limit = len(b.buf)
	b.mark = -1
}

// Array returns the backing array directly (zero-copy). Callers must
// not retain it past the buffer's next mutation.
func (b *Buffer) Array() []byte { return b.buf }

// ArrayOffset returns the offset of position 0 within Array(); always
// 0 for buffers created by New/Wrap, present for API parity with
// mebo's slice-view pattern.
func (b *Buffer) ArrayOffset() int { return 0 }

// Bytes returns a copy of [0, limit).
func (b *Buffer) Bytes() []byte {
	out := make([]byte, b.limit)
	copy(out, b.buf[:b.limit])

	return out
}

// Slice returns a non-owning view over [position, limit) of the
// backing storage; it shares the array but has an independent
// position/limit/mark, matching spec §4.1.
func (b *Buffer) Slice() *Buffer {
	return &Buffer{
		buf:      b.buf[b.position:b.limit],
		position: 0,
		limit:    b.limit - b.position,
		mark:     -1,
		order:    b.order,
	}
}

// Duplicate returns an independent view (own position/limit/mark)
// sharing the same backing array over the whole capacity.
func (b *Buffer) Duplicate() *Buffer {
	return &Buffer{
		buf:      b.buf,
		position: b.position,
		limit:    b.limit,
		mark:     b.mark,
		order:    b.order,
	}
}

// Grow ensures the backing array can hold at least requiredBytes more
// bytes past the current length without reallocating on the next
// write, preserving content and position. Growth strategy mirrors
// mebo's ByteBuffer.Grow: small buffers grow by a fixed chunk, larger
// ones by 25% of current capacity.
func (b *Buffer) Grow(requiredBytes int) {
	available := len(b.buf) - b.limit
	if available >= requiredBytes {
		return
	}

	growBy := defaultGrowChunk
	if len(b.buf) > 4*defaultGrowChunk {
		growBy = len(b.buf) / largeGrowDivisor
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(b.buf)+growBy)
	copy(newBuf, b.buf)
	b.buf = newBuf
	b.limit = len(b.buf)
}

// EnsureCapacity grows the buffer so that index n is addressable,
// extending limit to cover it.
func (b *Buffer) EnsureCapacity(n int) {
	if n <= len(b.buf) {
		if n > b.limit {
			b.limit = n
		}

		return
	}

	b.Grow(n - len(b.buf))
	if n > b.limit {
		b.limit = n
	}
}

func (b *Buffer) checkAbsolute(offset, size int) error {
	if offset < 0 || offset+size > len(b.buf) {
		return evioerr.ErrBufferOverflow
	}

	return nil
}

func (b *Buffer) checkRelative(size int) error {
	if b.position+size > b.limit {
		return evioerr.ErrBufferUnderflow
	}

	return nil
}

// ---- absolute accessors ----

func (b *Buffer) GetUint8At(offset int) (uint8, error) {
	if err := b.checkAbsolute(offset, 1); err != nil {
		return 0, err
	}

	return b.buf[offset], nil
}

func (b *Buffer) PutUint8At(offset int, v uint8) error {
	b.EnsureCapacity(offset + 1)
	b.buf[offset] = v

	return nil
}

func (b *Buffer) GetUint16At(offset int) (uint16, error) {
	if err := b.checkAbsolute(offset, 2); err != nil {
		return 0, err
	}

	return b.order.Engine().Uint16(b.buf[offset:]), nil
}

func (b *Buffer) PutUint16At(offset int, v uint16) error {
	b.EnsureCapacity(offset + 2)
	b.order.Engine().PutUint16(b.buf[offset:], v)

	return nil
}

func (b *Buffer) GetUint32At(offset int) (uint32, error) {
	if err := b.checkAbsolute(offset, 4); err != nil {
		return 0, err
	}

	return b.order.Engine().Uint32(b.buf[offset:]), nil
}

func (b *Buffer) PutUint32At(offset int, v uint32) error {
	b.EnsureCapacity(offset + 4)
	b.order.Engine().PutUint32(b.buf[offset:], v)

	return nil
}

func (b *Buffer) GetUint64At(offset int) (uint64, error) {
	if err := b.checkAbsolute(offset, 8); err != nil {
		return 0, err
	}

	return b.order.Engine().Uint64(b.buf[offset:]), nil
}

func (b *Buffer) PutUint64At(offset int, v uint64) error {
	b.EnsureCapacity(offset + 8)
	b.order.Engine().PutUint64(b.buf[offset:], v)

	return nil
}

func (b *Buffer) GetInt16At(offset int) (int16, error) {
	v, err := b.GetUint16At(offset)

	return int16(v), err
}

func (b *Buffer) PutInt16At(offset int, v int16) error {
	return b.PutUint16At(offset, uint16(v))
}

func (b *Buffer) GetInt32At(offset int) (int32, error) {
	v, err := b.GetUint32At(offset)

	return int32(v), err
}

func (b *Buffer) PutInt32At(offset int, v int32) error {
	return b.PutUint32At(offset, uint32(v))
}

func (b *Buffer) GetInt64At(offset int) (int64, error) {
	v, err := b.GetUint64At(offset)

	return int64(v), err
}

func (b *Buffer) PutInt64At(offset int, v int64) error {
	return b.PutUint64At(offset, uint64(v))
}

func (b *Buffer) GetFloat32At(offset int) (float32, error) {
	v, err := b.GetUint32At(offset)

	return math.Float32frombits(v), err
}

func (b *Buffer) PutFloat32At(offset int, v float32) error {
	return b.PutUint32At(offset, math.Float32bits(v))
}

func (b *Buffer) GetFloat64At(offset int) (float64, error) {
	v, err := b.GetUint64At(offset)

	return math.Float64frombits(v), err
}

func (b *Buffer) PutFloat64At(offset int, v float64) error {
	return b.PutUint64At(offset, math.Float64bits(v))
}

// ---- relative accessors (advance position) ----

func (b *Buffer) GetUint8() (uint8, error) {
	if err := b.checkRelative(1); err != nil {
		return 0, err
	}

	v := b.buf[b.position]
	b.position++

	return v, nil
}

func (b *Buffer) PutUint8(v uint8) error {
	b.EnsureCapacity(b.position + 1)
	b.buf[b.position] = v
	b.position++

	return nil
}

func (b *Buffer) GetUint16() (uint16, error) {
	if err := b.checkRelative(2); err != nil {
		return 0, err
	}

	v := b.order.Engine().Uint16(b.buf[b.position:])
	b.position += 2

	return v, nil
}

func (b *Buffer) PutUint16(v uint16) error {
	b.EnsureCapacity(b.position + 2)
	b.order.Engine().PutUint16(b.buf[b.position:], v)
	b.position += 2

	return nil
}

func (b *Buffer) GetUint32() (uint32, error) {
	if err := b.checkRelative(4); err != nil {
		return 0, err
	}

	v := b.order.Engine().Uint32(b.buf[b.position:])
	b.position += 4

	return v, nil
}

func (b *Buffer) PutUint32(v uint32) error {
	b.EnsureCapacity(b.position + 4)
	b.order.Engine().PutUint32(b.buf[b.position:], v)
	b.position += 4

	return nil
}

func (b *Buffer) GetUint64() (uint64, error) {
	if err := b.checkRelative(8); err != nil {
		return 0, err
	}

	v := b.order.Engine().Uint64(b.buf[b.position:])
	b.position += 8

	return v, nil
}

func (b *Buffer) PutUint64(v uint64) error {
	b.EnsureCapacity(b.position + 8)
	b.order.Engine().PutUint64(b.buf[b.position:], v)
	b.position += 8

	return nil
}

// GetBytes returns a copy of the next n bytes and advances position.
func (b *Buffer) GetBytes(n int) ([]byte, error) {
	if err := b.checkRelative(n); err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, b.buf[b.position:b.position+n])
	b.position += n

	return out, nil
}

// PutBytes appends raw bytes at the current position, growing as
// needed, and advances position.
func (b *Buffer) PutBytes(data []byte) error {
	b.EnsureCapacity(b.position + len(data))
	copy(b.buf[b.position:], data)
	b.position += len(data)

	return nil
}

// MustWrite appends to the logical end (limit), growing as needed.
// Mirrors mebo's ByteBuffer.MustWrite: a pure append, independent of
// position/mark.
func (b *Buffer) MustWrite(data []byte) {
	start := b.limit
	b.EnsureCapacity(start + len(data))
	copy(b.buf[start:], data)
	b.limit = start + len(data)
}

// ---- endian swap over the whole buffer ----

// SwapWords16InPlace byte-swaps count 16-bit words starting at byteOffset.
func (b *Buffer) SwapWords16InPlace(byteOffset, count int) error {
	if err := b.checkAbsolute(byteOffset, count*2); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		o := byteOffset + i*2
		v := byteorder.Native().Engine().Uint16(b.buf[o:])
		byteorder.Native().Engine().PutUint16(b.buf[o:], byteorder.Swap16(v))
	}

	return nil
}

// SwapWords32InPlace byte-swaps count 32-bit words starting at byteOffset.
func (b *Buffer) SwapWords32InPlace(byteOffset, count int) error {
	if err := b.checkAbsolute(byteOffset, count*4); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		o := byteOffset + i*4
		v := byteorder.Native().Engine().Uint32(b.buf[o:])
		byteorder.Native().Engine().PutUint32(b.buf[o:], byteorder.Swap32(v))
	}

	return nil
}

// SwapWords64InPlace byte-swaps count 64-bit words starting at byteOffset.
func (b *Buffer) SwapWords64InPlace(byteOffset, count int) error {
	if err := b.checkAbsolute(byteOffset, count*8); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		o := byteOffset + i*8
		v := byteorder.Native().Engine().Uint64(b.buf[o:])
		byteorder.Native().Engine().PutUint64(b.buf[o:], byteorder.Swap64(v))
	}

	return nil
}

// SwapOrCopy32 writes the (optionally swapped) 32-bit words of src into
// dst. Unlike an in-place swap, this always writes to dst even when
// swap==false, satisfying spec §4.1's "copies when source != destination
// even when no reordering is needed" requirement.
func SwapOrCopy32(dst, src []uint32, swap bool) {
	if !swap {
		copy(dst, src)

		return
	}

	for i, v := range src {
		dst[i] = byteorder.Swap32(v)
	}
}
