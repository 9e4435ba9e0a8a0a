package composite

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-dift/evio/buffer"
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
)

func TestCompileSimple(t *testing.T) {
	ops, err := Compile("I,2F")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	require.Equal(t, datatype.Int32, ops[0].LeafType)
	require.Equal(t, 1, ops[0].FixedCount)
	require.Equal(t, datatype.Float32, ops[1].LeafType)
	require.Equal(t, 2, ops[1].FixedCount)
}

func TestCompileGroup(t *testing.T) {
	ops, err := Compile("N(I,2F)")
	require.NoError(t, err)
	require.Equal(t, OpGroupOpen, ops[0].Kind)
	require.Equal(t, DynamicN, ops[0].Dynamic)
	require.Equal(t, OpGroupClose, ops[len(ops)-1].Kind)
	require.Equal(t, len(ops)-1, ops[0].MatchIndex)
}

func TestCompileUnmatchedParen(t *testing.T) {
	_, err := Compile("N(I,2F")
	require.Error(t, err)
}

func TestCompileBadCode(t *testing.T) {
	_, err := Compile("Z")
	require.Error(t, err)
}

// buildNIFF2 builds a little-endian payload for format "N(I,2F)" with
// N=2, matching spec §8 scenario 6: two groups of (int32, float32, float32).
func buildNIFF2(t *testing.T) (*buffer.Buffer, []Opcode) {
	t.Helper()

	ops, err := Compile("N(I,2F)")
	require.NoError(t, err)

	buf := buffer.New(0, byteorder.Little)
	var raw []byte
	raw = binary.LittleEndian.AppendUint32(raw, 2) // N
	ints := []int32{11, 22}
	floats := [][2]float32{{1.5, 2.5}, {3.5, 4.5}}

	for i := 0; i < 2; i++ {
		raw = binary.LittleEndian.AppendUint32(raw, uint32(ints[i]))
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(floats[i][0]))
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(floats[i][1]))
	}

	buf.MustWrite(raw)
	buf.SetLimit(len(raw))

	return buf, ops
}

func TestDecodeGroupRepeat(t *testing.T) {
	buf, ops := buildNIFF2(t)

	var types []datatype.Type
	var ints []int32
	var floats []float32

	err := Decode(buf, ops, func(typ datatype.Type, raw []byte) error {
		types = append(types, typ)
		switch typ {
		case datatype.Int32:
			ints = append(ints, int32(binary.LittleEndian.Uint32(raw)))
		case datatype.Float32:
			floats = append(floats, math.Float32frombits(binary.LittleEndian.Uint32(raw)))
		}

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int32{11, 22}, ints)
	require.Equal(t, []float32{1.5, 2.5, 3.5, 4.5}, floats)
	require.Len(t, types, 6)
}

func TestSwapIsInvolution(t *testing.T) {
	buf, ops := buildNIFF2(t)
	original := append([]byte(nil), buf.Array()[:buf.Limit()]...)

	swapBuf := buf.Slice()
	require.NoError(t, Swap(swapBuf, ops, byteorder.Little))

	swapBuf2 := buffer.Wrap(swapBuf.Array()[:swapBuf.Limit()], byteorder.Big)
	require.NoError(t, Swap(swapBuf2, ops, byteorder.Big))

	require.Equal(t, original, swapBuf2.Array()[:swapBuf2.Limit()])
}
