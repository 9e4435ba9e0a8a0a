package recordio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/header"
)

func TestRecordOutputInputRoundTripNoCompression(t *testing.T) {
	out, err := NewRecordOutput(byteorder.Little, 1, header.CompressionNone)
	require.NoError(t, err)

	require.NoError(t, out.AddEvent([]byte{0x01, 0x02, 0x03, 0x04}))
	require.NoError(t, out.AddEvent([]byte{0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C}))

	wire, err := out.Build()
	require.NoError(t, err)
	require.NotEmpty(t, wire)

	in, err := Decode(wire, 0)
	require.NoError(t, err)
	require.Equal(t, 2, in.EventCount())

	ev0, err := in.GetEvent(0)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, ev0)

	ev1, err := in.GetEvent(1)
	require.NoError(t, err)
	require.Equal(t, []byte{0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C}, ev1)

	require.Equal(t, len(wire), in.RecordBytes())
}

func TestRecordOutputInputRoundTripCompressed(t *testing.T) {
	for _, typ := range []header.CompressionType{
		header.CompressionLZ4Fast,
		header.CompressionGzip,
		header.CompressionS2,
		header.CompressionZstd,
	} {
		t.Run(typ.String(), func(t *testing.T) {
			out, err := NewRecordOutput(byteorder.Big, 7, typ)
			require.NoError(t, err)

			payload := make([]byte, 2048)
			for i := range payload {
				payload[i] = byte(i % 17)
			}
			require.NoError(t, out.AddEvent(payload))

			wire, err := out.Build()
			require.NoError(t, err)

			in, err := Decode(wire, 0)
			require.NoError(t, err)
			require.Equal(t, 1, in.EventCount())

			ev, err := in.GetEvent(0)
			require.NoError(t, err)
			require.Equal(t, payload, ev)
			require.Equal(t, typ, in.Header.CompressionType)
		})
	}
}

func TestRecordOutputRejectsOverLimit(t *testing.T) {
	out, err := NewRecordOutput(byteorder.Little, 1, header.CompressionNone)
	require.NoError(t, err)
	out.SetLimits(1, DefaultMaxUncompressedBytes)

	require.NoError(t, out.AddEvent([]byte{0x01}))
	require.Error(t, out.AddEvent([]byte{0x02}))
}

func TestRecordOutputReset(t *testing.T) {
	out, err := NewRecordOutput(byteorder.Little, 1, header.CompressionNone)
	require.NoError(t, err)

	require.NoError(t, out.AddEvent([]byte{0x01, 0x02, 0x03, 0x04}))
	out.Reset(2)
	require.Equal(t, 0, out.EventCount())

	require.NoError(t, out.AddEvent([]byte{0x0A, 0x0B, 0x0C, 0x0D}))
	wire, err := out.Build()
	require.NoError(t, err)

	in, err := Decode(wire, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(2), in.Header.RecordNumber)
}
