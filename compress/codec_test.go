package compress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-dift/evio/header"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp":    NewNoOpCompressor(),
		"LZ4Fast": NewLZ4Compressor(header.CompressionLZ4Fast),
		"LZ4Best": NewLZ4Compressor(header.CompressionLZ4Best),
		"Gzip":    NewGzipCompressor(),
		"S2":      NewS2Compressor(),
		"Zstd":    NewZstdCompressor(),
	}
}

func TestCreateCodec(t *testing.T) {
	types := []header.CompressionType{
		header.CompressionNone,
		header.CompressionLZ4Fast,
		header.CompressionLZ4Best,
		header.CompressionGzip,
		header.CompressionS2,
		header.CompressionZstd,
	}

	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := CreateCodec(typ, "record")
			require.NoError(t, err)
			require.Equal(t, typ, codec.Type())
		})
	}
}

func TestCreateCodecUnknown(t *testing.T) {
	_, err := CreateCodec(header.CompressionType(0xF), "record")
	require.Error(t, err)
}

func TestGetCodec(t *testing.T) {
	codec, err := GetCodec(header.CompressionZstd)
	require.NoError(t, err)
	require.Equal(t, header.CompressionZstd, codec.Type())
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil, 0)
			require.NoError(t, err)
			require.Nil(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "small_text", data: []byte("Hello, World!")},
		{name: "repeated_pattern", data: bytes.Repeat([]byte("ABCD"), 100)},
		{name: "binary_data", data: []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}},
		{name: "single_byte", data: []byte{0x42}},
		{name: "highly_compressible", data: make([]byte, 64*1024)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)

					decompressed, err := codec.Decompress(compressed, len(tc.data))
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_InterfaceCompliance(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			var _ Codec = codec
			require.NotNil(t, codec)
		})
	}
}

func TestNoOpCompressor_NoCopy(t *testing.T) {
	compressor := NewNoOpCompressor()
	data := []byte("hello world")

	compressed, err := compressor.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])
}

func TestCompressionStats_Calculations(t *testing.T) {
	tests := []struct {
		name            string
		stats           CompressionStats
		expectedRatio   float64
		expectedSavings float64
	}{
		{
			name:            "good compression",
			stats:           CompressionStats{Algorithm: header.CompressionZstd, OriginalSize: 1000, CompressedSize: 300},
			expectedRatio:   1000.0 / 300.0,
			expectedSavings: 0.7,
		},
		{
			name:            "no compression benefit",
			stats:           CompressionStats{Algorithm: header.CompressionNone, OriginalSize: 500, CompressedSize: 500},
			expectedRatio:   1.0,
			expectedSavings: 0.0,
		},
		{
			name:            "zero original size",
			stats:           CompressionStats{Algorithm: header.CompressionLZ4Fast, OriginalSize: 0, CompressedSize: 100},
			expectedRatio:   0.0,
			expectedSavings: 0.0,
		},
		{
			name:            "zero compressed size",
			stats:           CompressionStats{Algorithm: header.CompressionGzip, OriginalSize: 100, CompressedSize: 0},
			expectedRatio:   0.0,
			expectedSavings: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.expectedRatio, tt.stats.CompressionRatio(), 0.001)
			require.InDelta(t, tt.expectedSavings, tt.stats.SpaceSavings(), 0.001)
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := [][]byte{
		{0xFF, 0xFF, 0xFF, 0xFF},
		[]byte("this is not compressed data"),
	}

	for codecName, codec := range getAllCodecs() {
		if codecName == "NoOp" {
			continue // NoOp never validates its input
		}

		t.Run(codecName, func(t *testing.T) {
			for i, input := range invalidInputs {
				t.Run(fmt.Sprintf("input_%d", i), func(t *testing.T) {
					_, err := codec.Decompress(input, 0)
					require.Error(t, err)
				})
			}
		})
	}
}
