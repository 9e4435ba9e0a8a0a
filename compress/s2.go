package compress

import (
	"github.com/klauspost/compress/s2"

	"github.com/jlab-dift/evio/header"
)

// S2Compressor implements the record data section's S2 codec (spec
// §6's reserved-nibble S2 extension; S2 is a fork of Snappy tuned for
// higher throughput, a useful low-CPU-overhead option for high-rate DAQ
// writers).
type S2Compressor struct{}

var _ Codec = S2Compressor{}

// NewS2Compressor creates an S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Type reports CompressionS2.
func (c S2Compressor) Type() header.CompressionType { return header.CompressionS2 }

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses the input data using S2 decompression.
// uncompressedLen is ignored; s2.Decode determines the output size
// from the block's own header.
func (c S2Compressor) Decompress(data []byte, uncompressedLen int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
