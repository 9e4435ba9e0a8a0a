package compress

import "github.com/jlab-dift/evio/header"

// NoOpCompressor implements the CompressionNone codec: the record's
// data section is carried uncompressed, and this codec just passes it
// through.
type NoOpCompressor struct{}

var _ Codec = NoOpCompressor{}

// NewNoOpCompressor creates a no-operation codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Type reports CompressionNone.
func (c NoOpCompressor) Type() header.CompressionType { return header.CompressionNone }

// Compress returns data unchanged.
//
// Note: the returned slice shares the same underlying memory as the
// input. Callers should not modify data after calling this method if
// they plan to use the returned slice.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged; uncompressedLen is ignored since
// there is nothing to size a buffer for.
func (c NoOpCompressor) Decompress(data []byte, uncompressedLen int) ([]byte, error) {
	return data, nil
}
