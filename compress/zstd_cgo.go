//go:build cgo

package compress

import (
	"github.com/valyala/gozstd"
)

// Compress compresses the input data using Zstandard compression via
// the cgo-bound libzstd.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses Zstd-compressed data via the cgo-bound
// libzstd. uncompressedLen, when > 0, pre-sizes the destination buffer.
func (c ZstdCompressor) Decompress(data []byte, uncompressedLen int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var dst []byte
	if uncompressedLen > 0 {
		dst = make([]byte, 0, uncompressedLen)
	}

	return gozstd.Decompress(dst, data)
}
