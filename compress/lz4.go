package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/jlab-dift/evio/header"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor implements the record data section's LZ4 codec, in
// either the fast or best-ratio variant (spec §6's two LZ4 compression
// type codes). The block-level algorithm is identical either way; the
// variant only affects what Type reports in the record header.
type LZ4Compressor struct {
	typ header.CompressionType
}

var _ Codec = LZ4Compressor{}

// NewLZ4Compressor creates an LZ4 codec reporting typ, which should be
// header.CompressionLZ4Fast or header.CompressionLZ4Best.
func NewLZ4Compressor(typ header.CompressionType) LZ4Compressor {
	return LZ4Compressor{typ: typ}
}

// Type reports the advertised compression-type code.
func (c LZ4Compressor) Type() header.CompressionType { return c.typ }

// Compress compresses the input data using LZ4 compression.
//
// Uses a pooled lz4.Compressor for better performance.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dstSize := lz4.CompressBlockBound(len(data))
	dst := make([]byte, dstSize)

	// Get compressor from pool
	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses the input data using LZ4 decompression.
//
// uncompressedLen, taken from the record header, sizes the output
// buffer exactly when known (> 0). Otherwise an adaptive strategy is
// used:
//  1. Start with a buffer 4x the compressed size (common expansion ratio)
//  2. On ErrInvalidSourceShortBuffer, double the buffer size (up to maxSize)
//  3. Return error if buffer exceeds reasonable limits (prevents memory exhaustion)
func (c LZ4Compressor) Decompress(data []byte, uncompressedLen int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if uncompressedLen > 0 {
		buf := make([]byte, uncompressedLen)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			return nil, err
		}

		return buf[:n], nil
	}

	bufSize := len(data) * 4
	const maxSize = 128 * 1024 * 1024 // 128MB safety limit

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2 // Double buffer size and retry
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	// Buffer exceeded maxSize - likely corrupted data or unreasonable compression ratio
	return nil, lz4.ErrInvalidSourceShortBuffer
}
