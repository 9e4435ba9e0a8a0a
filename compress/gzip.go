package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	libgzip "github.com/klauspost/compress/gzip"

	"github.com/jlab-dift/evio/header"
)

// GzipCompressor implements the record data section's Gzip codec
// (spec §6, CompressionGzip). No existing teacher codec covered Gzip;
// klauspost/compress/gzip is used for the encoder since it is already
// part of the pack's stack (s2, zstd) and is a drop-in, faster
// reimplementation of the stdlib compress/gzip API used for decoding.
type GzipCompressor struct{}

var _ Codec = GzipCompressor{}

// NewGzipCompressor creates a Gzip codec.
func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{}
}

// Type reports CompressionGzip.
func (c GzipCompressor) Type() header.CompressionType { return header.CompressionGzip }

// Compress gzip-compresses data at the default compression level.
func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w, err := libgzip.NewWriterLevel(&buf, libgzip.DefaultCompression)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress gzip-decompresses data. uncompressedLen, when > 0,
// pre-sizes the output buffer.
func (c GzipCompressor) Decompress(data []byte, uncompressedLen int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}
	defer r.Close()

	var dst bytes.Buffer
	if uncompressedLen > 0 {
		dst.Grow(uncompressedLen)
	}

	if _, err := io.Copy(&dst, r); err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}

	return dst.Bytes(), nil
}
