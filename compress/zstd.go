package compress

import "github.com/jlab-dift/evio/header"

// ZstdCompressor implements the record data section's Zstandard codec
// (spec §6's reserved-nibble Zstd extension; see SPEC_FULL.md DOMAIN
// STACK). The Compress/Decompress methods live in zstd_pure.go (pure
// Go, klauspost/compress/zstd) or zstd_cgo.go (cgo, valyala/gozstd),
// selected at build time by the cgo build tag.
type ZstdCompressor struct{}

var _ Codec = ZstdCompressor{}

// NewZstdCompressor creates a Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type reports CompressionZstd.
func (c ZstdCompressor) Type() header.CompressionType { return header.CompressionZstd }
