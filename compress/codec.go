// Package compress provides the pluggable payload compression codecs a
// record's data section may use, keyed by the 4-bit compression-type
// code in the record header's word 10 (spec §3, §6): None, LZ4 (the
// fast and best-ratio codes share one block compressor, so both produce
// the same output), Gzip, and two reserved-nibble extensions this module
// adds, S2 and Zstd (see SPEC_FULL.md DOMAIN STACK).
//
// Grounded on github.com/arloliu/mebo's compress package: the
// Compressor/Decompressor/Codec interface split and CreateCodec factory
// are kept close to verbatim, re-scoped from mebo's
// format.CompressionType to this module's header.CompressionType.
package compress

import (
	"fmt"

	"github.com/jlab-dift/evio/header"
)

// Compressor compresses one record's data section.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses one record's data section. uncompressedLen,
// taken from the record header's uncompressed-data-length field, sizes
// the output buffer so the decoder doesn't have to guess or grow it.
type Decompressor interface {
	Decompress(data []byte, uncompressedLen int) ([]byte, error)
}

// Codec combines both directions for one compression-type code.
type Codec interface {
	Compressor
	Decompressor
	Type() header.CompressionType
}

// CreateCodec returns the Codec for compressionType, or an error naming
// target (the caller's context, for error messages) if the type is
// unknown or unavailable in this build.
func CreateCodec(compressionType header.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case header.CompressionNone:
		return NewNoOpCompressor(), nil
	case header.CompressionLZ4Fast, header.CompressionLZ4Best:
		return NewLZ4Compressor(compressionType), nil
	case header.CompressionGzip:
		return NewGzipCompressor(), nil
	case header.CompressionS2:
		return NewS2Compressor(), nil
	case header.CompressionZstd:
		return NewZstdCompressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression type: %s", target, compressionType)
	}
}

var builtinCodecs = map[header.CompressionType]func() Codec{
	header.CompressionNone:    func() Codec { return NewNoOpCompressor() },
	header.CompressionLZ4Fast: func() Codec { return NewLZ4Compressor(header.CompressionLZ4Fast) },
	header.CompressionLZ4Best: func() Codec { return NewLZ4Compressor(header.CompressionLZ4Best) },
	header.CompressionGzip:    func() Codec { return NewGzipCompressor() },
	header.CompressionS2:      func() Codec { return NewS2Compressor() },
	header.CompressionZstd:    func() Codec { return NewZstdCompressor() },
}

// GetCodec returns a fresh Codec for compressionType from its own table
// of built-in factories; its error message always names the "record"
// context.
func GetCodec(compressionType header.CompressionType) (Codec, error) {
	if factory, ok := builtinCodecs[compressionType]; ok {
		return factory(), nil
	}

	return nil, fmt.Errorf("invalid record compression type: %s", compressionType)
}

// CompressionStats reports the outcome of compressing or decompressing
// one record's data section, for callers that want to report
// per-record compression effectiveness.
type CompressionStats struct {
	Algorithm           header.CompressionType
	OriginalSize        int64
	CompressedSize      int64
	CompressionTimeNs   int64
	DecompressionTimeNs int64
}

// CompressionRatio returns OriginalSize/CompressedSize, or 0 if
// CompressedSize is 0.
func (s CompressionStats) CompressionRatio() float64 {
	if s.CompressedSize == 0 {
		return 0
	}

	return float64(s.OriginalSize) / float64(s.CompressedSize)
}

// SpaceSavings returns the fraction of bytes saved, in [0,1].
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0
	}

	return 1 - float64(s.CompressedSize)/float64(s.OriginalSize)
}
