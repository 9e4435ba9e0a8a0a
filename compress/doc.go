// Package compress provides the codecs used to compress and
// decompress a record's data section (spec §3, §6).
//
// A record header carries a 4-bit compression-type code in word 10;
// this package implements one Codec per code:
//
//	None     no compression, data carried as-is
//	LZ4Fast  LZ4 block format, minimal compression effort
//	LZ4Best  LZ4 block format, same codec, different advertised intent
//	Gzip     stdlib-compatible gzip stream
//	S2       Snappy-derived, tuned for throughput over ratio
//	Zstd     Zstandard, best ratio of the set
//
// CreateCodec and GetCodec resolve a header.CompressionType to a Codec.
// A writer picks a codec once per file or per record; a reader picks
// one per record from the header it just decoded, passing along the
// record's recorded uncompressed length so decoders can size their
// output buffer without guessing.
//
// Zstd has two builds: zstd_pure.go (klauspost/compress/zstd, used
// when cgo is disabled) and zstd_cgo.go (valyala/gozstd, used when cgo
// is available and typically faster). Both implement the same
// ZstdCompressor type declared in zstd.go.
package compress
