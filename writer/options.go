package writer

import (
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/header"
	"github.com/jlab-dift/evio/recordio"
)

// NameTemplate renders a split file's name given its split number (spec
// §6, "File naming"). Implementations decide how runNumber/streamId are
// woven in; Writer only ever calls Format.
type NameTemplate interface {
	Format(splitNumber int) (string, error)
}

// Options configures a Writer. Construct via defaultOptions and the
// With* functional options below; zero-value Options is not usable on
// its own (NameTemplate is required).
type Options struct {
	Compression header.CompressionType
	Order       byteorder.Order
	FileID      uint32
	HeaderType  header.HeaderType

	RingSize        int
	CompressorCount int

	MaxEventsPerRecord   uint32
	MaxUncompressedBytes uint32

	SplitBytes int64

	NameTemplate NameTemplate
	RunNumber    int
	StreamID     int
	RunType      string

	ForceToDisk         bool
	ForceToDiskRecordID uint32

	StartRecordNumber uint32
}

// Option mutates an Options in place.
type Option func(*Options)

func WithCompression(t header.CompressionType) Option {
	return func(o *Options) { o.Compression = t }
}

func WithByteOrder(order byteorder.Order) Option {
	return func(o *Options) { o.Order = order }
}

func WithFileID(id uint32) Option {
	return func(o *Options) { o.FileID = id }
}

func WithHeaderType(t header.HeaderType) Option {
	return func(o *Options) { o.HeaderType = t }
}

// WithRingSize sets the ring's slot count. Rounded up to the next power
// of two, per spec §4.8.
func WithRingSize(n int) Option {
	return func(o *Options) { o.RingSize = n }
}

func WithCompressorCount(n int) Option {
	return func(o *Options) { o.CompressorCount = n }
}

func WithMaxEventsPerRecord(n uint32) Option {
	return func(o *Options) { o.MaxEventsPerRecord = n }
}

func WithMaxUncompressedBytes(n uint32) Option {
	return func(o *Options) { o.MaxUncompressedBytes = n }
}

// WithSplitBytes sets the approximate per-file size threshold; 0
// disables splitting.
func WithSplitBytes(n int64) Option {
	return func(o *Options) { o.SplitBytes = n }
}

func WithNameTemplate(t NameTemplate) Option {
	return func(o *Options) { o.NameTemplate = t }
}

func WithRunNumber(n int) Option {
	return func(o *Options) { o.RunNumber = n }
}

func WithStreamID(n int) Option {
	return func(o *Options) { o.StreamID = n }
}

func WithRunType(s string) Option {
	return func(o *Options) { o.RunType = s }
}

// WithForceToDisk disables the full-disk wait policy up front.
func WithForceToDisk(force bool) Option {
	return func(o *Options) { o.ForceToDisk = force }
}

// WithForceToDiskRecordID sets the "END" event convention record number
// that self-clears ForceToDisk once written (spec §4.8). 0 disables it.
func WithForceToDiskRecordID(id uint32) Option {
	return func(o *Options) { o.ForceToDiskRecordID = id }
}

func WithStartRecordNumber(n uint32) Option {
	return func(o *Options) { o.StartRecordNumber = n }
}

func defaultOptions() Options {
	return Options{
		Compression:          header.CompressionNone,
		Order:                byteorder.Little,
		FileID:               header.MagicHIPO,
		HeaderType:           header.HeaderTypeHipoFile,
		RingSize:             16,
		CompressorCount:      2,
		MaxEventsPerRecord:   recordio.DefaultMaxEventCount,
		MaxUncompressedBytes: recordio.DefaultMaxUncompressedBytes,
		SplitBytes:           0,
		StartRecordNumber:    1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
