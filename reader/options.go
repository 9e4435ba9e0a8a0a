package reader

// Options configures a Reader. Construct via defaultOptions and the
// With* functional options below, mirroring writer.Options's idiom.
type Options struct {
	// CheckBlockSequence enables the legacy (version<=4) block-number
	// monotonicity check of spec §4.9: Open fails with
	// evioerr.ErrBlockSequence if any block's number isn't exactly one
	// greater than the previous block's.
	CheckBlockSequence bool

	// UseMmap memory-maps the file instead of reading it fully into
	// memory (spec §4.9's "optionally memory-mapped" sequential
	// access), via github.com/edsrzf/mmap-go.
	UseMmap bool
}

// Option mutates an Options in place.
type Option func(*Options)

// WithBlockSequenceCheck enables or disables the legacy block-number
// sequence check.
func WithBlockSequenceCheck(enabled bool) Option {
	return func(o *Options) { o.CheckBlockSequence = enabled }
}

// WithMmap enables or disables memory-mapped file access.
func WithMmap(enabled bool) Option {
	return func(o *Options) { o.UseMmap = enabled }
}

func defaultOptions() Options {
	return Options{}
}
