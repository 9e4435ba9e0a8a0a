package writer

// trailerEntry is one (recordLengthBytes, entryCount) tuple of the
// in-memory trailer index accumulated by the write stage (spec §4.8).
type trailerEntry struct {
	recordLengthBytes uint32
	entryCount        uint32
}

// compressedResult is what a compressor stage hands to the write stage:
// the finished wire bytes for one record, tagged with its publish
// sequence so the writer can reassemble strict order even though
// compressors finish out of order.
type compressedResult struct {
	seq          uint64
	recordNumber uint32
	wire         []byte
	entryCount   uint32
	err          error
}
