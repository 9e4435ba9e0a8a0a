package reader

import (
	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/header"
)

// eventSpan locates one top-level bank's bytes within a legacyReader's
// backing data.
type eventSpan struct {
	offset int
	length int
}

// legacyReader walks a version 1-4 block-structured stream (spec
// §4.9): the first block's header fixes the version/byte order for
// the whole file, and every subsequent block is expected to carry a
// strictly incrementing block number when sequence checking is on.
// Grounded on the block-header/bank-header decode pair in
// header.BlockHeaderV4/BlockHeaderLegacy and header.DecodeBankHeader,
// the same primitives compact.Scanner uses for the record-based path.
type legacyReader struct {
	data  []byte
	order byteorder.Order

	events     []eventSpan
	dictionary []byte

	cursor int
}

func openLegacy(data []byte, order byteorder.Order, version uint8, opts Options) (*legacyReader, error) {
	lr := &legacyReader{data: data, order: order}

	if err := lr.index(version, opts.CheckBlockSequence); err != nil {
		return nil, err
	}

	return lr, nil
}

func (lr *legacyReader) index(version uint8, checkSequence bool) error {
	offset := 0
	firstBlock := true
	haveDictionary := false
	var prevBlockNumber uint32

	for offset < len(lr.data) {
		var (
			blockWords, blockNumber, eventCount uint32
			hasDictionary, isLast               bool
		)

		if version == 4 {
			var bh header.BlockHeaderV4
			if err := bh.Decode(lr.data, offset); err != nil {
				return err
			}

			blockWords, blockNumber, eventCount = bh.BlockWords, bh.BlockNumber, bh.EventCount
			hasDictionary = bh.BitInfo.HasDictionary()
			isLast = bh.BitInfo.IsLastBlock()
		} else {
			var bh header.BlockHeaderLegacy
			if err := bh.Decode(lr.data, offset, lr.order); err != nil {
				return err
			}

			blockWords, blockNumber, eventCount = bh.BlockWords, bh.BlockNumber, bh.EventCount
		}

		if checkSequence && !firstBlock && blockNumber != prevBlockNumber+1 {
			return evioerr.ErrBlockSequence
		}
		prevBlockNumber = blockNumber

		if blockWords == 0 {
			return evioerr.ErrTruncatedHeader
		}

		blockEnd := offset + int(blockWords)*4
		if blockEnd > len(lr.data) {
			return evioerr.ErrTruncatedHeader
		}

		cursor := offset + header.BlockHeaderBytes
		for i := uint32(0); i < eventCount; i++ {
			bh, err := header.DecodeBankHeader(lr.data, cursor, lr.order)
			if err != nil {
				return err
			}

			evLen := (int(bh.Length) + 1) * 4
			if cursor+evLen > blockEnd {
				return evioerr.ErrTruncatedHeader
			}

			// The dictionary, when present, is always the first event of
			// the first block (spec §4.9), not a normal numbered event.
			if firstBlock && i == 0 && hasDictionary && !haveDictionary {
				lr.dictionary = lr.data[cursor : cursor+evLen]
				haveDictionary = true
			} else {
				lr.events = append(lr.events, eventSpan{offset: cursor, length: evLen})
			}

			cursor += evLen
		}

		firstBlock = false
		offset = blockEnd

		if isLast {
			break
		}
	}

	return nil
}

func (lr *legacyReader) EventCount() int { return len(lr.events) }

// GetEvent returns the n'th event, 1-based per spec §4.9's getEvent(i).
func (lr *legacyReader) GetEvent(n int) (*Event, error) {
	if n < 1 || n > len(lr.events) {
		return nil, evioerr.ErrIndexOutOfRange
	}

	sp := lr.events[n-1]

	return newEvent(lr.data[sp.offset:sp.offset+sp.length], lr.order)
}

// NextEvent advances the internal cursor and returns the event it now
// points to, or ErrEndOfStream once the last event has been returned.
func (lr *legacyReader) NextEvent() (*Event, error) {
	if lr.cursor >= len(lr.events) {
		return nil, evioerr.ErrEndOfStream
	}

	lr.cursor++

	return lr.GetEvent(lr.cursor)
}

// GotoEventNumber repositions the cursor so the next NextEvent call
// returns event n.
func (lr *legacyReader) GotoEventNumber(n int) error {
	if n < 1 || n > len(lr.events)+1 {
		return evioerr.ErrIndexOutOfRange
	}

	lr.cursor = n - 1

	return nil
}
