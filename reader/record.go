package reader

import (
	"fmt"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/header"
	"github.com/jlab-dift/evio/recordio"
)

// recordSource is one opened file's bytes plus its decoded file
// header, the unit recordReader flattens across when a caller opens a
// split sequence (spec §8 scenario #3).
type recordSource struct {
	data       []byte
	fileHeader header.FileHeader
}

// recordReader walks one or more version-6 record streams, building a
// record index from each file's trailer (spec §4.8's trailer-with-
// index convention) when present, falling back to a sequential scan
// otherwise, and flattening every source's events into one global,
// 1-based event numbering (spec §4.9).
type recordReader struct {
	order byteorder.Order

	records   []*recordio.RecordInput
	eventBase []int // cumulative event count before each record, parallel to records
	total     int

	dictionary []byte

	cursor int
}

func openRecord(sources []recordSource) (*recordReader, error) {
	rr := &recordReader{order: sources[0].fileHeader.Order}

	for si, src := range sources {
		offsets, err := recordOffsets(src.data, &src.fileHeader)
		if err != nil {
			return nil, err
		}

		for _, off := range offsets {
			ri, err := recordio.Decode(src.data, off)
			if err != nil {
				return nil, err
			}

			if si == 0 && rr.dictionary == nil && src.fileHeader.UserHeaderBytes > 0 {
				rr.dictionary = fileUserHeader(src.data, &src.fileHeader)
			}

			if si == 0 && rr.dictionary == nil && off == offsets[0] && ri.Header.UserHeaderBytes > 0 {
				rr.dictionary = recordUserHeader(src.data, off, &ri.Header)
			}

			rr.eventBase = append(rr.eventBase, rr.total)
			rr.records = append(rr.records, ri)
			rr.total += ri.EventCount()
		}
	}

	return rr, nil
}

// recordOffsets returns the byte offset of every data record in data,
// preferring the trailer's packed (recordLengthBytes, entryCount)
// index (built once, O(1) per record) and falling back to a
// sequential header-by-header scan when the file carries no trailer
// index.
func recordOffsets(data []byte, fh *header.FileHeader) ([]int, error) {
	if fh.TrailerPosition == 0 || !fh.BitInfo.HasTrailerWithIndex() {
		return scanRecordOffsets(data)
	}

	var rh header.RecordHeader
	if err := rh.Decode(data, int(fh.TrailerPosition)); err != nil {
		return nil, err
	}

	indexStart := int(fh.TrailerPosition) + header.RecordHeaderBytes + int(rh.UserHeaderBytes) + rh.UserHeaderPad()
	indexEnd := indexStart + int(rh.IndexArrayBytes)
	if indexEnd > len(data) {
		return nil, evioerr.ErrTruncatedHeader
	}

	eng := rh.Order.Engine()
	cursor := header.FileHeaderBytes

	var offsets []int
	for p := indexStart; p+8 <= indexEnd; p += 8 {
		recLenBytes := eng.Uint32(data[p : p+4])
		offsets = append(offsets, cursor)
		cursor += int(recLenBytes)
	}

	return offsets, nil
}

// scanRecordOffsets walks records sequentially from the end of the
// file header, stopping at the trailer record.
func scanRecordOffsets(data []byte) ([]int, error) {
	var offsets []int
	offset := header.FileHeaderBytes

	for offset < len(data) {
		var rh header.RecordHeader
		if err := rh.Decode(data, offset); err != nil {
			return nil, err
		}

		if rh.BitInfo.HeaderType() == header.HeaderTypeTrailer {
			break
		}

		offsets = append(offsets, offset)
		offset += int(rh.RecordWords) * 4
	}

	return offsets, nil
}

func fileUserHeader(data []byte, fh *header.FileHeader) []byte {
	start := header.FileHeaderBytes
	end := start + int(fh.UserHeaderBytes)
	if end > len(data) {
		return nil
	}

	return data[start:end]
}

func recordUserHeader(data []byte, recordOffset int, rh *header.RecordHeader) []byte {
	start := recordOffset + header.RecordHeaderBytes
	end := start + int(rh.UserHeaderBytes)
	if end > len(data) {
		return nil
	}

	return data[start:end]
}

func (rr *recordReader) EventCount() int { return rr.total }

func (rr *recordReader) locate(globalIdx int) (*recordio.RecordInput, int, error) {
	if globalIdx < 0 || globalIdx >= rr.total {
		return nil, 0, evioerr.ErrIndexOutOfRange
	}

	for i := len(rr.eventBase) - 1; i >= 0; i-- {
		if rr.eventBase[i] <= globalIdx {
			return rr.records[i], globalIdx - rr.eventBase[i], nil
		}
	}

	return nil, 0, fmt.Errorf("%w: event index not found in any record", evioerr.ErrBadFormat)
}

// GetEvent returns the n'th event, 1-based per spec §4.9's getEvent(i).
func (rr *recordReader) GetEvent(n int) (*Event, error) {
	ri, local, err := rr.locate(n - 1)
	if err != nil {
		return nil, err
	}

	raw, err := ri.GetEvent(local)
	if err != nil {
		return nil, err
	}

	return newEvent(raw, rr.order)
}

func (rr *recordReader) NextEvent() (*Event, error) {
	if rr.cursor >= rr.total {
		return nil, evioerr.ErrEndOfStream
	}

	rr.cursor++

	return rr.GetEvent(rr.cursor)
}

func (rr *recordReader) GotoEventNumber(n int) error {
	if n < 1 || n > rr.total+1 {
		return evioerr.ErrIndexOutOfRange
	}

	rr.cursor = n - 1

	return nil
}
