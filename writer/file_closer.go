package writer

import (
	"os"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/header"
)

// buildTrailerRecord encodes the degenerate record header that closes
// every file (spec §4.8, §6): a record carrying no events, with the
// "last record" bit set and, only when withIndex, the "has trailer with
// index" bit set and the accumulated (recordLengthBytes, entryCount)
// tuples packed into the record's index-array section in place of the
// usual per-event lengths it holds in a regular record.
func buildTrailerRecord(order byteorder.Order, recordNumber uint32, idx []trailerEntry, withIndex bool) ([]byte, error) {
	h := header.NewRecordHeader(order)
	h.RecordNumber = recordNumber
	h.CompressionType = header.CompressionNone
	h.BitInfo = h.BitInfo.WithHeaderType(header.HeaderTypeTrailer).WithLastRecord(true)

	var indexBytes []byte
	if withIndex {
		eng := order.Engine()
		indexBytes = make([]byte, 0, len(idx)*8)
		for _, e := range idx {
			indexBytes = eng.AppendUint32(indexBytes, e.recordLengthBytes)
			indexBytes = eng.AppendUint32(indexBytes, e.entryCount)
		}

		h.BitInfo = h.BitInfo.WithTrailerWithIndex(true)
	}

	h.EntryCount = 0
	h.IndexArrayBytes = uint32(len(indexBytes))
	h.SetUserHeaderLength(0)
	h.SetDataLength(0)
	h.SetCompressedDataLength(0)
	h.SetLength(uint32(header.RecordHeaderWords + len(indexBytes)/4))

	headerBytes, err := h.Encode()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(headerBytes)+len(indexBytes))
	out = append(out, headerBytes...)
	out = append(out, indexBytes...)

	return out, nil
}

// finalizeFile writes the trailer record to f, patches the file
// header's trailerPosition/has-trailer-with-index bit in place, and
// closes f. split calls it from an ephemeral close goroutine per spec
// §4.8's "a FileCloser dispatches a thread per close"; Close calls it
// directly for the last file.
func finalizeFile(f *os.File, fh *header.FileHeader, recordsInFile uint32, idx []trailerEntry, bytesWritten int64) error {
	withIndex := len(idx) > 0

	trailerBytes, err := buildTrailerRecord(fh.Order, recordsInFile, idx, withIndex)
	if err != nil {
		f.Close()
		return err
	}

	if _, err := f.Write(trailerBytes); err != nil {
		f.Close()
		return evioerr.WrapIO("trailer write", err)
	}

	fh.RecordCount = recordsInFile
	fh.TrailerPosition = uint64(bytesWritten)
	fh.BitInfo = fh.BitInfo.WithTrailerWithIndex(withIndex)

	if _, err := f.WriteAt(fh.Encode(), 0); err != nil {
		f.Close()
		return evioerr.WrapIO("file header patch", err)
	}

	if err := f.Close(); err != nil {
		return evioerr.WrapIO("file close", err)
	}

	return nil
}
