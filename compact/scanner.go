package compact

import (
	"fmt"
	"sync"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/datatype"
	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/header"
)

// Scanner holds a decompressed record stream plus the descriptors
// produced by scanning it. It is not safe for concurrent use unless
// SetSync(true) was called (spec §4.6's "synchronized ... when the reader
// was constructed in sync mode").
type Scanner struct {
	data        []byte
	descriptors []Descriptor
	order       byteorder.Order // detected from the first record scanned
	sync        bool
	mu          sync.Mutex
}

// New creates a Scanner over data, which must already be decompressed
// (record bodies in plain, uncompressed form).
func New(data []byte) *Scanner {
	return &Scanner{data: data}
}

// SetSync enables internal-mutex synchronization of mutating calls.
func (s *Scanner) SetSync(enabled bool) { s.sync = enabled }

func (s *Scanner) lock() {
	if s.sync {
		s.mu.Lock()
	}
}

func (s *Scanner) unlock() {
	if s.sync {
		s.mu.Unlock()
	}
}

// Descriptor returns the descriptor at id, or an error if id is out of
// range or has been invalidated by RemoveStructure.
func (s *Scanner) Descriptor(id int) (*Descriptor, error) {
	if id < 0 || id >= len(s.descriptors) {
		return nil, evioerr.ErrIndexOutOfRange
	}

	d := &s.descriptors[id]
	if d.obsolete {
		return nil, evioerr.ErrClosedObject
	}

	return d, nil
}

// Count returns the number of descriptors currently known.
func (s *Scanner) Count() int { return len(s.descriptors) }

// ScanTopLevel walks every record in the buffer and creates one
// KindEvent descriptor per entry in each record's index array, without
// descending into event structure (spec §4.6 "otherwise only index
// top-level events").
func (s *Scanner) ScanTopLevel() error {
	s.lock()
	defer s.unlock()

	s.descriptors = s.descriptors[:0]

	return s.walkRecords(func(eventOffset, eventLen int, order byteorder.Order) error {
		s.descriptors = append(s.descriptors, Descriptor{
			BufferOffset: eventOffset,
			HeaderWords:  0,
			TotalBytes:   uint32(eventLen),
			Kind:         KindEvent,
			Parent:       noParent,
		})

		return nil
	})
}

// ScanDeep walks every record and, for each event, recursively
// descends its bank tree, producing Bank/Segment/TagSegment
// descriptors parented to their containing structure (spec §4.6 "walk
// event banks recursively when scanned variants are requested").
func (s *Scanner) ScanDeep() error {
	s.lock()
	defer s.unlock()

	s.descriptors = s.descriptors[:0]

	return s.walkRecords(func(eventOffset, eventLen int, order byteorder.Order) error {
		eventID := len(s.descriptors)
		s.descriptors = append(s.descriptors, Descriptor{
			BufferOffset: eventOffset,
			TotalBytes:   uint32(eventLen),
			Kind:         KindEvent,
			Parent:       noParent,
		})

		return s.scanBank(eventOffset, eventOffset+eventLen, eventID, order)
	})
}

// walkRecords iterates records in s.data, calling visit(eventOffset,
// eventByteLen, order) for each entry decoded from a record's index
// array, in that record's detected byte order.
func (s *Scanner) walkRecords(visit func(eventOffset, eventLen int, order byteorder.Order) error) error {
	offset := 0

	for offset < len(s.data) {
		var rh header.RecordHeader
		if err := rh.Decode(s.data, offset); err != nil {
			return err
		}

		if rh.EntryCount == 0 {
			// A trailer record with no events ends the scannable stream.
			break
		}

		if offset == 0 {
			s.order = rh.Order
		}

		indexOffset := offset + header.RecordHeaderBytes + int(rh.UserHeaderBytes) + rh.UserHeaderPad()
		dataOffset := indexOffset + int(rh.IndexArrayBytes)

		eng := rh.Order.Engine()
		cursor := dataOffset

		for i := 0; i < int(rh.EntryCount); i++ {
			entryOff := indexOffset + i*4
			if entryOff+4 > len(s.data) {
				return evioerr.ErrTruncatedHeader
			}

			evLen := int(eng.Uint32(s.data[entryOff : entryOff+4]))
			if cursor+evLen > len(s.data) {
				return evioerr.ErrTruncatedHeader
			}

			if err := visit(cursor, evLen, rh.Order); err != nil {
				return err
			}

			cursor += evLen
		}

		recordBytes := int(rh.RecordWords) * 4
		if recordBytes <= 0 {
			return fmt.Errorf("%w: zero-length record", evioerr.ErrBadFormat)
		}

		offset += recordBytes
	}

	return nil
}

// scanBank recursively descends a bank-rooted structure occupying
// [start, end) of s.data, appending descriptors parented to parentID.
func (s *Scanner) scanBank(start, end, parentID int, order byteorder.Order) error {
	bh, err := header.DecodeBankHeader(s.data, start, order)
	if err != nil {
		return err
	}

	totalBytes := (int(bh.Length) + 1) * 4
	id := len(s.descriptors)
	s.descriptors = append(s.descriptors, Descriptor{
		BufferOffset: start,
		HeaderWords:  uint8(header.BankHeaderWords),
		TotalBytes:   uint32(totalBytes),
		Kind:         KindBank,
		Tag:          bh.Tag,
		Num:          bh.Num,
		DataType:     bh.Type,
		Parent:       parentID,
	})

	if !bh.Type.IsContainer() {
		return nil
	}

	return s.scanChildren(start+header.BankHeaderWords*4, start+totalBytes, id, order)
}

// scanChildren walks a sequence of sibling structures (all the same
// kind, determined by the immediate parent's declared type) within
// [start, end), appending descriptors parented to parentID.
func (s *Scanner) scanChildren(start, end, parentID int, order byteorder.Order) error {
	parentType := s.descriptors[parentID].DataType

	cursor := start
	for cursor < end {
		switch parentType.CanonicalBank().CanonicalSegment() {
		case datatype.Bank, datatype.AlsoBank:
			if err := s.scanBank(cursor, end, parentID, order); err != nil {
				return err
			}

			last := &s.descriptors[len(s.descriptors)-1]
			cursor += int(last.TotalBytes)

		case datatype.Segment, datatype.AlsoSegment:
			sh, err := header.DecodeSegmentHeader(s.data, cursor, order)
			if err != nil {
				return err
			}

			total := (1 + int(sh.Length)) * 4
			s.descriptors = append(s.descriptors, Descriptor{
				BufferOffset: cursor,
				HeaderWords:  uint8(header.SegmentHeaderWords),
				TotalBytes:   uint32(total),
				Kind:         KindSegment,
				Tag:          uint16(sh.Tag),
				DataType:     sh.Type,
				Parent:       parentID,
			})
			cursor += total

		case datatype.TagSegment:
			th, err := header.DecodeTagSegmentHeader(s.data, cursor, order)
			if err != nil {
				return err
			}

			total := (1 + int(th.Length)) * 4
			s.descriptors = append(s.descriptors, Descriptor{
				BufferOffset: cursor,
				HeaderWords:  uint8(header.TagSegmentHeaderWords),
				TotalBytes:   uint32(total),
				Kind:         KindTagSegment,
				Tag:          th.Tag,
				DataType:     th.Type,
				Parent:       parentID,
			})
			cursor += total

		default:
			return fmt.Errorf("%w: unscannable container data type %v", evioerr.ErrBadFormat, parentType)
		}
	}

	return nil
}

// FindByTagNum returns the IDs of all live, scanned descriptors whose
// Tag/Num match.
func (s *Scanner) FindByTagNum(tag uint16, num uint8) []int {
	var out []int
	for i := range s.descriptors {
		d := &s.descriptors[i]
		if !d.obsolete && d.Kind != KindEvent && d.Tag == tag && d.Num == num {
			out = append(out, i)
		}
	}

	return out
}
