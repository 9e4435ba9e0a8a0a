package dictionary

import (
	"fmt"
	"io"

	"github.com/jlab-dift/evio/evioerr"
	"github.com/jlab-dift/evio/internal/hash"
)

// Dictionary holds the three parallel lookup maps spec §4.5 calls for:
// exact (tag,num), tag-only, and tag-range entries, plus a reverse
// name->Entry index.
type Dictionary struct {
	exact   map[uint64][]*Entry // key: hash("tag:num:parentKey")
	tagOnly map[uint64][]*Entry // key: hash("tag:parentKey")
	ranges  []*Entry
	byName  map[string]*Entry
}

// Build parses an XML dictionary document from r and constructs the
// lookup maps. Returns ErrConflict if two entries share an exact
// (tag,num) key under the same parent chain.
func Build(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{
		exact:   make(map[uint64][]*Entry),
		tagOnly: make(map[uint64][]*Entry),
		byName:  make(map[string]*Entry),
	}

	err := parseDocument(r, func(e Entry) error {
		return d.insert(e)
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

func exactKey(tag, num uint16, parentKey string) uint64 {
	return hash.ID(fmt.Sprintf("%d:%d:%s", tag, num, parentKey))
}

func tagOnlyKey(tag uint16, parentKey string) uint64 {
	return hash.ID(fmt.Sprintf("%d:%s", tag, parentKey))
}

func (d *Dictionary) insert(e Entry) error {
	entry := e
	d.byName[entry.Name] = &entry

	if entry.TagIsRange {
		d.ranges = append(d.ranges, &entry)

		return nil
	}

	if entry.NumValid && !entry.NumIsRange {
		key := exactKey(entry.Tag, entry.Num, entry.ParentKey)
		for _, existing := range d.exact[key] {
			if existing.ParentKey == entry.ParentKey {
				return fmt.Errorf("%w: duplicate dictionary entry %q for tag=%d num=%d", evioerr.ErrConflict, entry.Name, entry.Tag, entry.Num)
			}
		}

		d.exact[key] = append(d.exact[key], &entry)

		return nil
	}

	key := tagOnlyKey(entry.Tag, entry.ParentKey)
	for _, existing := range d.tagOnly[key] {
		if existing.ParentKey == entry.ParentKey {
			return fmt.Errorf("%w: duplicate dictionary entry %q for tag=%d", evioerr.ErrConflict, entry.Name, entry.Tag)
		}
	}

	d.tagOnly[key] = append(d.tagOnly[key], &entry)

	return nil
}

// Lookup resolves (tag, num, parentKey) to a canonical name following
// spec §4.5's cascade: exact match, then tag-only, then tag-range
// (shortest range wins, then parent match), else UnknownName.
func (d *Dictionary) Lookup(tag, num uint16, numValid bool, parentKey string) string {
	if numValid {
		if e := pickBestParent(d.exact[exactKey(tag, num, parentKey)], parentKey); e != nil {
			return e.Name
		}
	}

	if e := pickBestParent(d.tagOnly[tagOnlyKey(tag, parentKey)], parentKey); e != nil {
		return e.Name
	}

	if e := bestRangeMatch(d.ranges, tag, parentKey); e != nil {
		return e.Name
	}

	return UnknownName
}

func pickBestParent(candidates []*Entry, parentKey string) *Entry {
	if len(candidates) == 0 {
		return nil
	}

	for _, c := range candidates {
		if c.ParentKey == parentKey {
			return c
		}
	}

	return candidates[0]
}

// bestRangeMatch finds the tag-range entry containing tag with the
// narrowest span; ties broken by matching parentKey, then first found.
func bestRangeMatch(ranges []*Entry, tag uint16, parentKey string) *Entry {
	var best *Entry
	var bestWidth int

	for _, e := range ranges {
		if tag < e.Tag || tag > e.TagEnd {
			continue
		}

		width := int(e.TagEnd) - int(e.Tag)

		switch {
		case best == nil:
			best, bestWidth = e, width
		case width < bestWidth:
			best, bestWidth = e, width
		case width == bestWidth:
			if e.ParentKey == parentKey && best.ParentKey != parentKey {
				best = e
			}
		}
	}

	return best
}

// ReverseLookup returns the stored entry for name, if any.
func (d *Dictionary) ReverseLookup(name string) (*Entry, bool) {
	e, ok := d.byName[name]

	return e, ok
}

// Len returns the total number of distinct entries inserted.
func (d *Dictionary) Len() int { return len(d.byName) }
