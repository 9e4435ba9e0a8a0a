package dictionary

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jlab-dift/evio/evioerr"
)

// parseRange parses "N" or "N-M" (optional surrounding whitespace) into
// (start, end, isRange). An empty string yields (0, 0, false, false).
func parseRange(s string) (start, end uint16, isRange, present bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false, false, nil
	}

	if i := strings.IndexByte(s, '-'); i >= 0 {
		loStr := strings.TrimSpace(s[:i])
		hiStr := strings.TrimSpace(s[i+1:])

		lo, err := strconv.ParseUint(loStr, 10, 16)
		if err != nil {
			return 0, 0, false, false, fmt.Errorf("%w: bad range start %q", evioerr.ErrBadFormat, loStr)
		}

		hi, err := strconv.ParseUint(hiStr, 10, 16)
		if err != nil {
			return 0, 0, false, false, fmt.Errorf("%w: bad range end %q", evioerr.ErrBadFormat, hiStr)
		}

		return uint16(lo), uint16(hi), true, true, nil
	}

	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, 0, false, false, fmt.Errorf("%w: bad integer %q", evioerr.ErrBadFormat, s)
	}

	return uint16(v), uint16(v), false, true, nil
}

func attr(start xml.StartElement, name string) (string, bool) {
	for _, a := range start.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}

	return "", false
}

// parseDocument reads the whole dictionary document, recursively
// visiting every element under the root (case-insensitively: spec
// §4.5 does not fix a casing convention) and inserting one Entry per
// element that carries a name/tag pair. Nested element names are
// joined with '.' to form the child's full Name, matching spec §4.5's
// "child names are formed as parent.child".
func parseDocument(r io.Reader, insert func(Entry) error) error {
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return fmt.Errorf("%w: %v", evioerr.ErrBadFormat, err)
		}

		if start, ok := tok.(xml.StartElement); ok {
			if !strings.EqualFold(start.Name.Local, "dictionary") {
				return fmt.Errorf("%w: expected root element <dictionary>, got <%s>", evioerr.ErrBadFormat, start.Name.Local)
			}

			return walkChildren(dec, "", "", insert)
		}
	}
}

// walkChildren consumes elements up to and including the matching end
// tag of the element whose children are being walked, inserting an
// Entry for each child that names a tag, and recursing into it.
func walkChildren(dec *xml.Decoder, parentName, parentKey string, insert func(Entry) error) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", evioerr.ErrBadFormat, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			e, fullName, err := entryFromElement(t, parentName, parentKey)
			if err != nil {
				return err
			}

			if e != nil {
				if err := insert(*e); err != nil {
					return err
				}
			}

			nextParentKey := parentKey
			if fullName != "" {
				nextParentKey = fullName
			}

			if err := walkChildren(dec, fullName, nextParentKey, insert); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// entryFromElement builds an Entry from start's attributes when it
// carries both a "name" and a "tag" attribute. An element with a name
// but no tag returns (nil, fullName, nil) and only contributes to its
// children's naming; one with no name returns (nil, parentName, nil).
func entryFromElement(start xml.StartElement, parentName, parentKey string) (*Entry, string, error) {
	name, hasName := attr(start, "name")
	if !hasName {
		return nil, parentName, nil
	}

	fullName := name
	if parentName != "" {
		fullName = parentName + "." + name
	}

	e := Entry{Name: fullName, ParentKey: parentKey}

	tagStr, hasTag := attr(start, "tag")
	if !hasTag {
		return nil, fullName, nil
	}

	tag, tagEnd, isRange, _, err := parseRange(tagStr)
	if err != nil {
		return nil, "", err
	}

	e.Tag, e.TagEnd, e.TagIsRange = tag, tagEnd, isRange

	if numStr, ok := attr(start, "num"); ok {
		num, numEnd, isRange, present, err := parseRange(numStr)
		if err != nil {
			return nil, "", err
		}

		e.Num, e.NumEnd, e.NumIsRange, e.NumValid = num, numEnd, isRange, present
	}

	if typeStr, ok := attr(start, "type"); ok {
		if t, ok := parseTypeName(typeStr); ok {
			e.Type, e.TypeValid = t, true
		}
	}

	e.Format, _ = attr(start, "format")
	e.Description, _ = attr(start, "description")

	return &e, fullName, nil
}
