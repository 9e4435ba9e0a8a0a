// Package dictionary builds the name<->(tag,num) lookup used to give
// banks/segments/tagsegments human-readable names, per spec §4.5. The
// XML document itself is parsed as an opaque DOM via stdlib
// encoding/xml (spec §1 names XML parsing as a collaborator this
// module treats as external, not a concern worth a third-party parser
// for); the three lookup maps that sit on top of the parsed entries are
// keyed by github.com/cespare/xxhash/v2 digests, the same hashing
// idiom github.com/arloliu/mebo uses in internal/hash/id.go for its
// metric-name identifiers.
package dictionary

import "github.com/jlab-dift/evio/datatype"

// Entry is one dictionary record: a name bound to a tag (or tag range),
// an optional num (or num range), and descriptive metadata.
type Entry struct {
	Name string

	Tag        uint16
	TagEnd     uint16 // == Tag when not a range
	TagIsRange bool

	Num        uint16
	NumEnd     uint16
	NumValid   bool
	NumIsRange bool

	Type        datatype.Type
	TypeValid   bool
	Format      string
	Description string

	// ParentKey is the dotted name of the entry's containing element
	// ("" for top-level entries), used as the tiebreaker spec §4.5
	// describes ("entries with a matching parent win").
	ParentKey string
}

// UnknownName is returned by Lookup when no entry matches.
const UnknownName = "???"
