package dictionary

import (
	"strings"

	"github.com/jlab-dift/evio/datatype"
)

var typeNames = map[string]datatype.Type{
	"uint32":     datatype.Uint32,
	"float32":    datatype.Float32,
	"charstar8":  datatype.Charstar8,
	"string":     datatype.Charstar8,
	"short16":    datatype.Short16,
	"ushort16":   datatype.Ushort16,
	"char8":      datatype.Char8,
	"uchar8":     datatype.Uchar8,
	"double64":   datatype.Double64,
	"long64":     datatype.Long64,
	"ulong64":    datatype.Ulong64,
	"int32":      datatype.Int32,
	"tagsegment": datatype.TagSegment,
	"composite":  datatype.Composite,
	"bank":       datatype.Bank,
	"segment":    datatype.Segment,
}

// parseTypeName resolves a dictionary "type" attribute value
// case-insensitively to a datatype.Type.
func parseTypeName(s string) (datatype.Type, bool) {
	t, ok := typeNames[strings.ToLower(strings.TrimSpace(s))]

	return t, ok
}
