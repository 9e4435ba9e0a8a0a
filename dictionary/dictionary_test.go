package dictionary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-dift/evio/evioerr"
)

const sampleXML = `<dictionary>
  <bank name="EVENT" tag="1">
    <leaf name="hits" tag="11" num="1" type="int32"/>
    <leaf name="energy" tag="12" num="1" type="float32"/>
  </bank>
  <dictEntry name="calib" tag="100-200"/>
</dictionary>`

func TestBuildAndLookup(t *testing.T) {
	d, err := Build(strings.NewReader(sampleXML))
	require.NoError(t, err)

	require.Equal(t, "EVENT.hits", d.Lookup(11, 1, true, "EVENT"))
	require.Equal(t, "EVENT.energy", d.Lookup(12, 1, true, "EVENT"))
	require.Equal(t, UnknownName, d.Lookup(11, 99, true, "EVENT"))
	require.Equal(t, "calib", d.Lookup(150, 0, false, ""))
}

func TestReverseLookup(t *testing.T) {
	d, err := Build(strings.NewReader(sampleXML))
	require.NoError(t, err)

	e, ok := d.ReverseLookup("EVENT.hits")
	require.True(t, ok)
	require.Equal(t, uint16(11), e.Tag)
	require.Equal(t, uint16(1), e.Num)
}

func TestDuplicateEntryRejected(t *testing.T) {
	const dup = `<dictionary>
    <leaf name="a" tag="5" num="1"/>
    <leaf name="b" tag="5" num="1"/>
  </dictionary>`

	_, err := Build(strings.NewReader(dup))
	require.ErrorIs(t, err, evioerr.ErrConflict)
}

func TestTagRangeShortestWins(t *testing.T) {
	const xml = `<dictionary>
    <dictEntry name="wide" tag="1-100"/>
    <dictEntry name="narrow" tag="40-50"/>
  </dictionary>`

	d, err := Build(strings.NewReader(xml))
	require.NoError(t, err)
	require.Equal(t, "narrow", d.Lookup(45, 0, false, ""))
	require.Equal(t, "wide", d.Lookup(10, 0, false, ""))
}
