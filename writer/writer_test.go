package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/header"
	"github.com/jlab-dift/evio/recordio"
)

func TestWriterEmptyFileClose(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, "t1.evio")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "t1.evio"))
	require.NoError(t, err)
	require.Len(t, data, header.FileHeaderBytes+header.RecordHeaderBytes)

	var fh header.FileHeader
	require.NoError(t, fh.Decode(data, 0))
	require.Equal(t, uint32(0), fh.RecordCount)
	require.Equal(t, uint64(header.FileHeaderBytes), fh.TrailerPosition)

	trailer, err := recordio.Decode(data, int(fh.TrailerPosition))
	require.NoError(t, err)
	require.True(t, trailer.Header.BitInfo.IsLastRecord())
}

func TestWriterSingleEventRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, "single.evio", WithByteOrder(byteorder.Little))
	require.NoError(t, err)

	require.NoError(t, w.AddEvent([]byte{1, 2, 3, 4}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "single.evio"))
	require.NoError(t, err)

	var fh header.FileHeader
	require.NoError(t, fh.Decode(data, 0))
	require.Equal(t, uint32(1), fh.RecordCount)

	in, err := recordio.Decode(data, header.FileHeaderBytes)
	require.NoError(t, err)
	require.Equal(t, 1, in.EventCount())

	ev, err := in.GetEvent(0)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, ev)

	trailer, err := recordio.Decode(data, int(fh.TrailerPosition))
	require.NoError(t, err)
	require.Equal(t, 0, trailer.EventCount())
	require.True(t, trailer.Header.BitInfo.IsLastRecord())
	require.True(t, trailer.Header.BitInfo.HasTrailerWithIndex())
}

func TestWriterSplitsAcrossFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, "run", WithSplitBytes(header.RecordHeaderBytes+32))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, w.AddEvent([]byte{byte(i), byte(i), byte(i), byte(i)}))
		require.NoError(t, w.Flush())
	}

	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Greater(t, len(entries), 1)

	totalEvents := 0
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)

		var fh header.FileHeader
		require.NoError(t, fh.Decode(data, 0))

		offset := header.FileHeaderBytes
		for i := uint32(0); i < fh.RecordCount; i++ {
			rec, err := recordio.Decode(data, offset)
			require.NoError(t, err)
			totalEvents += rec.EventCount()
			offset += rec.RecordBytes()
		}

		trailer, err := recordio.Decode(data, int(fh.TrailerPosition))
		require.NoError(t, err)
		require.True(t, trailer.Header.BitInfo.IsLastRecord())
	}

	require.Equal(t, 4, totalEvents)
}

func TestDefaultNameTemplateFormat(t *testing.T) {
	tpl := NewDefaultNameTemplate("run", 7, 0, "")

	name, err := tpl.Format(3)
	require.NoError(t, err)
	require.Equal(t, "run.7.0.3", name)

	tpl2 := NewDefaultNameTemplate("out_%d_%d_%d.hipo", 1, 2, "")
	name2, err := tpl2.Format(3)
	require.NoError(t, err)
	require.Equal(t, "out_1_2_3.hipo", name2)

	os.Setenv("EVIO_TEST_DIR", "data")
	defer os.Unsetenv("EVIO_TEST_DIR")

	tpl3 := NewDefaultNameTemplate("$(EVIO_TEST_DIR)/run%d.hipo", 5, 0, "")
	name3, err := tpl3.Format(0)
	require.NoError(t, err)
	require.Equal(t, "data/run5.hipo", name3)
}
