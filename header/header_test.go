package header

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-dift/evio/byteorder"
	"github.com/jlab-dift/evio/evioerr"
)

func TestFileHeaderRoundTrip(t *testing.T) {
	for _, order := range []byteorder.Order{byteorder.Little, byteorder.Big} {
		h := NewFileHeader(MagicHIPO, HeaderTypeHipoFile, order)
		h.FileNumber = 3
		h.RecordCount = 7
		h.TrailerPosition = 12345
		h.BitInfo = h.BitInfo.WithDictionary(true)

		encoded := h.Encode()
		require.Len(t, encoded, FileHeaderBytes)

		var decoded FileHeader
		require.NoError(t, decoded.Decode(encoded, 0))
		require.Equal(t, order, decoded.Order)
		require.Equal(t, h.FileNumber, decoded.FileNumber)
		require.Equal(t, h.RecordCount, decoded.RecordCount)
		require.Equal(t, h.TrailerPosition, decoded.TrailerPosition)
		require.True(t, decoded.BitInfo.HasDictionary())
	}
}

func TestFileHeaderBadMagic(t *testing.T) {
	buf := make([]byte, FileHeaderBytes)
	var h FileHeader
	require.ErrorIs(t, h.Decode(buf, 0), evioerr.ErrBadMagic)
}

func TestFileHeaderReset(t *testing.T) {
	h := NewFileHeader(MagicHIPO, HeaderTypeHipoFile, byteorder.Little)
	h.BitInfo = h.BitInfo.WithVersion(99)
	h.RecordCount = 5
	h.Reset()
	require.Equal(t, DefaultVersion, h.BitInfo.Version())
	require.Equal(t, uint32(0), h.RecordCount)
	require.Equal(t, HeaderTypeHipoFile, h.BitInfo.HeaderType())
}

func TestRecordHeaderStateMachine(t *testing.T) {
	h := NewRecordHeader(byteorder.Little)
	require.Equal(t, StateEmpty, h.State())

	_, err := h.Encode()
	require.Error(t, err)

	h.SetLength(20)
	require.Equal(t, StateLengthsSet, h.State())

	h.SetDataLength(10)
	require.Equal(t, 2, h.DataPad())

	encoded, err := h.Encode()
	require.NoError(t, err)
	require.Equal(t, StateWritten, h.State())

	var decoded RecordHeader
	require.NoError(t, decoded.Decode(encoded, 0))
	require.Equal(t, h.RecordWords, decoded.RecordWords)
	require.Equal(t, h.UncompressedLength, decoded.UncompressedLength)
	require.Equal(t, 2, decoded.DataPad())
}

func TestRecordHeaderCompressedLengthInvariant(t *testing.T) {
	h := NewRecordHeader(byteorder.Little)
	h.SetLength(14) // header-only record words
	h.CompressionType = CompressionLZ4Fast
	h.CompressedWords = 1000 // way too large for the record
	h.state = StateLengthsSet
	encoded, err := h.Encode()
	require.NoError(t, err)

	var decoded RecordHeader
	require.Error(t, decoded.Decode(encoded, 0))
}

func TestBankHeaderRoundTrip(t *testing.T) {
	h := BankHeader{Tag: 0x1234, Type: 11, Num: 7, Padding: 2, Length: 99}
	encoded := h.Encode(byteorder.Little)
	decoded, err := DecodeBankHeader(encoded, 0, byteorder.Little)
	require.NoError(t, err)
	require.Equal(t, h, decoded)
}

func TestSegmentHeaderRoundTrip(t *testing.T) {
	h := SegmentHeader{Tag: 0xAB, Type: 4, Padding: 1, Length: 55}
	encoded := h.Encode(byteorder.Big)
	decoded, err := DecodeSegmentHeader(encoded, 0, byteorder.Big)
	require.NoError(t, err)
	require.Equal(t, h, decoded)
}

func TestTagSegmentHeaderRoundTrip(t *testing.T) {
	h := TagSegmentHeader{Tag: 0xABC, Type: 6, Length: 1234}
	encoded := h.Encode(byteorder.Little)
	decoded, err := DecodeTagSegmentHeader(encoded, 0, byteorder.Little)
	require.NoError(t, err)
	require.Equal(t, h, decoded)
}
