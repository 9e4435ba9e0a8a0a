package tree

import "github.com/jlab-dift/evio/evioerr"

const stringPadByte = 0x04

// EncodeStringArray packs strs as NUL-terminated UTF-8 strings
// concatenated together, then pads the result to a 4-byte boundary
// using 0x04 filler bytes (never fewer than one), per spec §3's
// Charstar8 framing: the 0x04 pad lets a reader distinguish "more
// string data" from "end of array" without a separate length prefix.
func EncodeStringArray(strs []string) []byte {
	var out []byte
	for _, s := range strs {
		out = append(out, []byte(s)...)
		out = append(out, 0x00)
	}

	pad := 4 - len(out)%4
	if pad == 0 {
		pad = 4
	}

	for i := 0; i < pad; i++ {
		out = append(out, stringPadByte)
	}

	return out
}

// DecodeStringArray unpacks a Charstar8 payload produced by
// EncodeStringArray: trailing 0x04 bytes are stripped as padding, the
// remainder is split on NUL bytes. Returns ErrMalformedString if any
// recovered string contains a control byte other than tab/newline
// before its terminating NUL (spec §3).
func DecodeStringArray(raw []byte) ([]string, error) {
	end := len(raw)
	for end > 0 && raw[end-1] == stringPadByte {
		end--
	}

	var out []string
	start := 0

	for i := 0; i < end; i++ {
		if raw[i] == 0x00 {
			s := raw[start:i]
			if err := checkPrintable(s); err != nil {
				return nil, err
			}

			out = append(out, string(s))
			start = i + 1
		}
	}

	if start != end {
		// Trailing bytes with no terminating NUL: malformed per the
		// same "before its terminating NUL" rule — there is none.
		return nil, evioerr.ErrMalformedString
	}

	return out, nil
}

// DecodeLegacyString reads a version 1-3 style single C-string payload:
// bytes up to the first NUL, any remainder treated as pad (spec §9
// legacy compatibility notes).
func DecodeLegacyString(raw []byte) (string, error) {
	for i, b := range raw {
		if b == 0x00 {
			s := raw[:i]

			return string(s), checkPrintable(s)
		}
	}

	return string(raw), checkPrintable(raw)
}

func checkPrintable(s []byte) error {
	for _, b := range s {
		if b < 0x20 && b != 0x09 && b != 0x0A {
			return evioerr.ErrMalformedString
		}
	}

	return nil
}
