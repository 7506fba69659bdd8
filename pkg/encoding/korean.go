// Package encoding decodes the fixed-width, NUL-padded name fields found in
// binary model files. Names are stored as EUC-KR; ASCII passes through.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// DecodeFixed converts a NUL-padded EUC-KR field to a UTF-8 string.
// Bytes after the first NUL are ignored. Undecodable input is returned raw.
func DecodeFixed(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), field)
	if err != nil {
		return string(field)
	}
	return string(out)
}

// EncodeFixed converts s to EUC-KR and pads or truncates it to size bytes.
// Strings that cannot be represented in EUC-KR are copied as raw UTF-8.
func EncodeFixed(s string, size int) []byte {
	field := make([]byte, size)
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		encoded = []byte(s)
	}
	copy(field, encoded)
	return field
}
