// Package encoding converts texture names between the single-byte
// Windows-1252 form stored in CRF files and UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeName converts a Windows-1252 encoded name to UTF-8. Bytes the code
// page leaves undefined (0x81, 0x8D, 0x8F, 0x90, 0x9D) become the C1 control
// of the same value, and null bytes are kept, so EncodeName gives back the
// original bytes.
func DecodeName(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		r := charmap.Windows1252.DecodeByte(b)
		if r == utf8.RuneError {
			r = rune(b)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// EncodeName converts a UTF-8 name to Windows-1252 bytes.
// Names containing characters outside the code page are rejected.
func EncodeName(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			if !undefinedByte(r) {
				return nil, fmt.Errorf("encoding name %q: %w at byte %d", s, ErrUnsupportedRune, i)
			}
			b = byte(r)
		}
		out = append(out, b)
	}
	return out, nil
}

// ErrUnsupportedRune is returned by EncodeName for characters that have no
// Windows-1252 byte.
var ErrUnsupportedRune = errors.New("rune not representable in Windows-1252")

func undefinedByte(r rune) bool {
	return r >= 0x80 && r <= 0x9F && charmap.Windows1252.DecodeByte(byte(r)) == utf8.RuneError
}

// TextureName reduces a texture file path to the bare name the game refers
// to: no directory and no extension. Backslash separators are accepted.
func TextureName(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	base := filepath.Base(path)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
