// Package textutil holds the one text-decoding rule shared by the idx,
// syn, and dict parsers: StarDict files carry raw bytes that are
// "supposed" to be UTF-8 but occasionally aren't, so every string
// pulled out of them is decoded leniently rather than rejected.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// DecodeLossy decodes b as UTF-8, replacing invalid byte sequences with
// the Unicode replacement character, then drops every replacement
// character from the result. This keeps valid multi-byte glyphs around
// a corrupt run while silently stripping the corruption, rather than
// failing the whole field.
func DecodeLossy(b []byte) string {
	var out strings.Builder
	out.Grow(len(b))
	for _, r := range string(b) {
		if r == utf8.RuneError {
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
