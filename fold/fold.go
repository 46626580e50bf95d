// Package fold implements accent stripping and case folding for the text
// normalizer (spec §4.3): a compiled code-point→replacement table with an
// NFKD-based fallback for anything the table doesn't cover.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold returns the lowercase, accent-stripped replacement for a code
// point. ASCII letters are folded byte-wise; everything else first
// consults the compiled table (built once at init from an embedded
// resource) and falls back to NFKD decomposition plus combining-mark
// removal for anything not present there.
func Fold(r rune) string {
	if r >= 'A' && r <= 'Z' {
		return string(r + ('a' - 'A'))
	}
	if r < 0x80 {
		return string(r)
	}
	if rep, ok := table[r]; ok {
		return rep
	}
	return fallback(r)
}

// fallback decomposes r (NFKD), drops non-spacing and spacing-combining
// marks, and lowercases each surviving scalar invariantly.
func fallback(r rune) string {
	decomposed := norm.NFKD.String(string(r))
	var b strings.Builder
	for _, c := range decomposed {
		if unicode.Is(unicode.Mn, c) || unicode.Is(unicode.Mc, c) {
			continue
		}
		b.WriteRune(unicode.ToLower(c))
	}
	if b.Len() == 0 {
		// The whole scalar decomposed into combining marks (rare); keep
		// the lowercased original rather than dropping it silently.
		return string(unicode.ToLower(r))
	}
	return b.String()
}
