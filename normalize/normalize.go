// Package normalize implements the basic text normalizer (spec §4.7):
// cleaning, whitespace splitting, optional lowering/accent-stripping, and
// punctuation splitting, producing the candidate sub-words WordPiece
// segments.
package normalize

import (
	"unicode/utf8"

	"github.com/vocabforge/tokenize/charset"
	"github.com/vocabforge/tokenize/fold"
)

// Options configures the normalizer (spec §4.11's do_lower_case and
// tokenize_cjk, scoped to this package).
type Options struct {
	DoLowerCase bool
	TokenizeCJK bool
}

// Clean performs the single-pass cleaning step of spec §4.7: dropping
// NUL/replacement-char/line-separator/control code points, replacing
// each whitespace code point with a single ' ' (runs are not merged),
// and isolating CJK ideographs with
// surrounding spaces when CJK mode is enabled.
func Clean(text []byte, opts Options) []byte {
	out := make([]byte, 0, len(text))
	it := charset.NewIterator(text)
	for {
		r, offset, ok := it.Next()
		if !ok {
			break
		}
		switch {
		case r == 0 || r == 0xFFFD || r == 0x2028 || r == 0x2029:
			continue
		case charset.IsControl(r):
			continue
		case charset.IsWhitespace(r):
			out = append(out, ' ')
		case opts.TokenizeCJK && charset.IsCJK(r):
			out = append(out, ' ')
			out = appendOriginal(out, text, offset, it.Pos())
			out = append(out, ' ')
		default:
			out = appendOriginal(out, text, offset, it.Pos())
		}
	}
	return out
}

func appendOriginal(dst, src []byte, start, end int) []byte {
	return append(dst, src[start:end]...)
}

// Idempotent per NORM-1: Clean(Clean(x)) == Clean(x). This holds because
// the cleaned output only ever contains ASCII space, preserved
// non-whitespace/non-control code points, and (with CJK mode) CJK
// ideographs already surrounded by single spaces — none of which Clean
// alters on a second pass.

// SplitWhitespace splits a cleaned byte buffer into word spans on runs
// of ' ', '\t', '\n', '\r' (spec §4.7).
func SplitWhitespace(cleaned []byte) [][]byte {
	var words [][]byte
	start := -1
	for i, c := range cleaned {
		if isSplitByte(c) {
			if start != -1 {
				words = append(words, cleaned[start:i])
				start = -1
			}
		} else if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, cleaned[start:])
	}
	return words
}

func isSplitByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// FoldWord lowercases/strips accents from word in place conceptually,
// returning a new byte slice. All-ASCII words are mapped byte-wise;
// any other word goes code point by code point through the fold
// package (whose compiled table covers the Latin-1 letters).
func FoldWord(word []byte) []byte {
	if isASCII(word) {
		out := make([]byte, len(word))
		for i, c := range word {
			if c >= 'A' && c <= 'Z' {
				c += 'a' - 'A'
			}
			out[i] = c
		}
		return out
	}
	out := make([]byte, 0, len(word))
	it := charset.NewIterator(word)
	for {
		r, _, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, fold.Fold(r)...)
	}
	return out
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// SplitPunctuation walks word code point by code point (spec §4.7): a
// run of non-punctuation code points becomes one sub-word, each
// punctuation code point is its own sub-word, and a word with no
// punctuation passes through unchanged as a single sub-word.
func SplitPunctuation(word []byte) [][]byte {
	hasPunct := false
	it := charset.NewIterator(word)
	for {
		r, _, ok := it.Next()
		if !ok {
			break
		}
		if charset.IsPunctuation(r) {
			hasPunct = true
			break
		}
	}
	if !hasPunct {
		return [][]byte{word}
	}

	var out [][]byte
	runStart := -1
	it = charset.NewIterator(word)
	for {
		r, offset, ok := it.Next()
		if !ok {
			break
		}
		if charset.IsPunctuation(r) {
			if runStart != -1 {
				out = append(out, word[runStart:offset])
				runStart = -1
			}
			out = append(out, word[offset:it.Pos()])
			continue
		}
		if runStart == -1 {
			runStart = offset
		}
	}
	if runStart != -1 {
		out = append(out, word[runStart:])
	}
	return out
}
