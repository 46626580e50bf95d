// Package chunked implements the parallel chunked executor (spec §4.10):
// boundary selection over large inputs, a worker pool that encodes
// chunks independently, and a streaming variant with bounded
// back-pressure and cooperative cancellation.
package chunked

import (
	"bytes"

	"github.com/vocabforge/tokenize/charset"
)

// Boundaries splits data into chunk byte ranges targeting size bytes
// per chunk, preferring in order: a double newline within the last
// size/2 bytes, a sentence terminator ". " within the last 3*size/4, a
// single space anywhere in the chunk, or the exact size boundary (spec
// §4.10 "Chunking"). It never splits inside a UTF-8 code point.
func Boundaries(data []byte, size int) [][2]int {
	if size <= 0 {
		size = 1
	}
	var ranges [][2]int
	start := 0
	for start < len(data) {
		end := start + size
		if end >= len(data) {
			ranges = append(ranges, [2]int{start, len(data)})
			break
		}
		cut := chooseBoundary(data, start, end, size)
		cut = retreatToCodePointStart(data, cut)
		if cut <= start {
			// No usable boundary strictly after start; force progress at
			// the exact size cut, retreating only for UTF-8 validity.
			cut = retreatToCodePointStart(data, end)
		}
		if cut <= start {
			// size is smaller than the code point starting at start: advance
			// past that whole code point instead of truncating it.
			_, n := charset.Decode(data[start:])
			if n < 1 {
				n = 1
			}
			cut = start + n
		}
		ranges = append(ranges, [2]int{start, cut})
		start = cut
	}
	return ranges
}

func chooseBoundary(data []byte, start, end, size int) int {
	window := data[start:end]

	halfFrom := size / 2
	if idx := lastIndexWithin(window, []byte("\n\n"), len(window)-halfFrom); idx >= 0 {
		return start + idx + 2
	}

	threeQuarterFrom := (3 * size) / 4
	if idx := lastIndexWithin(window, []byte(". "), len(window)-threeQuarterFrom); idx >= 0 {
		return start + idx + 2
	}

	if idx := bytes.LastIndexByte(window, ' '); idx >= 0 {
		return start + idx + 1
	}

	return end
}

// lastIndexWithin returns the last occurrence of sep in window at or
// after byte offset minOffset, or -1 if none qualifies. minOffset may be
// negative or past the window; callers only care about matches in the
// tail region it names.
func lastIndexWithin(window, sep []byte, minOffset int) int {
	idx := bytes.LastIndex(window, sep)
	if idx < 0 {
		return -1
	}
	if idx < minOffset {
		return -1
	}
	return idx
}

// retreatToCodePointStart walks back from pos while it points inside a
// UTF-8 continuation byte (spec §4.10: "if the chosen boundary falls
// inside a multi-byte sequence, retreat to the last code-point start").
func retreatToCodePointStart(data []byte, pos int) int {
	if pos <= 0 || pos >= len(data) {
		return pos
	}
	for pos > 0 && isContinuation(data[pos]) {
		pos--
	}
	return pos
}

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}
