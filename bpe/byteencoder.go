// Package bpe implements byte-level Byte-Pair Encoding (spec §4.9), as
// used by GPT-2: a deterministic byte→printable-codepoint bijection,
// regex pre-tokenization, and a rank-driven merge loop with caching.
package bpe

// byteToRune and runeToByte implement GPT-2's canonical byte encoder
// (spec §4.9): every byte in the "already printable" ranges maps to
// itself; every other byte is assigned the next unused code point
// starting at U+0100. This is the unique reproducible bijection also
// used by decoders, so it is built once as a package-level constant
// table.
var byteToRune [256]rune
var runeToByte map[rune]byte

func init() {
	runeToByte = make(map[rune]byte, 256)
	printable := make(map[int]bool, 256)
	addRange := func(lo, hi int) {
		for b := lo; b <= hi; b++ {
			printable[b] = true
		}
	}
	addRange(0x21, 0x7E)
	addRange(0xA1, 0xAC)
	addRange(0xAE, 0xFF)

	n := rune(0)
	for b := 0; b < 256; b++ {
		if printable[b] {
			byteToRune[b] = rune(b)
		} else {
			byteToRune[b] = 0x100 + n
			n++
		}
		runeToByte[byteToRune[b]] = byte(b)
	}
}

// EncodeBytes maps raw bytes to the byte-level surface string used for
// BPE merging. Pre-tokenization runs before this, on the raw text (see
// PreTokenize).
func EncodeBytes(data []byte) string {
	out := make([]rune, len(data))
	for i, b := range data {
		out[i] = byteToRune[b]
	}
	return string(out)
}

// DecodeRunes inverts EncodeBytes: it maps each code point in s back to
// its original byte, silently dropping code points absent from the
// decoder table (spec §4.9 decode).
func DecodeRunes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := runeToByte[r]; ok {
			out = append(out, b)
		}
	}
	return out
}
