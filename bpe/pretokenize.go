package bpe

import "unicode"

// contractions are checked, in this order, before the generic letter/
// number/other-symbol alternatives, matching the priority of the GPT-2
// pre-tokenization regex's leading alternatives.
var contractions = []string{"'s", "'t", "'re", "'ve", "'m", "'ll", "'d"}

// PreTokenize splits raw (pre-byte-encoding) text into pieces using the
// same alternation and priority as GPT-2's regex
//
//	's|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+
//
// (spec §4.9). It runs on the original text rather than the byte-encoded
// surface string: byte-encoding remaps the ASCII space to a non-space
// code point (spec §4.9's byte encoder has no fixed point at 0x20), so
// running this pattern after byte-encoding would never recognize a word
// boundary — the leading " ?" and the "\s+" alternatives both rely on a
// literal space. Each matched piece is byte-encoded afterward, by the
// caller, before entering the merge loop.
//
// Go's RE2 engine also has no negative-lookahead operator, so this is a
// hand-rolled equivalent rather than a regexp.Regexp: it walks the rune
// sequence and implements the "\s+(?!\S)" alternative directly — a
// whitespace run that is followed by more non-whitespace input holds
// back its last rune, letting that rune serve as the leading " ?" of
// the next alternative, exactly as the backtracking regex would.
func PreTokenize(text string) []string {
	runes := []rune(text)
	var out []string
	i := 0
	n := len(runes)
	for i < n {
		if m := matchContraction(runes, i); m > 0 {
			out = append(out, string(runes[i:i+m]))
			i += m
			continue
		}
		if m := matchOptSpaceRun(runes, i, unicode.IsLetter); m > 0 {
			out = append(out, string(runes[i:i+m]))
			i += m
			continue
		}
		if m := matchOptSpaceRun(runes, i, unicode.IsNumber); m > 0 {
			out = append(out, string(runes[i:i+m]))
			i += m
			continue
		}
		if m := matchOptSpaceRun(runes, i, isOther); m > 0 {
			out = append(out, string(runes[i:i+m]))
			i += m
			continue
		}
		// Whitespace run: consume it, holding back the last rune if
		// more non-whitespace input follows (the "(?!\S)" negative
		// lookahead), so that final rune reattaches as the leading
		// space of the next piece.
		if unicode.IsSpace(runes[i]) {
			j := i
			for j < n && unicode.IsSpace(runes[j]) {
				j++
			}
			end := j
			if j < n && end > i+1 {
				// More input follows this run and it has more than one
				// space: hold back the last whitespace rune.
				end--
			}
			out = append(out, string(runes[i:end]))
			i = end
			continue
		}
		// Shouldn't be reachable: isOther covers every non-space,
		// non-letter, non-number rune. Guard against infinite loop.
		i++
	}
	return out
}

func matchContraction(runes []rune, i int) int {
	for _, c := range contractions {
		cr := []rune(c)
		if i+len(cr) > len(runes) {
			continue
		}
		match := true
		for k, r := range cr {
			if runes[i+k] != r {
				match = false
				break
			}
		}
		if match {
			return len(cr)
		}
	}
	return 0
}

// matchOptSpaceRun matches an optional single leading space followed by
// a non-empty run of runes satisfying class.
func matchOptSpaceRun(runes []rune, i int, class func(rune) bool) int {
	j := i
	if runes[j] == ' ' {
		j++
	}
	start := j
	for j < len(runes) && class(runes[j]) {
		j++
	}
	if j == start {
		return 0
	}
	return j - i
}

func isOther(r rune) bool {
	return !unicode.IsSpace(r) && !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
