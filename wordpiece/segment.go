// Package wordpiece implements WordPiece subword segmentation (spec §4.6):
// greedy longest-match over initial/suffix Aho–Corasick automata, in
// forward and backward variants, with a bidirectional arbitration
// heuristic between them.
package wordpiece

import "github.com/vocabforge/tokenize/automaton"

// Segmenter holds the two automata that partition a vocabulary's
// non-special entries: Initial over tokens with no "##" prefix, Suffix
// over the portion after "##" (spec §3 "Forward segmenter state").
// Both fields, once built, are immutable and shared across calls.
type Segmenter struct {
	Initial *automaton.Automaton
	Suffix  *automaton.Automaton

	// MaxWordBytes is the single per-word byte cap applied once at step 1
	// of the forward algorithm (spec §9, fixing the two-caps ambiguity).
	MaxWordBytes int

	// UnkID is the vocabulary id emitted whenever a word cannot be fully
	// segmented.
	UnkID int
}

// Forward segments word (its raw bytes) left to right, choosing the
// Initial automaton at the first position and the Suffix automaton at
// every subsequent position (spec §4.6 "Forward").
func (s *Segmenter) Forward(word []byte, dst []int) []int {
	if len(word) > s.MaxWordBytes {
		return append(dst, s.UnkID)
	}
	rollback := len(dst)
	start := 0
	for start < len(word) {
		var a *automaton.Automaton
		if start == 0 {
			a = s.Initial
		} else {
			a = s.Suffix
		}
		matchedLen, matchedID := a.Search(word, start)
		if matchedID == -1 {
			dst = dst[:rollback]
			return append(dst, s.UnkID)
		}
		dst = append(dst, matchedID)
		start += matchedLen
	}
	return dst
}

// Backward segments word right to left (spec §4.6 "Backward"), pushing
// matches onto a scratch stack and emitting them in forward order at the
// end. At position pos it tries candidate spans word[i:pos] for i from 0
// upward; i==0 is an Initial candidate, otherwise a Suffix candidate;
// the span must be consumed exactly by the chosen automaton.
func (s *Segmenter) Backward(word []byte, dst []int) []int {
	if len(word) > s.MaxWordBytes {
		return append(dst, s.UnkID)
	}
	var stack []int
	pos := len(word)
	for pos > 0 {
		found := false
		for i := 0; i < pos; i++ {
			var a *automaton.Automaton
			if i == 0 {
				a = s.Initial
			} else {
				a = s.Suffix
			}
			matchedLen, matchedID := a.Search(word[:pos], i)
			if matchedID != -1 && i+matchedLen == pos {
				stack = append(stack, matchedID)
				pos = i
				found = true
				break
			}
		}
		if !found {
			return append(dst, s.UnkID)
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		dst = append(dst, stack[i])
	}
	return dst
}
