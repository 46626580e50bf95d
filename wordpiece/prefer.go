package wordpiece

import "sort"

// reservedIDsBelow is the count of canonical low special-token ids
// filtered out before the bidirectional tie-break's lexicographic
// comparison (spec §4.6: [PAD]=0, [UNK]=1, [CLS]=2, [SEP]=3).
const reservedIDsBelow = 4

// Prefer implements the bidirectional arbitration heuristic (spec §4.6):
// given the forward (f) and backward (b) id sequences for one word,
// decide which to use. Equal inputs prefer forward (PREFER-1), and the
// REDESIGN FLAG resolves the remaining ambiguous tie (identical
// filtered/sorted sequences) in favor of forward as well, so for such a
// pair (e.g. {5, 6} and {6, 5}) Prefer(f, b) and Prefer(b, f) are both
// true. For every other pair of distinct inputs it is anti-symmetric.
//
// Prefer returns true if f should be used, false if b should be used.
func Prefer(f, b []int) bool {
	if equalInts(f, b) {
		return true
	}
	minF, okF := minInt(f)
	minB, okB := minInt(b)
	switch {
	case okF && okB && minF < minB:
		return true
	case okF && okB && minB < minF:
		return false
	case okF && !okB:
		return true
	case !okF && okB:
		return false
	}

	ff := filterAndSort(f)
	fb := filterAndSort(b)
	cmp := compareInts(ff, fb)
	if cmp < 0 {
		return true
	}
	if cmp > 0 {
		return false
	}
	// Spec's REDESIGN FLAG: identical filtered/sorted sequences prefer the
	// forward segmentation (a proper prefix was already resolved by
	// compareInts above).
	return true
}

func minInt(xs []int) (int, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m, true
}

func filterAndSort(xs []int) []int {
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if x >= reservedIDsBelow {
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}

// compareInts lexicographically compares a and b; a shorter sequence
// that is a proper prefix of the other compares as smaller (spec §4.6).
func compareInts(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
