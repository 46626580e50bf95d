package wordpiece

import "testing"

// PREFER-1: the bidirectional preference is a total order: defined on
// equal inputs as "equal prefers forward".
func TestPreferEqualPrefersForward(t *testing.T) {
	f := []int{5, 6, 7}
	b := []int{5, 6, 7}
	if !Prefer(f, b) {
		t.Error("Prefer(f, f) should prefer forward")
	}
}

func TestPreferByMinID(t *testing.T) {
	f := []int{100, 3}
	b := []int{50, 200}
	if !Prefer(f, b) {
		t.Error("Prefer should favor the sequence with the smaller min id (forward here)")
	}
	if Prefer(b, f) {
		t.Error("Prefer(b, f) should not also prefer b when b loses to f")
	}
}

func TestPreferAntiSymmetric(t *testing.T) {
	f := []int{10, 20}
	b := []int{10, 5}
	pf := Prefer(f, b)
	pb := Prefer(b, f)
	if pf == pb {
		t.Errorf("Prefer is not anti-symmetric for distinct inputs: Prefer(f,b)=%v Prefer(b,f)=%v", pf, pb)
	}
}

func TestPreferShorterPrefixWins(t *testing.T) {
	// After filtering ids < 4, both share a common prefix, but f is a
	// proper prefix of b and they have the same min, so f should win.
	f := []int{4, 5}
	b := []int{4, 5, 6}
	if !Prefer(f, b) {
		t.Error("Prefer should favor the shorter sequence when it's a proper prefix")
	}
}
