package wordpiece

import (
	"testing"

	"github.com/vocabforge/tokenize/automaton"
)

const unkID = 100

func newSegmenter(initial, suffix map[string]int, maxBytes int) *Segmenter {
	ib := automaton.NewBuilder()
	for k, id := range initial {
		ib.Insert([]byte(k), id)
	}
	sb := automaton.NewBuilder()
	for k, id := range suffix {
		sb.Insert([]byte(k), id)
	}
	return &Segmenter{
		Initial:      ib.Build(),
		Suffix:       sb.Build(),
		MaxWordBytes: maxBytes,
		UnkID:        unkID,
	}
}

// WP-1: for every vocabulary word that contains no "##" and fits in the
// per-word cap, forward WordPiece on it yields a single id equal to its
// vocab id.
func TestForwardSingleTokenWords(t *testing.T) {
	s := newSegmenter(map[string]int{"hello": 1, "world": 2}, nil, 100)
	for word, want := range map[string]int{"hello": 1, "world": 2} {
		got := s.Forward([]byte(word), nil)
		if len(got) != 1 || got[0] != want {
			t.Errorf("Forward(%q) = %v, want [%d]", word, got, want)
		}
	}
}

func TestForwardMultiPiece(t *testing.T) {
	s := newSegmenter(map[string]int{"play": 1}, map[string]int{"ing": 2}, 100)
	got := s.Forward([]byte("playing"), nil)
	want := []int{1, 2}
	if !equalInts(got, want) {
		t.Errorf("Forward(playing) = %v, want %v", got, want)
	}
}

func TestForwardUnkWhenPrefixMissing(t *testing.T) {
	s := newSegmenter(map[string]int{"play": 1}, map[string]int{"ing": 2}, 100)
	got := s.Forward([]byte("xplaying"), nil)
	if len(got) != 1 || got[0] != unkID {
		t.Errorf("Forward(xplaying) = %v, want [%d]", got, unkID)
	}
}

// WP-2: forward WordPiece of a word whose byte length exceeds the cap
// yields [[UNK]].
func TestForwardExceedsCap(t *testing.T) {
	s := newSegmenter(map[string]int{"hello": 1}, nil, 3)
	got := s.Forward([]byte("hello"), nil)
	if len(got) != 1 || got[0] != unkID {
		t.Errorf("Forward(hello) over cap = %v, want [%d]", got, unkID)
	}
}

func TestBackwardMultiPiece(t *testing.T) {
	s := newSegmenter(map[string]int{"play": 1}, map[string]int{"ing": 2}, 100)
	got := s.Backward([]byte("playing"), nil)
	want := []int{1, 2}
	if !equalInts(got, want) {
		t.Errorf("Backward(playing) = %v, want %v", got, want)
	}
}

func TestBackwardUnkOnFailure(t *testing.T) {
	s := newSegmenter(map[string]int{"play": 1}, map[string]int{"ing": 2}, 100)
	got := s.Backward([]byte("playground"), nil)
	if len(got) != 1 || got[0] != unkID {
		t.Errorf("Backward(playground) = %v, want [%d]", got, unkID)
	}
}

func TestForwardAppendsToExistingDst(t *testing.T) {
	s := newSegmenter(map[string]int{"hello": 1}, nil, 100)
	dst := []int{99}
	got := s.Forward([]byte("hello"), dst)
	want := []int{99, 1}
	if !equalInts(got, want) {
		t.Errorf("Forward with prefilled dst = %v, want %v", got, want)
	}
}
