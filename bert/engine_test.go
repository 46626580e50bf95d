package bert

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/vocabforge/tokenize/automaton"
	"github.com/vocabforge/tokenize/normalize"
	"github.com/vocabforge/tokenize/vocab"
	"github.com/vocabforge/tokenize/wordpiece"
)

// testVocab mirrors a slice of BERT-base's canonical layout: [PAD]=0,
// [UNK]=100, [CLS]=101, [SEP]=102, plus entries needed by the scenarios
// in spec §8.
var testVocabLines = []string{
	"[PAD]", // 0
}

func buildTestEngine(t *testing.T, extra []string, bidirectional bool, defaultMaxLength int) *Engine {
	t.Helper()
	lines := append([]string{}, testVocabLines...)
	// Real words get the low ids right after [PAD], as in an actual
	// frequency-ordered vocab file; placeholders pad out to 99 so
	// [UNK]/[CLS]/[SEP] land on 100/101/102 as in the scenario preamble.
	lines = append(lines, extra...)
	for len(lines) < 100 {
		lines = append(lines, "[unused"+strconv.Itoa(len(lines))+"]")
	}
	lines = append(lines, "[UNK]", "[CLS]", "[SEP]")

	store, err := vocab.LoadFromReader(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	initial := automaton.NewBuilder()
	suffix := automaton.NewBuilder()
	for id := 0; id < store.Len(); id++ {
		tok, _ := store.TokenOf(id)
		if strings.HasPrefix(tok, "##") {
			suffix.Insert([]byte(tok[2:]), id)
		} else if !strings.HasPrefix(tok, "[") {
			initial.Insert([]byte(tok), id)
		}
	}
	seg := &wordpiece.Segmenter{
		Initial:      initial.Build(),
		Suffix:       suffix.Build(),
		MaxWordBytes: 100,
		UnkID:        store.IDOf("[UNK]", -1),
	}

	e, err := NewEngine(store, seg, normalize.Options{DoLowerCase: true, TokenizeCJK: true}, bidirectional, defaultMaxLength)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestScenarioHelloWorld(t *testing.T) {
	e := buildTestEngine(t, []string{"hello", ",", "world", "!"}, false, unboundedMaxLength)
	ids := e.Encode("Hello, world!")
	if ids[0] != 101 {
		t.Errorf("first id = %d, want 101 ([CLS])", ids[0])
	}
	if ids[len(ids)-1] != 102 {
		t.Errorf("last id = %d, want 102 ([SEP])", ids[len(ids)-1])
	}
	middle := ids[1 : len(ids)-1]
	if len(middle) != 4 {
		t.Fatalf("middle ids = %v, want 4 entries", middle)
	}
}

func TestScenarioCJK(t *testing.T) {
	e := buildTestEngine(t, []string{"hello", ",", "世", "界", "!"}, false, unboundedMaxLength)
	ids := e.Encode("Hello, 世界!")
	middle := ids[1 : len(ids)-1]
	if len(middle) != 5 {
		t.Fatalf("middle ids = %v, want 5 entries (CJK isolated)", middle)
	}
}

func TestScenarioAccentStripping(t *testing.T) {
	e := buildTestEngine(t, []string{"cafe"}, false, unboundedMaxLength)
	ids := e.Encode("Café")
	middle := ids[1 : len(ids)-1]
	if len(middle) != 1 {
		t.Fatalf("middle ids = %v, want 1 entry (cafe)", middle)
	}
}

func TestScenarioPadding(t *testing.T) {
	e := buildTestEngine(t, []string{"hello", ",", "world", "!"}, false, unboundedMaxLength)
	const n = 10
	ids := e.EncodeWithOptions("Hello, world!", "max_length", n)
	if len(ids) != n {
		t.Fatalf("len(ids) = %d, want %d", len(ids), n)
	}
	actualLen := 0
	for _, id := range ids {
		if id != 0 {
			actualLen++
		} else {
			break
		}
	}
	for i := actualLen; i < n; i++ {
		if ids[i] != 0 {
			t.Errorf("ids[%d] = %d, want 0 ([PAD])", i, ids[i])
		}
	}
}

func TestScenarioBidirectionalPrefersSplit(t *testing.T) {
	// "unaffable" is absent. Forward greedily matches the longer initial
	// entry "unaf" first, stranding "fable" with no suffix continuation,
	// so it rolls back to [UNK]. Backward finds "##able", then "##aff",
	// then "un" — a complete split with no [UNK] — and bidirectional
	// prefers it.
	e := buildTestEngine(t, []string{"un", "unaf", "##aff", "##able"}, true, unboundedMaxLength)
	ids := e.Encode("unaffable")
	middle := ids[1 : len(ids)-1]
	unkID := e.unkID
	for _, id := range middle {
		if id == unkID {
			t.Fatalf("bidirectional result contains [UNK]: %v", middle)
		}
	}
	if len(middle) != 3 {
		t.Fatalf("middle ids = %v, want 3 entries (un, ##aff, ##able)", middle)
	}
}

func TestBatchEncodePreservesOrder(t *testing.T) {
	e := buildTestEngine(t, []string{"a", "b", "c"}, false, unboundedMaxLength)
	texts := []string{"a", "b", "c", "a b", "c a b"}
	sequential := e.BatchEncode(context.Background(), texts, "longest", 0, false)
	parallel := e.BatchEncode(context.Background(), texts, "longest", 0, true)
	for i := range texts {
		if len(sequential[i]) != len(parallel[i]) {
			t.Fatalf("result %d differs in length: %v vs %v", i, sequential[i], parallel[i])
		}
		for j := range sequential[i] {
			if sequential[i][j] != parallel[i][j] {
				t.Errorf("result %d differs at %d: %v vs %v", i, j, sequential[i], parallel[i])
			}
		}
	}
}

func TestDecodeJoinsSuffixesWithoutSpace(t *testing.T) {
	e := buildTestEngine(t, []string{"un", "##aff", "##able"}, false, unboundedMaxLength)
	unID := e.Vocab.IDOf("un", -1)
	affID := e.Vocab.IDOf("##aff", -1)
	ableID := e.Vocab.IDOf("##able", -1)
	got := e.Decode([]int{101, unID, affID, ableID, 102})
	if got != "unaffable" {
		t.Errorf("Decode = %q, want %q", got, "unaffable")
	}
}

func TestTokenizeExcludesSpecialTokens(t *testing.T) {
	e := buildTestEngine(t, []string{"hello", ",", "world", "!"}, false, unboundedMaxLength)
	toks := e.Tokenize("Hello, world!")
	for _, tok := range toks {
		if tok == "[CLS]" || tok == "[SEP]" {
			t.Errorf("Tokenize leaked special token %q", tok)
		}
	}
	if len(toks) != 4 {
		t.Errorf("Tokenize = %v, want 4 pieces", toks)
	}
}
