// Package tokenizers is the facade (C11/C12): it dispatches a Config to
// the bert or bpe engine, surfaces construction-time errors before any
// successful encode, and exposes the public encode/decode/tokenize/
// batch_encode contract (spec §4.11, §4.12, §6).
package tokenizers

import (
	"context"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/vocabforge/tokenize/automaton"
	"github.com/vocabforge/tokenize/bert"
	"github.com/vocabforge/tokenize/bpe"
	"github.com/vocabforge/tokenize/cache"
	"github.com/vocabforge/tokenize/chunked"
	"github.com/vocabforge/tokenize/normalize"
	"github.com/vocabforge/tokenize/tokenizers/api"
	"github.com/vocabforge/tokenize/vocab"
	"github.com/vocabforge/tokenize/wordpiece"
)

// Tokenizer is the constructed, ready-to-use facade over exactly one
// engine (spec §4.11 "Polymorphism vs variants": one engine, two tagged
// variants, selected by configuration rather than subtyping).
type Tokenizer struct {
	resolved api.Resolved

	bertEngine *bert.Engine
	bpeEngine  *bpe.Engine
	executor   *chunked.Executor
}

// New validates config, loads the vocabulary/merges files for the
// selected engine type, and builds the engine. All failure modes here
// are configuration or format errors (spec §7); nothing after a
// successful New can fail construction-time validation again.
func New(config api.Config) (*Tokenizer, error) {
	resolved := config.Resolve(runtime.NumCPU())

	switch resolved.Type {
	case api.EngineBERT:
		return newBERT(resolved)
	case api.EngineBPE:
		return newBPE(resolved)
	default:
		return nil, errors.Errorf("unrecognized tokenizer type %q (want %q or %q)", resolved.Type, api.EngineBERT, api.EngineBPE)
	}
}

func newBERT(resolved api.Resolved) (*Tokenizer, error) {
	if resolved.VocabPath == "" {
		return nil, errors.New("bert tokenizer requires vocab_path")
	}
	store, err := vocab.Load(resolved.VocabPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading bert vocabulary")
	}

	initial, suffix, err := buildAutomataWithCache(store, resolved.VocabPath)
	if err != nil {
		return nil, err
	}

	unkID := store.IDOf("[UNK]", -1)
	if unkID < 0 {
		return nil, errors.New("bert vocabulary is missing [UNK]")
	}
	segmenter := &wordpiece.Segmenter{
		Initial:      initial,
		Suffix:       suffix,
		MaxWordBytes: maxWordBytes,
		UnkID:        unkID,
	}

	engine, err := bert.NewEngine(store, segmenter, normalize.Options{
		DoLowerCase: resolved.DoLowerCase,
		TokenizeCJK: resolved.TokenizeCJK,
	}, resolved.EnableBidirectional, resolved.ModelMaxLength)
	if err != nil {
		return nil, errors.Wrap(err, "building bert engine")
	}

	return &Tokenizer{
		resolved:   resolved,
		bertEngine: engine,
		executor:   chunked.NewExecutor(engine, resolved.ChunkSize, resolved.MaxParallelism),
	}, nil
}

// maxWordBytes is the single per-word byte cap applied once at forward
// segmentation step 1 (spec §9 resolves the source's two-caps ambiguity
// this way). 200 mirrors the common BERT default of max_input_chars_per_word.
const maxWordBytes = 200

// buildAutomataWithCache builds the initial/suffix Aho–Corasick
// automata over store's non-special entries, consulting (and
// populating) a pair of on-disk cache sidecars keyed off vocabPath so a
// process that restarts against the same vocabulary doesn't repay the
// build cost (spec §4.5's arena+index construction, persisted via the
// cache package).
func buildAutomataWithCache(store *vocab.Store, vocabPath string) (initial, suffix *automaton.Automaton, err error) {
	initialCachePath := vocabPath + ".initial.ahco"
	suffixCachePath := vocabPath + ".suffix.ahco"

	if cache.Fresh(initialCachePath, vocabPath) && cache.Fresh(suffixCachePath, vocabPath) {
		if i, iErr := cache.Load(initialCachePath); iErr == nil {
			if s, sErr := cache.Load(suffixCachePath); sErr == nil {
				return i, s, nil
			}
		}
	}

	initialBuilder := automaton.NewBuilder()
	suffixBuilder := automaton.NewBuilder()
	for id := 0; id < store.Len(); id++ {
		tok, _ := store.TokenOf(id)
		if strings.HasPrefix(tok, "[") {
			continue // structural special tokens aren't matched via text
		}
		if rest, ok := strings.CutPrefix(tok, "##"); ok {
			suffixBuilder.Insert([]byte(rest), id)
		} else {
			initialBuilder.Insert([]byte(tok), id)
		}
	}
	initial = initialBuilder.Build()
	suffix = suffixBuilder.Build()

	// Best-effort: a cache write failure never fails construction.
	_ = cache.Save(initial, initialCachePath)
	_ = cache.Save(suffix, suffixCachePath)

	return initial, suffix, nil
}

func newBPE(resolved api.Resolved) (*Tokenizer, error) {
	if resolved.BPEVocabPath == "" {
		return nil, errors.New("bpe tokenizer requires bpe_vocab_path")
	}
	if resolved.BPEMergesPath == "" {
		return nil, errors.New("bpe tokenizer requires bpe_merges_path")
	}
	v, err := bpe.LoadVocab(resolved.BPEVocabPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading BPE vocabulary")
	}
	m, err := bpe.LoadMerges(resolved.BPEMergesPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading BPE merges")
	}
	return &Tokenizer{resolved: resolved, bpeEngine: bpe.NewEngine(v, m)}, nil
}

// Encode uses the engine's configured defaults (spec §6 "encode(text)").
func (t *Tokenizer) Encode(text string) []int {
	if t.bpeEngine != nil {
		return t.bpeEngine.Encode(text)
	}
	return t.bertEngine.Encode(text)
}

// EncodeWithOptions is the full single-text contract (spec §6
// "encode(text, padding, max_length)"). padding and maxLength are
// ignored by the BPE engine, which has no special-token/padding
// concept (spec §4.9).
func (t *Tokenizer) EncodeWithOptions(text string, paddingMode string, maxLength int) []int {
	if t.bpeEngine != nil {
		return t.bpeEngine.Encode(text)
	}
	if len(text) > t.resolved.ChunkSize {
		return t.executor.Encode(text, paddingMode, maxLength)
	}
	return t.bertEngine.EncodeWithOptions(text, paddingMode, maxLength)
}

// Decode inverts Encode/EncodeWithOptions (spec §4.12).
func (t *Tokenizer) Decode(ids []int) string {
	if t.bpeEngine != nil {
		return t.bpeEngine.Decode(ids)
	}
	return t.bertEngine.Decode(ids)
}

// Tokenize returns sub-word token strings without special tokens (spec
// §6 "tokenize(text)"); it is only meaningful for the bert engine.
func (t *Tokenizer) Tokenize(text string) []string {
	if t.bertEngine == nil {
		return nil
	}
	return t.bertEngine.Tokenize(text)
}

// BatchEncode applies EncodeWithOptions to every input, preserving
// input order regardless of completion order when parallel is set
// (spec §6 "batch_encode").
func (t *Tokenizer) BatchEncode(ctx context.Context, texts []string, paddingMode string, maxLength int, parallel bool) [][]int {
	if t.bpeEngine != nil {
		out := make([][]int, len(texts))
		for i, text := range texts {
			out[i] = t.bpeEngine.Encode(text)
		}
		return out
	}
	return t.bertEngine.BatchEncode(ctx, texts, paddingMode, maxLength, parallel)
}

// SpecialTokenID resolves a canonical special-token role to this
// tokenizer's actual vocabulary id.
func (t *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	if t.bertEngine == nil {
		return 0, errors.New("BPE engine has no structural special tokens")
	}
	switch token {
	case api.TokPad:
		return t.bertEngine.PadID(), nil
	case api.TokClassification, api.TokBeginningOfSentence:
		return t.bertEngine.ClsID(), nil
	case api.TokEndOfSentence:
		return t.bertEngine.SepID(), nil
	case api.TokUnknown:
		return t.bertEngine.UnkID(), nil
	default:
		return 0, errors.Errorf("unsupported special token %v", token)
	}
}
