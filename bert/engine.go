// Package bert composes the normalization pipeline (C7) and WordPiece
// segmenter (C6) into the BERT tokenizer engine (spec §4.8): special
// token handling, length truncation, padding, and the bidirectional
// arbitration path.
package bert

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/vocabforge/tokenize/normalize"
	"github.com/vocabforge/tokenize/vocab"
	"github.com/vocabforge/tokenize/wordpiece"
)

// Special token surface forms (spec §3). [PAD] is conventionally id 0;
// all four are resolved from the loaded vocabulary at construction
// time, since their ids vary across models.
const (
	tokenPad = "[PAD]"
	tokenUnk = "[UNK]"
	tokenCls = "[CLS]"
	tokenSep = "[SEP]"
)

// unboundedMaxLength models the spec's "model_max_length = -1" option as
// an explicit sentinel rather than folding it into a real int maximum
// (spec §9 open question).
const unboundedMaxLength = -1

// Engine is the BERT tokenizer (spec §4.8). Vocab and Segmenter are
// immutable after construction and safe to share across goroutines;
// Encode holds no locks and suspends on nothing.
type Engine struct {
	Vocab     *vocab.Store
	Segmenter *wordpiece.Segmenter
	NormOpts  normalize.Options

	Bidirectional    bool
	DefaultMaxLength int // unboundedMaxLength means no default cap

	padID, unkID, clsID, sepID int
}

// NewEngine builds a BERT engine over an already-loaded vocabulary and
// WordPiece segmenter. defaultMaxLength follows the model_max_length
// convention: unboundedMaxLength (-1) means no cap unless the caller
// supplies one explicitly at encode time.
func NewEngine(store *vocab.Store, segmenter *wordpiece.Segmenter, normOpts normalize.Options, bidirectional bool, defaultMaxLength int) (*Engine, error) {
	e := &Engine{
		Vocab:            store,
		Segmenter:        segmenter,
		NormOpts:         normOpts,
		Bidirectional:    bidirectional,
		DefaultMaxLength: defaultMaxLength,
	}
	var ok bool
	if e.padID, ok = idOf(store, tokenPad); !ok {
		return nil, errors.Errorf("vocabulary is missing required special token %q", tokenPad)
	}
	if e.unkID, ok = idOf(store, tokenUnk); !ok {
		return nil, errors.Errorf("vocabulary is missing required special token %q", tokenUnk)
	}
	if e.clsID, ok = idOf(store, tokenCls); !ok {
		return nil, errors.Errorf("vocabulary is missing required special token %q", tokenCls)
	}
	if e.sepID, ok = idOf(store, tokenSep); !ok {
		return nil, errors.Errorf("vocabulary is missing required special token %q", tokenSep)
	}
	return e, nil
}

func idOf(store *vocab.Store, token string) (int, bool) {
	id := store.IDOf(token, -1)
	if id < 0 {
		return 0, false
	}
	return id, true
}

// resolveMaxLength implements the "call arg > engine default >
// unbounded" precedence (spec §9). callMaxLength == 0 means the caller
// did not specify one for this call.
func (e *Engine) resolveMaxLength(callMaxLength int) int {
	if callMaxLength < 0 {
		return unboundedMaxLength
	}
	if callMaxLength != 0 {
		return callMaxLength
	}
	return e.DefaultMaxLength
}

// ResolveMaxLength exposes the "call arg > engine default > unbounded"
// precedence to other packages (the chunked executor wraps chunk
// results in the same [CLS]/[SEP]/padding contract as a sequential
// encode and needs the same resolution rule).
func (e *Engine) ResolveMaxLength(callMaxLength int) int {
	return e.resolveMaxLength(callMaxLength)
}

// PadID, ClsID, and SepID expose the special token ids resolved from
// the loaded vocabulary at construction time, for callers (the chunked
// executor) that assemble ids around chunk-level encodes themselves.
func (e *Engine) PadID() int { return e.padID }
func (e *Engine) ClsID() int { return e.clsID }
func (e *Engine) SepID() int { return e.sepID }
func (e *Engine) UnkID() int { return e.unkID }

// Encode runs the engine with default padding ("longest", i.e.
// unpadded) and the engine's default max length (spec §6 "encode(text)
// uses engine defaults").
func (e *Engine) Encode(text string) []int {
	return e.EncodeWithOptions(text, "longest", 0)
}

// EncodeWithOptions is the full public contract (spec §4.8):
// maxLength == 0 defers to the engine default; a negative maxLength
// means unbounded for this call.
func (e *Engine) EncodeWithOptions(text string, paddingMode string, maxLength int) []int {
	effective := e.resolveMaxLength(maxLength)
	ids := make([]int, 0, 32)
	ids = append(ids, e.clsID)
	ids = e.appendSubWords(text, ids, budgetFor(effective))
	ids = append(ids, e.sepID)

	if paddingMode == "max_length" && effective != unboundedMaxLength {
		for len(ids) < effective {
			ids = append(ids, e.padID)
		}
	}
	return ids
}

// budgetFor returns the maximum number of sub-word ids to append before
// [SEP], i.e. max_length-1, or unbounded when the effective length has
// no cap.
func budgetFor(effectiveMaxLength int) int {
	if effectiveMaxLength == unboundedMaxLength {
		return unboundedMaxLength
	}
	if effectiveMaxLength <= 1 {
		return 0
	}
	return effectiveMaxLength - 1
}

// appendSubWords runs C7 over text, segmenting each sub-word via C6 and
// appending up to budget ids to dst (budget == unboundedMaxLength means
// no limit), regardless of how many ids dst already held on entry.
// This is also the entry point the chunked executor (C10) uses to
// encode a chunk with special tokens suppressed.
func (e *Engine) appendSubWords(text string, dst []int, budget int) []int {
	appended := 0
	var scratch []int
	normalize.SubWords([]byte(text), e.NormOpts, func(sub []byte) bool {
		scratch = scratch[:0]
		if e.Bidirectional {
			var fwd, bwd []int
			fwd = e.Segmenter.Forward(sub, fwd)
			bwd = e.Segmenter.Backward(sub, bwd)
			if wordpiece.Prefer(fwd, bwd) {
				scratch = append(scratch, fwd...)
			} else {
				scratch = append(scratch, bwd...)
			}
		} else {
			scratch = e.Segmenter.Forward(sub, scratch)
		}
		for _, id := range scratch {
			if budget != unboundedMaxLength && appended >= budget {
				return false
			}
			dst = append(dst, id)
			appended++
		}
		return budget == unboundedMaxLength || appended < budget
	})
	return dst
}

// EncodeChunk encodes text as a standalone run of sub-word ids with no
// special tokens and no padding (spec §4.10: "each chunk is encoded
// independently through C8 with special tokens suppressed"). maxIDs
// caps the number of ids appended; unboundedMaxLength means no cap.
func (e *Engine) EncodeChunk(text string, maxIDs int) []int {
	return e.appendSubWords(text, nil, maxIDs)
}

// Tokenize returns the sub-word token strings for text, without
// [CLS]/[SEP] (spec §6 "tokenize(text)").
func (e *Engine) Tokenize(text string) []string {
	ids := e.EncodeChunk(text, unboundedMaxLength)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if tok, ok := e.Vocab.TokenOf(id); ok {
			out = append(out, tok)
		}
	}
	return out
}

// Decode inverts Encode (spec §4.12): [PAD]/[CLS]/[SEP] are skipped,
// "##"-prefixed tokens are joined without a separating space, and every
// other token is preceded by a single space except the first emitted.
func (e *Engine) Decode(ids []int) string {
	var sb strings.Builder
	first := true
	for _, id := range ids {
		if id == e.padID || id == e.clsID || id == e.sepID {
			continue
		}
		tok, ok := e.Vocab.TokenOf(id)
		if !ok {
			continue
		}
		if suffix, isSuffix := strings.CutPrefix(tok, "##"); isSuffix {
			sb.WriteString(suffix)
			continue
		}
		if !first {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok)
		first = false
	}
	return sb.String()
}

// BatchEncode applies EncodeWithOptions to every input, preserving
// input order in the result regardless of completion order when
// parallel is true (spec §4.8 "Batch encode", §5 "Ordering
// guarantees").
func (e *Engine) BatchEncode(ctx context.Context, texts []string, paddingMode string, maxLength int, parallel bool) [][]int {
	results := make([][]int, len(texts))
	if !parallel || len(texts) <= 1 {
		for i, text := range texts {
			if ctx.Err() != nil {
				return results
			}
			results[i] = e.EncodeWithOptions(text, paddingMode, maxLength)
		}
		return results
	}

	workers := runtime.NumCPU()
	if workers > len(texts) {
		workers = len(texts)
	}
	indices := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = e.EncodeWithOptions(texts[i], paddingMode, maxLength)
			}
		}()
	}
	for i := range texts {
		select {
		case indices <- i:
		case <-ctx.Done():
			close(indices)
			wg.Wait()
			return results
		}
	}
	close(indices)
	wg.Wait()
	return results
}
