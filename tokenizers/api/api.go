// Package api defines the Tokenizer API.
// It's just a hack to break the cyclic dependency, and allow the users to import `tokenizers` and get the
// default implementations.
package api

// TokenOffset represents the character span of a token in the original text.
// This is useful for token classification tasks (NER, chunking) where you need
// to map token predictions back to character positions in the original text.
type TokenOffset struct {
	Start int // start character position (inclusive)
	End   int // end character position (exclusive)
}

// EncodingResult contains tokens with their offsets.
type EncodingResult struct {
	IDs     []int         // token IDs
	Offsets []TokenOffset // character offsets for each token
}

// Tokenizer interface allows one convert test to "tokens" (integer ids) and back.
//
// It also allows mapping of special tokens: tokens with a common semantic (like padding) but that
// may map to different ids (int) for different tokenizers.
type Tokenizer interface {
	Encode(text string) []int
	Decode([]int) string

	// SpecialTokenID returns ID for given special token if registered, or an error if not.
	SpecialTokenID(token SpecialToken) (int, error)
}

// TokenizerWithOffsets extends Tokenizer with offset tracking capability.
// This is useful for token classification tasks (NER, chunking) where you need
// to map token predictions back to character positions in the original text.
type TokenizerWithOffsets interface {
	Tokenizer
	// EncodeWithOffsets returns tokens along with their character offsets in the original text.
	EncodeWithOffsets(text string) EncodingResult
}

// SpecialToken is an enum of commonly used special tokens.
type SpecialToken int

const (
	TokBeginningOfSentence SpecialToken = iota
	TokEndOfSentence
	TokUnknown
	TokPad
	TokMask
	TokClassification
	TokSpecialTokensCount
)

//go:generate enumer -type=SpecialToken -trimprefix=Tok -transform=snake -values -text -json -yaml api.go

// EngineType selects which tokenizer engine a Config builds.
type EngineType string

const (
	EngineBERT EngineType = "bert"
	EngineBPE  EngineType = "bpe"
)

// Config is the facade's recognized configuration (spec §4.11). Zero
// values for the optional fields resolve to the documented defaults at
// construction time; Type, VocabPath (bert) and BPEVocabPath/
// BPEMergesPath (bpe) are required for their respective engine type.
type Config struct {
	Type EngineType

	VocabPath     string // required for bert
	BPEVocabPath  string // required for bpe
	BPEMergesPath string // required for bpe

	DoLowerCase         *bool // default true
	TokenizeCJK         *bool // default true
	EnableBidirectional bool  // default false

	// ModelMaxLength is the default encode length; -1 means unbounded
	// (spec §9 resolves "model_max_length = -1" as this explicit
	// sentinel rather than folding it into a real int maximum). The
	// zero value (nil) means "not set", and Resolve fills in 128.
	ModelMaxLength *int

	MaxParallelism int // default CPU count
	ChunkSize      int // default 128 KiB
}

// Resolved is Config with every optional field defaulted (spec §4.11).
type Resolved struct {
	Type EngineType

	VocabPath     string
	BPEVocabPath  string
	BPEMergesPath string

	DoLowerCase         bool
	TokenizeCJK         bool
	EnableBidirectional bool
	ModelMaxLength      int
	MaxParallelism      int
	ChunkSize           int
}

// Resolve fills in every unset optional field with its documented
// default.
func (c Config) Resolve(numCPU int) Resolved {
	r := Resolved{
		Type:                c.Type,
		VocabPath:           c.VocabPath,
		BPEVocabPath:        c.BPEVocabPath,
		BPEMergesPath:       c.BPEMergesPath,
		DoLowerCase:         true,
		TokenizeCJK:         true,
		EnableBidirectional: c.EnableBidirectional,
		ModelMaxLength:      128,
		MaxParallelism:      numCPU,
		ChunkSize:           128 << 10,
	}
	if c.DoLowerCase != nil {
		r.DoLowerCase = *c.DoLowerCase
	}
	if c.TokenizeCJK != nil {
		r.TokenizeCJK = *c.TokenizeCJK
	}
	if c.ModelMaxLength != nil {
		r.ModelMaxLength = *c.ModelMaxLength
	}
	if c.MaxParallelism > 0 {
		r.MaxParallelism = c.MaxParallelism
	}
	if c.ChunkSize > 0 {
		r.ChunkSize = c.ChunkSize
	}
	return r
}
