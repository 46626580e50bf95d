package chunked

import (
	"runtime"
	"sync"

	"github.com/vocabforge/tokenize/bert"
)

// Executor runs the chunked encode described in spec §4.10: each chunk
// is encoded independently (special tokens suppressed) on a worker
// pool, results are reassembled in input order (not completion order —
// the REDESIGN FLAG corrects the source's worker-completion-order
// defect), then wrapped in a single [CLS]/[SEP] pair and
// truncated/padded.
type Executor struct {
	Engine         *bert.Engine
	ChunkSize      int
	MaxParallelism int
}

// NewExecutor builds an Executor over an already-constructed BERT
// engine. chunkSize and maxParallelism fall back to the spec defaults
// (128 KiB, CPU count) when zero or negative.
func NewExecutor(engine *bert.Engine, chunkSize, maxParallelism int) *Executor {
	if chunkSize <= 0 {
		chunkSize = 128 << 10
	}
	if maxParallelism <= 0 {
		maxParallelism = runtime.NumCPU()
	}
	return &Executor{Engine: engine, ChunkSize: chunkSize, MaxParallelism: maxParallelism}
}

// Encode splits text into chunks, encodes each independently, and
// reassembles them in input order under a single pair of special
// tokens, then applies the same truncation/padding contract as a
// sequential BERT encode (spec §4.10).
func (e *Executor) Encode(text string, paddingMode string, maxLength int) []int {
	data := []byte(text)
	ranges := Boundaries(data, e.ChunkSize)
	if len(ranges) == 0 {
		ranges = [][2]int{{0, 0}}
	}

	chunkIDs := make([][]int, len(ranges))
	sem := make(chan struct{}, e.MaxParallelism)
	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for i, r := range ranges {
		i, r := i, r
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			chunkIDs[i] = e.Engine.EncodeChunk(string(data[r[0]:r[1]]), -1)
		}()
	}
	wg.Wait()

	effective := e.Engine.ResolveMaxLength(maxLength)
	budget := budgetForChunks(effective)

	combined := make([]int, 0, len(data)/4)
	combined = append(combined, e.Engine.ClsID())
	for _, ids := range chunkIDs {
		for _, id := range ids {
			if budget >= 0 && len(combined)-1 >= budget {
				break
			}
			combined = append(combined, id)
		}
	}
	combined = append(combined, e.Engine.SepID())

	if paddingMode == "max_length" && effective > 0 {
		for len(combined) < effective {
			combined = append(combined, e.Engine.PadID())
		}
	}
	return combined
}

func budgetForChunks(effectiveMaxLength int) int {
	if effectiveMaxLength <= 0 {
		return -1
	}
	if effectiveMaxLength <= 1 {
		return 0
	}
	return effectiveMaxLength - 1
}
