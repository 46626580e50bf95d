package chunked

import (
	"bufio"
	"context"
	"io"
	"runtime"
	"sync"

	"k8s.io/klog/v2"

	"github.com/vocabforge/tokenize/bert"
)

// chunkJob is a unit of work published by the producer: the raw bytes
// of one chunk and its position in the input, used by the collector to
// reassemble results in order regardless of which worker finishes it
// first (spec §4.10 "Streaming variant").
type chunkJob struct {
	index int
	data  []byte
}

// chunkResult pairs a chunk's index with its encoded ids.
type chunkResult struct {
	index int
	ids   []int
}

// StreamExecutor runs the producer/worker-pool/collector pipeline from
// spec §4.10: a producer reads chunks from r and publishes them on an
// ordered channel; workers consume, encode, and publish (index, ids) on
// a second channel; a collector reassembles by index. Every stage
// shares ctx, so cancelling it halts the producer, every worker, and
// the collector before they start their next unit of work.
type StreamExecutor struct {
	Engine         *bert.Engine
	ChunkSize      int
	MaxParallelism int
}

// NewStreamExecutor mirrors NewExecutor's defaulting rules.
func NewStreamExecutor(engine *bert.Engine, chunkSize, maxParallelism int) *StreamExecutor {
	if chunkSize <= 0 {
		chunkSize = 128 << 10
	}
	if maxParallelism <= 0 {
		maxParallelism = runtime.NumCPU()
	}
	return &StreamExecutor{Engine: engine, ChunkSize: chunkSize, MaxParallelism: maxParallelism}
}

// Run streams chunks of r through the worker pool and returns the
// combined, input-ordered ids wrapped in [CLS]/[SEP] and
// truncated/padded per the sequential contract. On cancellation or
// producer/read error, it returns a nil slice and the error; partial
// results from a cancelled run are never returned (spec §7 "Policy").
func (se *StreamExecutor) Run(ctx context.Context, r io.Reader, paddingMode string, maxLength int) ([]int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan chunkJob, se.MaxParallelism)
	results := make(chan chunkResult, se.MaxParallelism)

	var produceErr error
	var producerWG sync.WaitGroup
	producerWG.Add(1)
	go func() {
		defer producerWG.Done()
		defer close(jobs)
		produceErr = se.produce(ctx, r, jobs)
	}()

	var workersWG sync.WaitGroup
	workersWG.Add(se.MaxParallelism)
	for w := 0; w < se.MaxParallelism; w++ {
		go func() {
			defer workersWG.Done()
			se.work(ctx, jobs, results)
		}()
	}

	go func() {
		workersWG.Wait()
		close(results)
	}()

	collected := map[int][]int{}
	maxIndex := -1
collect:
	for {
		select {
		case res, ok := <-results:
			if !ok {
				break collect
			}
			collected[res.index] = res.ids
			if res.index > maxIndex {
				maxIndex = res.index
			}
		case <-ctx.Done():
			klog.V(2).Infof("chunked: streaming run cancelled after %d chunks collected", len(collected))
			return nil, ctx.Err()
		}
	}

	producerWG.Wait()
	if produceErr != nil {
		return nil, produceErr
	}
	if ctx.Err() != nil {
		klog.V(2).Infof("chunked: streaming run cancelled after producer finished, %d chunks collected", len(collected))
		return nil, ctx.Err()
	}
	klog.V(3).Infof("chunked: streaming run collected %d chunks across %d workers", len(collected), se.MaxParallelism)

	effective := se.Engine.ResolveMaxLength(maxLength)
	budget := budgetForChunks(effective)
	combined := make([]int, 0, len(collected)*16)
	combined = append(combined, se.Engine.ClsID())
	for i := 0; i <= maxIndex; i++ {
		for _, id := range collected[i] {
			if budget >= 0 && len(combined)-1 >= budget {
				break
			}
			combined = append(combined, id)
		}
	}
	combined = append(combined, se.Engine.SepID())

	if paddingMode == "max_length" && effective > 0 {
		for len(combined) < effective {
			combined = append(combined, se.Engine.PadID())
		}
	}
	return combined, nil
}

// produce reads r in ChunkSize-aligned, boundary-aware pieces and
// publishes them on jobs in order, suspending when jobs is full (the
// channel capacity bounds back-pressure) and aborting promptly if ctx
// is cancelled before starting the next chunk.
func (se *StreamExecutor) produce(ctx context.Context, r io.Reader, jobs chan<- chunkJob) error {
	buf := bufio.NewReaderSize(r, se.ChunkSize*2)
	index := 0
	var pending []byte
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		chunk := make([]byte, se.ChunkSize)
		n, err := io.ReadFull(buf, chunk)
		chunk = chunk[:n]
		pending = append(pending, chunk...)
		atEOF := err == io.EOF || err == io.ErrUnexpectedEOF
		if err != nil && !atEOF {
			return err
		}
		if atEOF {
			if len(pending) > 0 {
				select {
				case jobs <- chunkJob{index: index, data: pending}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		}

		ranges := Boundaries(pending, se.ChunkSize)
		if len(ranges) < 2 {
			continue
		}
		// Publish every complete range except the last (it may still
		// grow as more bytes arrive), carrying its remainder forward.
		for _, rg := range ranges[:len(ranges)-1] {
			select {
			case jobs <- chunkJob{index: index, data: pending[rg[0]:rg[1]]}:
				index++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		last := ranges[len(ranges)-1]
		pending = append([]byte{}, pending[last[0]:last[1]]...)
	}
}

// work consumes jobs, encodes each chunk independently with special
// tokens suppressed, and publishes the (index, ids) result, suspending
// on an empty input queue and on a full output queue.
func (se *StreamExecutor) work(ctx context.Context, jobs <-chan chunkJob, results chan<- chunkResult) {
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			ids := se.Engine.EncodeChunk(string(job.data), -1)
			select {
			case results <- chunkResult{index: job.index, ids: ids}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
