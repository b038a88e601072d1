package scenario

import (
	"context"
	"sync"
	"time"

	"agenttrust/internal/gametheory"
)

// RunConfig configures parallel scenario evaluation.
type RunConfig struct {
	WorkerCount    int // number of concurrent workers
	ProgressReport int // report progress every N scenarios (0 = no reporting)
	Progress       func(done, total int)
}

// DefaultRunConfig returns defaults sized for batch sweeps.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		WorkerCount:    8,
		ProgressReport: 0,
	}
}

// Evaluation pairs a scenario record with its dominance proof.
type Evaluation struct {
	Record Record
	Proof  gametheory.HonestyProof
}

// RunResult contains evaluated scenarios and aggregate counts.
type RunResult struct {
	Evaluations   []Evaluation // same order as the input records
	DominantCount int
	Failed        map[string]error // scenario name -> evaluation error
	Duration      time.Duration
}

// EvaluateParallel proves every scenario concurrently with a worker pool.
// Each evaluation is pure and owns its inputs, so workers need no
// coordination beyond the queue; results land at their input index.
func EvaluateParallel(ctx context.Context, records []Record, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}

	queue := make(chan int, len(records))
	for i := range records {
		queue <- i
	}
	close(queue)

	evaluations := make([]Evaluation, len(records))
	errs := make([]error, len(records))

	var progressMu sync.Mutex
	var processed int

	var wg sync.WaitGroup
	for w := 0; w < config.WorkerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range queue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				proof, err := gametheory.ProveHonesty(records[i].Params())
				evaluations[i] = Evaluation{Record: records[i], Proof: proof}
				errs[i] = err

				if config.ProgressReport > 0 && config.Progress != nil {
					progressMu.Lock()
					processed++
					if processed%config.ProgressReport == 0 {
						config.Progress(processed, len(records))
					}
					progressMu.Unlock()
				}
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &RunResult{
		Evaluations: evaluations,
		Failed:      make(map[string]error),
		Duration:    time.Since(startTime),
	}
	for i, err := range errs {
		if err != nil {
			result.Failed[records[i].Name] = err
			continue
		}
		if evaluations[i].Proof.IsDominantStrategy {
			result.DominantCount++
		}
	}

	return result, nil
}
