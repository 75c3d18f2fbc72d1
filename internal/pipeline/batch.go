package pipeline

import (
	"context"
	"runtime"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// BatchResult pairs a request with its outcome.
type BatchResult struct {
	RequestID string
	Result    *models.PipelineResult
	Err       error
}

// RunBatch scans independent cards on a bounded worker pool. Results keep input order.
func (o *Orchestrator) RunBatch(ctx context.Context, reqs []Request) []BatchResult {
	out := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return out
	}

	workers := o.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}
	pool := NewWorkerPool(workers)
	pool.Start()
	defer pool.Close()

	for i := range reqs {
		i := i
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				out[i] = BatchResult{RequestID: reqs[i].ID, Err: err}
				return
			}
			res, err := o.Run(ctx, reqs[i])
			id := reqs[i].ID
			if res != nil && res.Diagnostics != nil {
				id = res.Diagnostics.RequestID
			}
			out[i] = BatchResult{RequestID: id, Result: res, Err: err}
		})
	}
	pool.Wait()
	return out
}
