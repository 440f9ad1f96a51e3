package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/mixtape-cli/mixtape/internal/shared"
	"golang.org/x/time/rate"
)

// BulkOpts contains configuration for bulk playlist builds.
type BulkOpts struct {
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Build starts per second (default: 1)
}

// BuildOutcome records the result of one build within a bulk run.
type BuildOutcome struct {
	RequestID string
	Name      string
	Success   bool
	Result    *BuildResult
	Error     error
}

// BulkResult summarizes a bulk build run.
type BulkResult struct {
	TotalRequests    int
	SuccessfulBuilds int
	FailedBuilds     int
	Outcomes         []BuildOutcome
}

type buildJob struct {
	index int
	req   BuildRequest
}

// BuildAll runs multiple playlist builds concurrently with rate limiting and
// progress tracking.
//
// A worker pool drains the request list; the rate limiter paces build starts
// so bulk runs do not stack their own request bursts on top of the catalog
// client's retry traffic. Individual build failures are recorded, never
// fatal.
func (e *Engine) BuildAll(ctx context.Context, requests []BuildRequest, opts BulkOpts, progress chan<- ProgressUpdate) (*BulkResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.0
	}

	result := &BulkResult{
		TotalRequests: len(requests),
		Outcomes:      make([]BuildOutcome, 0, len(requests)),
	}
	if len(requests) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan buildJob, len(requests))
	outcomes := make(chan BuildOutcome, len(requests))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.buildWorker(ctx, &wg, limiter, jobs, outcomes)
	}

	go func() {
		for i, req := range requests {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}
			jobs <- buildJob{index: i, req: req}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	completed := 0
	for outcome := range outcomes {
		completed++
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Success {
			result.SuccessfulBuilds++
		} else {
			result.FailedBuilds++
		}
		e.sendProgress(progress, bulkUpdate(completed, len(requests), outcome.Name, outcome.Error))
	}

	return result, nil
}

// buildWorker is a worker goroutine that runs builds from the jobs channel.
func (e *Engine) buildWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan buildJob,
	outcomes chan<- BuildOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		name := playlistName(job.req)
		res, err := e.Build(ctx, job.req, nil)

		outcome := BuildOutcome{
			RequestID: job.req.RequestID,
			Name:      name,
			Success:   err == nil,
			Result:    res,
			Error:     err,
		}
		if res != nil {
			outcome.RequestID = res.RequestID
		}
		outcomes <- outcome
	}
}
