package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// DefaultConcurrency is the number of colony pipelines run at once
const DefaultConcurrency = 6

// ColonyResult is the outcome of one request in an aggregation run.
// Exactly one of Summary and Err is set.
type ColonyResult struct {
	Index   int
	Request ColonyRequest
	Summary *planetary.ColonySummary
	Issues  []planetary.ResolveIssue
	Cached  bool
	Err     error
}

// Available reports whether the colony produced a summary
func (r ColonyResult) Available() bool {
	return r.Err == nil && r.Summary != nil
}

// Aggregator runs colony pipelines for many colonies with a sliding window of
// at most Concurrency in flight. A new request is admitted as soon as any
// running one finishes.
type Aggregator struct {
	pipeline    *ColonyPipeline
	concurrency int
	metrics     AggregatorMetrics
}

// NewAggregator creates an aggregator. A non-positive concurrency uses DefaultConcurrency.
func NewAggregator(pipeline *ColonyPipeline, concurrency int, metrics AggregatorMetrics) *Aggregator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if metrics == nil {
		metrics = noOpMetrics{}
	}
	return &Aggregator{
		pipeline:    pipeline,
		concurrency: concurrency,
		metrics:     metrics,
	}
}

// Concurrency returns the in-flight limit
func (a *Aggregator) Concurrency() int {
	return a.concurrency
}

type colonyJob struct {
	index   int
	request ColonyRequest
}

// Run streams one result per admitted request in completion order. The
// channel is closed once every admitted request has finished. Cancelling ctx
// stops admission of queued requests; in-flight ones finish with the context
// error and leave the caches untouched.
func (a *Aggregator) Run(ctx context.Context, requests []ColonyRequest) <-chan ColonyResult {
	// Buffered so workers never block on a consumer that stopped reading
	results := make(chan ColonyResult, len(requests))
	if len(requests) == 0 {
		close(results)
		return results
	}

	logger := common.LoggerFromContext(ctx)
	numWorkers := a.concurrency
	if numWorkers > len(requests) {
		numWorkers = len(requests)
	}

	// Unbuffered: a request is admitted only when a worker is free to take it
	jobs := make(chan colonyJob)
	go func() {
		defer close(jobs)
		for i, req := range requests {
			select {
			case jobs <- colonyJob{index: i, request: req}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var inFlight int32
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				// Check if cancelled
				if ctx.Err() != nil {
					continue
				}

				a.metrics.SetInFlight(int(atomic.AddInt32(&inFlight, 1)))
				result := a.runOne(ctx, job)
				a.metrics.SetInFlight(int(atomic.AddInt32(&inFlight, -1)))

				switch {
				case result.Err == nil && result.Cached:
					a.metrics.RecordResult(ResultStatusCached)
				case result.Err == nil:
					a.metrics.RecordResult(ResultStatusComputed)
				case errors.Is(result.Err, context.Canceled), errors.Is(result.Err, context.DeadlineExceeded):
					a.metrics.RecordResult(ResultStatusCancelled)
				default:
					a.metrics.RecordResult(ResultStatusFailed)
					logger.Log("WARNING", "Colony unavailable", map[string]interface{}{
						"owner":     job.request.Ref.Owner.Value(),
						"colony_id": int64(job.request.Ref.ColonyID),
						"error":     result.Err.Error(),
					})
				}

				results <- result
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (a *Aggregator) runOne(ctx context.Context, job colonyJob) ColonyResult {
	result := ColonyResult{Index: job.index, Request: job.request}

	outcome, err := a.pipeline.Compute(ctx, job.request)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		result.Err = err
		return result
	}

	result.Summary = outcome.Summary
	result.Issues = outcome.Issues
	result.Cached = outcome.Cached
	return result
}

// Collect drains a result stream and returns the results in request order
func Collect(results <-chan ColonyResult) []ColonyResult {
	var collected []ColonyResult
	for r := range results {
		collected = append(collected, r)
	}
	SortByIndex(collected)
	return collected
}

// SortByIndex orders results by their position in the original request list
func SortByIndex(results []ColonyResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
}
