package services

import (
	"context"
	"errors"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// ColonyRequest asks for the summary of one colony at a target time.
// A zero Target means now.
type ColonyRequest struct {
	Ref          planetary.ColonyRef
	Target       time.Time
	ForceRefresh bool
}

// ColonyOutcome is a computed (or reused) colony summary
type ColonyOutcome struct {
	Summary   *planetary.ColonySummary
	Simulated *planetary.SimulatedColony
	Issues    []planetary.ResolveIssue
	Cached    bool
}

// PipelineOptions tunes result reuse and expiry reporting
type PipelineOptions struct {
	ReuseWindow  time.Duration
	ExpiringSoon time.Duration
}

// ColonyPipeline runs fetch, convert, simulate, resolve and summarize for one colony
type ColonyPipeline struct {
	snapshots planetary.SnapshotProvider
	refs      *ReferenceCache
	converter *SnapshotConverter
	simulator *planetary.Simulator
	results   *ResultCache
	store     SummaryStore
	metrics   AggregatorMetrics
	clock     shared.Clock
	opts      PipelineOptions
}

// NewColonyPipeline creates a pipeline. store and metrics may be nil; clock
// defaults to the real clock.
func NewColonyPipeline(
	snapshots planetary.SnapshotProvider,
	refs *ReferenceCache,
	simulator *planetary.Simulator,
	results *ResultCache,
	store SummaryStore,
	metrics AggregatorMetrics,
	clock shared.Clock,
	opts PipelineOptions,
) *ColonyPipeline {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if metrics == nil {
		metrics = noOpMetrics{}
	}
	return &ColonyPipeline{
		snapshots: snapshots,
		refs:      refs,
		converter: NewSnapshotConverter(),
		simulator: simulator,
		results:   results,
		store:     store,
		metrics:   metrics,
		clock:     clock,
		opts:      opts,
	}
}

// Compute produces the summary of one colony, reusing a cached result for an
// unchanged snapshot. Fetch failures are returned as
// *planetary.SnapshotFetchError. Nothing is cached once ctx is cancelled.
func (p *ColonyPipeline) Compute(ctx context.Context, req ColonyRequest) (*ColonyOutcome, error) {
	return p.compute(ctx, req, true)
}

// ComputeUncached always simulates, so the outcome carries the simulated colony
func (p *ColonyPipeline) ComputeUncached(ctx context.Context, req ColonyRequest) (*ColonyOutcome, error) {
	return p.compute(ctx, req, false)
}

func (p *ColonyPipeline) compute(ctx context.Context, req ColonyRequest, allowReuse bool) (*ColonyOutcome, error) {
	logger := common.LoggerFromContext(ctx)
	target := req.Target
	if target.IsZero() {
		target = p.clock.Now()
	}

	fetchStart := time.Now()
	snapshot, err := p.snapshots.FetchSnapshot(ctx, req.Ref, req.ForceRefresh)
	p.metrics.ObserveFetch(time.Since(fetchStart), err)
	if err != nil {
		var fetchErr *planetary.SnapshotFetchError
		if errors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, planetary.NewSnapshotFetchError(req.Ref.ColonyID, err)
	}

	version := snapshot.Version()
	key := NewResultKey(req.Ref, version)
	if req.ForceRefresh {
		p.results.Invalidate(req.Ref)
	} else if allowReuse {
		if summary, ok := p.results.Get(key, target, p.opts.ReuseWindow); ok {
			p.metrics.RecordCacheLookup(true)
			return &ColonyOutcome{Summary: summary, Cached: true}, nil
		}
		p.metrics.RecordCacheLookup(false)
	}

	refs, err := p.refs.RefsFor(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	colony, err := p.converter.Convert(ctx, snapshot, refs)
	if err != nil {
		return nil, err
	}

	simulated := p.simulator.Simulate(colony, target)
	finals, issues := planetary.ResolveFinalProducts(simulated.Colony)
	for _, issue := range issues {
		logger.Log("WARNING", "Skipping pin in final product resolution", map[string]interface{}{
			"owner":     req.Ref.Owner.Value(),
			"colony_id": int64(req.Ref.ColonyID),
			"pin_id":    int64(issue.PinID),
			"recipe_id": int64(issue.RecipeID),
			"reason":    issue.Reason,
		})
	}

	summary := planetary.BuildSummary(simulated, finals, refs.Types, p.opts.ExpiringSoon)
	computedAt := p.clock.Now()

	if p.results.Put(ctx, key, summary, finals, computedAt) && p.store != nil {
		if err := p.store.Set(ctx, DigestFromSummary(summary, computedAt)); err != nil {
			logger.Log("WARNING", "Failed to store colony digest", map[string]interface{}{
				"colony_id": int64(req.Ref.ColonyID),
				"error":     err.Error(),
			})
		}
	}

	return &ColonyOutcome{Summary: summary, Simulated: simulated, Issues: issues}, nil
}
