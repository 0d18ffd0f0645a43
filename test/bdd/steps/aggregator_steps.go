package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

const aggregatorOwner = 90000001

type aggregatorContext struct {
	snapshots *helpers.MockSnapshotProvider
	refs      *helpers.MockReferenceProvider
	clock     *shared.MockClock
	agg       *services.Aggregator
	requests  []services.ColonyRequest
	results   []services.ColonyResult
}

func (ac *aggregatorContext) reset() {
	ac.snapshots = helpers.NewMockSnapshotProvider()
	ac.refs = helpers.NewMockReferenceProvider()
	ac.clock = shared.NewMockClock(t0.Add(3 * time.Hour))
	ac.agg = nil
	ac.requests = nil
	ac.results = nil
}

// Given steps

func (ac *aggregatorContext) anAggregatorWithConcurrency(n int) error {
	pipeline := services.NewColonyPipeline(
		ac.snapshots,
		services.NewReferenceCache(ac.refs),
		planetary.NewSimulator(planetary.DefaultDecayModel),
		services.NewResultCache(),
		nil,
		nil,
		ac.clock,
		services.PipelineOptions{ReuseWindow: time.Minute, ExpiringSoon: 24 * time.Hour},
	)
	ac.agg = services.NewAggregator(pipeline, n, nil)
	return nil
}

func (ac *aggregatorContext) coloniesWithAWaterChain(n int) error {
	for i := 0; i < n; i++ {
		snapshot := helpers.NewSnapshotBuilder(aggregatorOwner, int64(40000001+i), t0).
			WithExtractor(1, helpers.TypeAqueousLiquids, 6000, time.Hour, t0, t0.Add(48*time.Hour)).
			WithFactory(2, helpers.RecipeWater, time.Time{}, map[planetary.TypeID]int{helpers.TypeAqueousLiquids: 9000}).
			Build()
		ac.requests = append(ac.requests, services.ColonyRequest{Ref: ac.snapshots.AddSnapshot(snapshot)})
	}
	return nil
}

func (ac *aggregatorContext) colonyFailsToFetch(index int) error {
	if index >= len(ac.requests) {
		return fmt.Errorf("no colony at index %d", index)
	}
	ac.snapshots.FailColony(ac.requests[index].Ref, errors.New("esi: 502 bad gateway"))
	return nil
}

func (ac *aggregatorContext) snapshotFetchesAreHeld() error {
	ac.snapshots.Gate = make(chan struct{})
	return nil
}

// When steps

func (ac *aggregatorContext) theColoniesAreAggregated() error {
	if ac.agg == nil {
		return fmt.Errorf("no aggregator configured")
	}
	stream := ac.agg.Run(context.Background(), ac.requests)
	if ac.snapshots.Gate != nil {
		if err := ac.waitForStarted(); err != nil {
			return err
		}
		close(ac.snapshots.Gate)
	}
	ac.results = services.Collect(stream)
	return nil
}

func (ac *aggregatorContext) theColoniesAreAggregatedAgainSecondsLater(seconds int) error {
	ac.clock.Advance(time.Duration(seconds) * time.Second)
	ac.snapshots.Gate = nil
	return ac.theColoniesAreAggregated()
}

func (ac *aggregatorContext) theAggregationIsCancelledOnceFetchesStart() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := ac.agg.Run(ctx, ac.requests)
	if err := ac.waitForStarted(); err != nil {
		return err
	}
	cancel()
	ac.results = services.Collect(stream)
	return nil
}

// waitForStarted blocks until the fetch window has filled
func (ac *aggregatorContext) waitForStarted() error {
	want := len(ac.requests)
	if limit := ac.agg.Concurrency(); limit < want {
		want = limit
	}
	deadline := time.Now().Add(2 * time.Second)
	for ac.snapshots.StartedCount() < want {
		if time.Now().After(deadline) {
			return fmt.Errorf("only %d of %d fetches started", ac.snapshots.StartedCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

// Then steps

func (ac *aggregatorContext) resultsAreReported(want int) error {
	return expectInt("results", want, len(ac.results))
}

func (ac *aggregatorContext) fewerResultsThanColoniesAreReported() error {
	if len(ac.results) >= len(ac.requests) {
		return fmt.Errorf("expected fewer than %d results, got %d", len(ac.requests), len(ac.results))
	}
	return nil
}

func (ac *aggregatorContext) noMoreThanFetchesRanAtOnce(limit int) error {
	if peak := ac.snapshots.PeakInFlight(); peak > limit {
		return fmt.Errorf("expected at most %d concurrent fetches, saw %d", limit, peak)
	}
	return nil
}

func (ac *aggregatorContext) everyColonyHasASummary() error {
	for _, r := range ac.results {
		if !r.Available() {
			return fmt.Errorf("colony %d has no summary: %v", r.Index, r.Err)
		}
	}
	return nil
}

func (ac *aggregatorContext) colonyReportsAFetchError(index int) error {
	for _, r := range ac.results {
		if r.Index != index {
			continue
		}
		var fetchErr *planetary.SnapshotFetchError
		if !errors.As(r.Err, &fetchErr) {
			return fmt.Errorf("expected fetch error for colony %d, got %v", index, r.Err)
		}
		return nil
	}
	return fmt.Errorf("no result for colony %d", index)
}

func (ac *aggregatorContext) everyOtherColonyHasASummary(index int) error {
	for _, r := range ac.results {
		if r.Index == index {
			continue
		}
		if !r.Available() {
			return fmt.Errorf("colony %d has no summary: %v", r.Index, r.Err)
		}
	}
	return nil
}

func (ac *aggregatorContext) everyResultIsReusedFromCache() error {
	for _, r := range ac.results {
		if !r.Cached {
			return fmt.Errorf("colony %d was recomputed", r.Index)
		}
	}
	return nil
}

func (ac *aggregatorContext) everyResultWasCancelled() error {
	for _, r := range ac.results {
		if !errors.Is(r.Err, context.Canceled) {
			return fmt.Errorf("colony %d: expected cancellation, got %v", r.Index, r.Err)
		}
	}
	return nil
}

func (ac *aggregatorContext) theFinalProductOfEveryColonyIs(name string) error {
	id, err := typeNamed(name)
	if err != nil {
		return err
	}
	for _, r := range ac.results {
		if r.Summary == nil {
			return fmt.Errorf("colony %d has no summary", r.Index)
		}
		if len(r.Summary.FinalProducts) != 1 || r.Summary.FinalProducts[0].TypeID != id {
			return fmt.Errorf("colony %d: expected final product %s, got %v", r.Index, name, r.Summary.FinalProducts)
		}
	}
	return nil
}

// InitializeAggregatorScenario registers the bounded-concurrency aggregation steps
func InitializeAggregatorScenario(ctx *godog.ScenarioContext) {
	ac := &aggregatorContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		ac.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an aggregator with concurrency (\d+)$`, ac.anAggregatorWithConcurrency)
	ctx.Step(`^(\d+) colonies each running a water chain$`, ac.coloniesWithAWaterChain)
	ctx.Step(`^colony (\d+) fails to fetch$`, ac.colonyFailsToFetch)
	ctx.Step(`^snapshot fetches are held until the window fills$`, ac.snapshotFetchesAreHeld)

	// When steps
	ctx.Step(`^the colonies are aggregated$`, ac.theColoniesAreAggregated)
	ctx.Step(`^the colonies are aggregated again (\d+) seconds later$`, ac.theColoniesAreAggregatedAgainSecondsLater)
	ctx.Step(`^the aggregation is cancelled once fetches start$`, ac.theAggregationIsCancelledOnceFetchesStart)

	// Then steps
	ctx.Step(`^(\d+) results are reported$`, ac.resultsAreReported)
	ctx.Step(`^fewer results than colonies are reported$`, ac.fewerResultsThanColoniesAreReported)
	ctx.Step(`^no more than (\d+) fetches ran at once$`, ac.noMoreThanFetchesRanAtOnce)
	ctx.Step(`^every colony has a summary$`, ac.everyColonyHasASummary)
	ctx.Step(`^colony (\d+) reports a fetch error$`, ac.colonyReportsAFetchError)
	ctx.Step(`^every colony other than (\d+) has a summary$`, ac.everyOtherColonyHasASummary)
	ctx.Step(`^every result is reused from cache$`, ac.everyResultIsReusedFromCache)
	ctx.Step(`^every reported result was cancelled$`, ac.everyResultWasCancelled)
	ctx.Step(`^the final product of every colony is "([^"]*)"$`, ac.theFinalProductOfEveryColonyIs)
}
