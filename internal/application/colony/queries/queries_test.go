package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/queries"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/domain/character"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	snapshots  *helpers.MockSnapshotProvider
	characters *helpers.MockCharacterRepository
	simulator  *planetary.Simulator
	pipeline   *services.ColonyPipeline
	aggregator *services.Aggregator
}

func newFixture() *fixture {
	f := &fixture{
		snapshots:  helpers.NewMockSnapshotProvider(),
		characters: helpers.NewMockCharacterRepository(),
		simulator:  planetary.NewSimulator(planetary.DefaultDecayModel),
	}
	f.pipeline = services.NewColonyPipeline(
		f.snapshots,
		services.NewReferenceCache(helpers.NewMockReferenceProvider()),
		f.simulator,
		services.NewResultCache(),
		nil,
		nil,
		shared.NewMockClock(t0.Add(time.Hour)),
		services.PipelineOptions{ReuseWindow: time.Minute, ExpiringSoon: 24 * time.Hour},
	)
	f.aggregator = services.NewAggregator(f.pipeline, 6, nil)
	return f
}

func (f *fixture) addColony(owner, colonyID int64) planetary.ColonyRef {
	return f.snapshots.AddSnapshot(helpers.NewSnapshotBuilder(owner, colonyID, t0).
		WithExtractor(1, helpers.TypeMicroorganisms, 5000, 30*time.Minute, t0, t0.Add(24*time.Hour)).
		Build())
}

func TestGetColonySummary_ReturnsSummary(t *testing.T) {
	// Arrange
	f := newFixture()
	ref := f.addColony(90000001, 40000001)
	handler := queries.NewGetColonySummaryHandler(f.pipeline)

	// Act
	resp, err := handler.Handle(context.Background(), &queries.GetColonySummaryQuery{
		CharacterID: ref.Owner,
		ColonyID:    ref.ColonyID,
	})

	// Assert
	require.NoError(t, err)
	summary := resp.(*queries.GetColonySummaryResponse).Summary
	assert.Equal(t, ref.ColonyID, summary.ColonyID)
	require.Len(t, summary.FinalProducts, 1)
	assert.Equal(t, helpers.TypeMicroorganisms, summary.FinalProducts[0].TypeID)
}

func TestGetColonySummary_ValidatesRequest(t *testing.T) {
	handler := queries.NewGetColonySummaryHandler(newFixture().pipeline)

	_, err := handler.Handle(context.Background(), &queries.GetColonySummaryQuery{ColonyID: 1})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), &queries.SimulateColonyQuery{})
	assert.Error(t, err)
}

func TestGetColonySummary_FetchFailureWrapped(t *testing.T) {
	f := newFixture()
	ref := f.addColony(90000001, 40000001)
	f.snapshots.FailColony(ref, errors.New("esi timeout"))
	handler := queries.NewGetColonySummaryHandler(f.pipeline)

	_, err := handler.Handle(context.Background(), &queries.GetColonySummaryQuery{CharacterID: ref.Owner, ColonyID: ref.ColonyID})

	var fetchErr *planetary.SnapshotFetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestListColonySummaries_AllRegisteredCharacters(t *testing.T) {
	// Arrange
	f := newFixture()
	for _, id := range []int64{90000001, 90000002} {
		require.NoError(t, f.characters.Add(context.Background(), character.NewCharacter(shared.MustNewCharacterID(id), "pilot", "token")))
	}
	f.addColony(90000001, 40000001)
	f.addColony(90000001, 40000002)
	failing := f.addColony(90000002, 40000003)
	f.snapshots.FailColony(failing, errors.New("esi: 503"))

	var streamed []services.ColonyResult
	handler := queries.NewListColonySummariesHandler(f.characters, f.snapshots, f.aggregator)

	// Act
	resp, err := handler.Handle(context.Background(), &queries.ListColonySummariesQuery{
		OnResult: func(r services.ColonyResult) { streamed = append(streamed, r) },
	})

	// Assert
	require.NoError(t, err)
	list := resp.(*queries.ListColonySummariesResponse)
	assert.Len(t, list.Results, 3)
	assert.Len(t, streamed, 3)
	assert.Equal(t, 1, list.Failed)
	assert.NotEmpty(t, list.RunID)
	for i, r := range list.Results {
		assert.Equal(t, i, r.Index)
	}
	assert.False(t, list.Results[2].Available())
}

func TestSimulateColony_IncludesProgramOutput(t *testing.T) {
	f := newFixture()
	ref := f.addColony(90000001, 40000001)
	handler := queries.NewSimulateColonyHandler(f.pipeline, f.simulator)

	resp, err := handler.Handle(context.Background(), &queries.SimulateColonyQuery{CharacterID: ref.Owner, ColonyID: ref.ColonyID})

	require.NoError(t, err)
	sim := resp.(*queries.SimulateColonyResponse)
	require.NotNil(t, sim.Simulated)
	require.Contains(t, sim.ProgramOutputs, planetary.PinID(1))
	assert.Len(t, sim.ProgramOutputs[1], 48)
	assert.Equal(t, 5000, sim.ProgramOutputs[1][0])
	state, ok := sim.Simulated.State(1)
	require.True(t, ok)
	assert.Equal(t, 2, state.CompletedCycles)
}
