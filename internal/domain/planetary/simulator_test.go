package planetary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

func newTestColony(t *testing.T, pins ...planetary.Pin) *planetary.Colony {
	t.Helper()
	colony, err := planetary.NewColony(40161469, shared.MustNewCharacterID(2112625428), "barren", t0, "v1", pins)
	require.NoError(t, err)
	return colony
}

func extractorPin(id planetary.PinID, product planetary.TypeID) planetary.Pin {
	return planetary.NewExtractorPin(id, 2848, planetary.ExtractorSpec{
		InstallTime:   t0,
		ExpiryTime:    t0.Add(36000 * time.Second),
		CycleDuration: time.Hour,
		BaseQuantity:  100,
		ProductType:   product,
	}, planetary.Inventory{})
}

func TestNewColony_RejectsDuplicatePins(t *testing.T) {
	_, err := planetary.NewColony(1, shared.MustNewCharacterID(1), "gas", t0, "v1", []planetary.Pin{
		extractorPin(7, typeAqueous),
		extractorPin(7, typeMicro),
	})

	var dup *planetary.DuplicatePinError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, planetary.PinID(7), dup.PinID)
}

func TestSimulate_ExtractorScenario(t *testing.T) {
	// Arrange
	colony := newTestColony(t, extractorPin(1, typeAqueous))
	sim := planetary.NewSimulator(planetary.DefaultDecayModel)

	// Act
	result := sim.Simulate(colony, t0.Add(10800*time.Second))

	// Assert
	state, ok := result.State(1)
	require.True(t, ok)
	want := planetary.YieldForCycle(100, 0) + planetary.YieldForCycle(100, 1) + planetary.YieldForCycle(100, 2)
	assert.Equal(t, want, state.Produced[typeAqueous])
	assert.Equal(t, 2, state.CycleIndex)
	pin, _ := result.Colony.Pin(1)
	assert.Equal(t, want, pin.Inventory.Quantity(typeAqueous))
}

func TestSimulate_DoesNotMutateInput(t *testing.T) {
	// Arrange
	recipe := mustRecipe(t, 121, time.Hour,
		planetary.ResourceQuantity{Type: typeWater, Quantity: 20},
		planetary.ResourceQuantity{Type: typeAqueous, Quantity: 50})
	factory := planetary.NewFactoryPin(2, 2473, planetary.FactorySpec{RecipeID: 121, Recipe: recipe, Cycle: planetary.NotStarted()},
		planetary.NewInventory(map[planetary.TypeID]int{typeAqueous: 500}))
	colony := newTestColony(t, extractorPin(1, typeAqueous), factory)
	before := colony.Clone()

	// Act
	result := planetary.NewSimulator(planetary.DefaultDecayModel).Simulate(colony, t0.Add(5*time.Hour))

	// Assert
	assert.Equal(t, before, colony)
	simulated, _ := result.Colony.Pin(2)
	original, _ := colony.Pin(2)
	assert.Equal(t, 250, simulated.Inventory.Quantity(typeAqueous))
	assert.Equal(t, 500, original.Inventory.Quantity(typeAqueous))
	assert.Equal(t, planetary.NotStarted(), original.Factory.Cycle)
}

func TestSimulate_Idempotent(t *testing.T) {
	recipe := mustRecipe(t, 121, 30*time.Minute,
		planetary.ResourceQuantity{Type: typeWater, Quantity: 20},
		planetary.ResourceQuantity{Type: typeAqueous, Quantity: 50})
	factory := planetary.NewFactoryPin(2, 2473, planetary.FactorySpec{RecipeID: 121, Recipe: recipe, Cycle: planetary.Running(t0.Add(-10 * time.Minute))},
		planetary.NewInventory(map[planetary.TypeID]int{typeAqueous: 420}))
	storage := planetary.NewStoragePin(3, 2541, planetary.StorageSpec{Capacity: 12000},
		planetary.NewInventory(map[planetary.TypeID]int{typeWater: 90}))
	colony := newTestColony(t, extractorPin(1, typeAqueous), factory, storage)
	sim := planetary.NewSimulator(planetary.DefaultDecayModel)
	target := t0.Add(7*time.Hour + 13*time.Minute)

	first := sim.Simulate(colony, target)
	second := sim.Simulate(colony, target)

	assert.Equal(t, first, second)
}

func TestSimulate_BackwardTargetReturnsSnapshotState(t *testing.T) {
	factory := planetary.NewFactoryPin(2, 2473, planetary.FactorySpec{},
		planetary.NewInventory(map[planetary.TypeID]int{typeAqueous: 5}))
	colony := newTestColony(t, extractorPin(1, typeAqueous), factory)

	result := planetary.NewSimulator(planetary.DefaultDecayModel).Simulate(colony, t0.Add(-48*time.Hour))

	assert.Equal(t, t0, result.TargetTime)
	assert.Equal(t, colony, result.Colony)
	assert.NotSame(t, colony, result.Colony)
}

func TestSimulate_InvalidPinsCarriedInactive(t *testing.T) {
	invalid := planetary.NewInvalidPin(9, 2848, planetary.PinKindExtractor, "install_time: unparsable",
		planetary.NewInventory(map[planetary.TypeID]int{typeAqueous: 12}))
	colony := newTestColony(t, extractorPin(1, typeMicro), invalid)

	result := planetary.NewSimulator(planetary.DefaultDecayModel).Simulate(colony, t0.Add(5*time.Hour))

	state, ok := result.State(9)
	require.True(t, ok)
	assert.Equal(t, planetary.PinStatusInactive, state.Status)
	assert.Equal(t, "install_time: unparsable", state.Invalid)
	pin, _ := result.Colony.Pin(9)
	assert.Equal(t, 12, pin.Inventory.Quantity(typeAqueous))

	healthy, _ := result.State(1)
	assert.Equal(t, planetary.PinStatusActive, healthy.Status)
	assert.Greater(t, healthy.Produced[typeMicro], 0)
}

func TestResolveFinalProducts_ExtractorFeedsFactory(t *testing.T) {
	recipe := mustRecipe(t, 121, time.Hour,
		planetary.ResourceQuantity{Type: typeWater, Quantity: 20},
		planetary.ResourceQuantity{Type: typeAqueous, Quantity: 3000})
	factory := planetary.NewFactoryPin(2, 2473, planetary.FactorySpec{RecipeID: 121, Recipe: recipe}, planetary.Inventory{})
	colony := newTestColony(t, extractorPin(1, typeAqueous), factory)

	finals, issues := planetary.ResolveFinalProducts(colony)

	assert.Equal(t, planetary.FinalProducts{typeWater}, finals)
	assert.Empty(t, issues)
}

func TestResolveFinalProducts_IndependentExtractors(t *testing.T) {
	colony := newTestColony(t, extractorPin(1, typeMicro), extractorPin(2, typeAqueous))

	finals, _ := planetary.ResolveFinalProducts(colony)

	assert.Equal(t, planetary.FinalProducts{typeMicro, typeAqueous}, finals)
}

func TestResolveFinalProducts_SkipsUnresolvedRecipes(t *testing.T) {
	unresolved := planetary.NewFactoryPin(2, 2473, planetary.FactorySpec{RecipeID: 999}, planetary.Inventory{})
	unassigned := planetary.NewFactoryPin(3, 2473, planetary.FactorySpec{}, planetary.Inventory{})
	colony := newTestColony(t, extractorPin(1, typeAqueous), unresolved, unassigned)

	finals, issues := planetary.ResolveFinalProducts(colony)

	assert.Equal(t, planetary.FinalProducts{typeAqueous}, finals)
	require.Len(t, issues, 1)
	assert.Equal(t, planetary.PinID(2), issues[0].PinID)
	assert.Equal(t, planetary.RecipeID(999), issues[0].RecipeID)
}

func TestBuildSummary(t *testing.T) {
	// Arrange
	soon := planetary.NewExtractorPin(1, 2848, planetary.ExtractorSpec{
		InstallTime: t0, ExpiryTime: t0.Add(6 * time.Hour), CycleDuration: time.Hour, BaseQuantity: 10, ProductType: typeAqueous,
	}, planetary.Inventory{})
	later := planetary.NewExtractorPin(2, 2848, planetary.ExtractorSpec{
		InstallTime: t0, ExpiryTime: t0.Add(72 * time.Hour), CycleDuration: time.Hour, BaseQuantity: 10, ProductType: typeMicro,
	}, planetary.Inventory{})
	done := planetary.NewExtractorPin(3, 2848, planetary.ExtractorSpec{
		InstallTime: t0.Add(-48 * time.Hour), ExpiryTime: t0.Add(-time.Hour), CycleDuration: time.Hour, BaseQuantity: 10, ProductType: typeMicro,
	}, planetary.Inventory{})
	storage := planetary.NewStoragePin(4, 2541, planetary.StorageSpec{Capacity: 12000},
		planetary.NewInventory(map[planetary.TypeID]int{typeWater: 10000}))
	colony := newTestColony(t, soon, later, done, storage)
	sim := planetary.NewSimulator(planetary.DefaultDecayModel).Simulate(colony, t0.Add(2*time.Hour))
	finals, _ := planetary.ResolveFinalProducts(sim.Colony)
	types := map[planetary.TypeID]*planetary.ResourceType{
		typeWater:   {ID: typeWater, Name: "Water", Volume: 0.38},
		typeAqueous: {ID: typeAqueous, Name: "Aqueous Liquids", IconRef: "icons/2268", Volume: 0.01},
	}

	// Act
	summary := planetary.BuildSummary(sim, finals, types, 24*time.Hour)

	// Assert
	require.NotNil(t, summary.NearestExpiry)
	assert.Equal(t, t0.Add(6*time.Hour), *summary.NearestExpiry)
	assert.Equal(t, 1, summary.ExpiredExtractors)
	assert.Equal(t, 1, summary.ExpiringSoonExtractors)
	assert.InDelta(t, 3800.0/12000.0, summary.StorageFill[4], 1e-9)
	require.Len(t, summary.FinalProducts, 2)
	assert.Equal(t, typeMicro, summary.FinalProducts[0].TypeID)
	assert.Empty(t, summary.FinalProducts[0].Name)
	assert.Equal(t, planetary.FinalProductView{TypeID: typeAqueous, Name: "Aqueous Liquids", IconRef: "icons/2268"}, summary.FinalProducts[1])
	assert.Len(t, summary.Pins, 4)
}

func TestBuildSummary_AllExpiredUsesMostRecentExpiry(t *testing.T) {
	a := planetary.NewExtractorPin(1, 2848, planetary.ExtractorSpec{
		InstallTime: t0.Add(-10 * time.Hour), ExpiryTime: t0.Add(-5 * time.Hour), CycleDuration: time.Hour, BaseQuantity: 10, ProductType: typeAqueous,
	}, planetary.Inventory{})
	b := planetary.NewExtractorPin(2, 2848, planetary.ExtractorSpec{
		InstallTime: t0.Add(-10 * time.Hour), ExpiryTime: t0.Add(-2 * time.Hour), CycleDuration: time.Hour, BaseQuantity: 10, ProductType: typeAqueous,
	}, planetary.Inventory{})
	colony := newTestColony(t, a, b)
	sim := planetary.NewSimulator(planetary.DefaultDecayModel).Simulate(colony, t0)

	summary := planetary.BuildSummary(sim, nil, nil, time.Hour)

	require.NotNil(t, summary.NearestExpiry)
	assert.Equal(t, t0.Add(-2*time.Hour), *summary.NearestExpiry)
	assert.Equal(t, 2, summary.ExpiredExtractors)
}
