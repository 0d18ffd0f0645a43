package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

type simulatorContext struct {
	pins     []planetary.Pin
	colony   *planetary.Colony
	original *planetary.Colony
	result   *planetary.SimulatedColony
	finals   planetary.FinalProducts
	issues   []planetary.ResolveIssue
}

func (sc *simulatorContext) reset() {
	sc.pins = nil
	sc.colony = nil
	sc.original = nil
	sc.result = nil
	sc.finals = nil
	sc.issues = nil
}

func (sc *simulatorContext) ensureColony() error {
	if sc.colony != nil {
		return nil
	}
	colony, err := planetary.NewColony(40161469, shared.MustNewCharacterID(2112625428), "barren", t0, "v1", sc.pins)
	if err != nil {
		return err
	}
	sc.colony = colony
	sc.original = colony.Clone()
	return nil
}

// Given steps

func (sc *simulatorContext) anExtractorPinProducingWithCyclesForHours(pinID, qty int, name string, minutes, hours int) error {
	product, err := typeNamed(name)
	if err != nil {
		return err
	}
	sc.pins = append(sc.pins, planetary.NewExtractorPin(planetary.PinID(pinID), 2848, planetary.ExtractorSpec{
		InstallTime:   t0,
		ExpiryTime:    t0.Add(time.Duration(hours) * time.Hour),
		CycleDuration: time.Duration(minutes) * time.Minute,
		BaseQuantity:  qty,
		ProductType:   product,
	}, planetary.Inventory{}))
	return nil
}

func (sc *simulatorContext) aFactoryPinRunningHolding(pinID int, schematic string, table *godog.Table) error {
	recipe, err := recipeNamed(schematic)
	if err != nil {
		return err
	}
	inv, err := inventoryFromTable(table)
	if err != nil {
		return err
	}
	sc.pins = append(sc.pins, planetary.NewFactoryPin(planetary.PinID(pinID), 2473, planetary.FactorySpec{
		RecipeID: recipe.ID,
		Recipe:   recipe,
		Cycle:    planetary.NotStarted(),
	}, inv))
	return nil
}

func (sc *simulatorContext) aFactoryPinWithUnknownSchematic(pinID, recipeID int) error {
	sc.pins = append(sc.pins, planetary.NewFactoryPin(planetary.PinID(pinID), 2473, planetary.FactorySpec{
		RecipeID: planetary.RecipeID(recipeID),
		Cycle:    planetary.NotStarted(),
	}, planetary.Inventory{}))
	return nil
}

func (sc *simulatorContext) aStoragePinHolding(pinID int, table *godog.Table) error {
	inv, err := inventoryFromTable(table)
	if err != nil {
		return err
	}
	sc.pins = append(sc.pins, planetary.NewStoragePin(planetary.PinID(pinID), 2541, planetary.StorageSpec{Capacity: 12000}, inv))
	return nil
}

func (sc *simulatorContext) anInvalidPinProducing(pinID int, schematic string) error {
	recipe, err := recipeNamed(schematic)
	if err != nil {
		return err
	}
	pin := planetary.NewInvalidPin(planetary.PinID(pinID), 2473, planetary.PinKindFactory, "missing schematic data", planetary.Inventory{})
	pin.Factory = &planetary.FactorySpec{RecipeID: recipe.ID, Recipe: recipe, Cycle: planetary.NotStarted()}
	sc.pins = append(sc.pins, pin)
	return nil
}

// When steps

func (sc *simulatorContext) theColonyIsSimulatedHoursAhead(hours int) error {
	if err := sc.ensureColony(); err != nil {
		return err
	}
	sim := planetary.NewSimulator(planetary.DefaultDecayModel)
	sc.result = sim.Simulate(sc.colony, t0.Add(time.Duration(hours)*time.Hour))
	return nil
}

func (sc *simulatorContext) theColonyIsSimulatedHoursBeforeItsSnapshot(hours int) error {
	return sc.theColonyIsSimulatedHoursAhead(-hours)
}

func (sc *simulatorContext) finalProductsAreResolved() error {
	if err := sc.ensureColony(); err != nil {
		return err
	}
	sc.finals, sc.issues = planetary.ResolveFinalProducts(sc.colony)
	return nil
}

// Then steps

func (sc *simulatorContext) pinHolds(pinID, qty int, name string) error {
	id, err := typeNamed(name)
	if err != nil {
		return err
	}
	pin, ok := sc.result.Colony.Pin(planetary.PinID(pinID))
	if !ok {
		return fmt.Errorf("pin %d not found", pinID)
	}
	return expectInt(fmt.Sprintf("%s in pin %d", name, pinID), qty, pin.Inventory.Quantity(id))
}

func (sc *simulatorContext) pinIs(pinID int, status string) error {
	state, ok := sc.result.State(planetary.PinID(pinID))
	if !ok {
		return fmt.Errorf("no state for pin %d", pinID)
	}
	if string(state.Status) != status {
		return fmt.Errorf("expected pin %d to be %s, got %s", pinID, status, state.Status)
	}
	return nil
}

func (sc *simulatorContext) pinCompletedCycles(pinID, want int) error {
	state, ok := sc.result.State(planetary.PinID(pinID))
	if !ok {
		return fmt.Errorf("no state for pin %d", pinID)
	}
	return expectInt(fmt.Sprintf("cycles completed by pin %d", pinID), want, state.CompletedCycles)
}

func (sc *simulatorContext) theSimulationTimeIsTheSnapshotTime() error {
	if !sc.result.TargetTime.Equal(t0) {
		return fmt.Errorf("expected simulation time %s, got %s", t0, sc.result.TargetTime)
	}
	return nil
}

func (sc *simulatorContext) theSourceColonyIsUnchanged() error {
	for _, before := range sc.original.Pins {
		after, ok := sc.colony.Pin(before.ID)
		if !ok {
			return fmt.Errorf("pin %d disappeared from the source colony", before.ID)
		}
		if !after.Inventory.Equal(before.Inventory) {
			return fmt.Errorf("pin %d inventory changed in the source colony", before.ID)
		}
	}
	return nil
}

func (sc *simulatorContext) theFinalProductsAre(names string) error {
	want, err := typeListFromNames(names)
	if err != nil {
		return err
	}
	if len(want) != len(sc.finals) {
		return fmt.Errorf("expected final products %v, got %v", want, sc.finals)
	}
	for _, id := range want {
		if !sc.finals.Contains(id) {
			return fmt.Errorf("expected %d among final products %v", id, sc.finals)
		}
	}
	return nil
}

func (sc *simulatorContext) thereAreNoFinalProducts() error {
	if len(sc.finals) != 0 {
		return fmt.Errorf("expected no final products, got %v", sc.finals)
	}
	return nil
}

func (sc *simulatorContext) resolutionIssuesAreReported(want int) error {
	return expectInt("resolution issues", want, len(sc.issues))
}

// InitializeSimulatorScenario registers the colony simulation and final product steps
func InitializeSimulatorScenario(ctx *godog.ScenarioContext) {
	sc := &simulatorContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^extractor pin (\d+) producing (\d+) "([^"]*)" per (\d+) minute cycle for (\d+) hours$`, sc.anExtractorPinProducingWithCyclesForHours)
	ctx.Step(`^factory pin (\d+) running the "([^"]*)" schematic holding:$`, sc.aFactoryPinRunningHolding)
	ctx.Step(`^factory pin (\d+) assigned unknown schematic (\d+)$`, sc.aFactoryPinWithUnknownSchematic)
	ctx.Step(`^storage pin (\d+) holding:$`, sc.aStoragePinHolding)
	ctx.Step(`^invalid pin (\d+) running the "([^"]*)" schematic$`, sc.anInvalidPinProducing)

	// When steps
	ctx.Step(`^the colony is simulated (\d+) hours ahead$`, sc.theColonyIsSimulatedHoursAhead)
	ctx.Step(`^the colony is simulated (\d+) hours before its snapshot$`, sc.theColonyIsSimulatedHoursBeforeItsSnapshot)
	ctx.Step(`^final products are resolved$`, sc.finalProductsAreResolved)

	// Then steps
	ctx.Step(`^pin (\d+) holds (\d+) "([^"]*)"$`, sc.pinHolds)
	ctx.Step(`^pin (\d+) is "([^"]*)"$`, sc.pinIs)
	ctx.Step(`^pin (\d+) completed (\d+) cycles?$`, sc.pinCompletedCycles)
	ctx.Step(`^the simulation time is the snapshot time$`, sc.theSimulationTimeIsTheSnapshotTime)
	ctx.Step(`^the source colony is unchanged$`, sc.theSourceColonyIsUnchanged)
	ctx.Step(`^the final products are "([^"]*)"$`, sc.theFinalProductsAre)
	ctx.Step(`^there are no final products$`, sc.thereAreNoFinalProducts)
	ctx.Step(`^(\d+) resolution issues? (?:is|are) reported$`, sc.resolutionIssuesAreReported)
}
