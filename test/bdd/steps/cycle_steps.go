package steps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

type cycleContext struct {
	recipe    *planetary.Recipe
	factory   *planetary.FactorySpec
	extractor planetary.ExtractorSpec
	inventory planetary.Inventory

	factoryProgress   planetary.FactoryProgress
	extractorProgress planetary.ExtractorProgress
}

func (cc *cycleContext) reset() {
	cc.recipe = nil
	cc.factory = nil
	cc.extractor = planetary.ExtractorSpec{}
	cc.inventory = planetary.Inventory{}
	cc.factoryProgress = planetary.FactoryProgress{}
	cc.extractorProgress = planetary.ExtractorProgress{}
}

// Given steps

func (cc *cycleContext) aSchematicProducingEveryMinutesFrom(qty int, name string, minutes int, inputs *godog.Table) error {
	output, err := typeNamed(name)
	if err != nil {
		return err
	}
	quantities, err := quantitiesFromTable(inputs)
	if err != nil {
		return err
	}
	cc.recipe, err = planetary.NewRecipe(1, name, planetary.ResourceQuantity{Type: output, Quantity: qty},
		time.Duration(minutes)*time.Minute, quantities)
	return err
}

func (cc *cycleContext) aFactoryThatHasNotStarted() error {
	cc.factory = &planetary.FactorySpec{RecipeID: 1, Recipe: cc.recipe, Cycle: planetary.NotStarted()}
	return nil
}

func (cc *cycleContext) aFactoryRunningSinceMinutesAgo(minutes int) error {
	cc.factory = &planetary.FactorySpec{
		RecipeID: 1,
		Recipe:   cc.recipe,
		Cycle:    planetary.Running(t0.Add(-time.Duration(minutes) * time.Minute)),
		Active:   true,
	}
	return nil
}

func (cc *cycleContext) aFactoryWithNoSchematic() error {
	cc.factory = &planetary.FactorySpec{Cycle: planetary.NotStarted()}
	return nil
}

func (cc *cycleContext) theFactoryHolds(table *godog.Table) error {
	inv, err := inventoryFromTable(table)
	if err != nil {
		return err
	}
	cc.inventory = inv
	return nil
}

func (cc *cycleContext) anExtractorInstalledFor(qty int, name string, minutes, hours int) error {
	product, err := typeNamed(name)
	if err != nil {
		return err
	}
	cc.extractor = planetary.ExtractorSpec{
		InstallTime:   t0,
		ExpiryTime:    t0.Add(time.Duration(hours) * time.Hour),
		CycleDuration: time.Duration(minutes) * time.Minute,
		BaseQuantity:  qty,
		ProductType:   product,
	}
	return nil
}

// When steps

func (cc *cycleContext) theFactoryAdvances(amount int, unit string) error {
	if cc.factory == nil {
		return fmt.Errorf("no factory defined")
	}
	d := time.Duration(amount) * time.Minute
	if unit == "hours" {
		d = time.Duration(amount) * time.Hour
	}
	cc.factoryProgress = planetary.AdvanceFactory(cc.factory, &cc.inventory, t0, t0.Add(d))
	return nil
}

func (cc *cycleContext) theExtractorAdvancesHours(hours int) error {
	return cc.theExtractorAdvancesFromMinutesToMinutes(0, hours*60)
}

func (cc *cycleContext) theExtractorAdvancesFromMinutesToMinutes(from, to int) error {
	cc.extractorProgress = planetary.AdvanceExtractor(cc.extractor, &cc.inventory,
		t0.Add(time.Duration(from)*time.Minute), t0.Add(time.Duration(to)*time.Minute), planetary.DefaultDecayModel)
	return nil
}

// Then steps

func (cc *cycleContext) theFactoryCompletesCycles(want int) error {
	return expectInt("completed factory cycles", want, cc.factoryProgress.CompletedCycles)
}

func (cc *cycleContext) theFactoryStatusIs(want string) error {
	if string(cc.factoryProgress.Status) != want {
		return fmt.Errorf("expected factory status %s, got %s", want, cc.factoryProgress.Status)
	}
	return nil
}

func (cc *cycleContext) thePinHolds(qty int, name string) error {
	id, err := typeNamed(name)
	if err != nil {
		return err
	}
	return expectInt(name+" held", qty, cc.inventory.Quantity(id))
}

func (cc *cycleContext) theFactoryConsumed(qty int, name string) error {
	id, err := typeNamed(name)
	if err != nil {
		return err
	}
	return expectInt(name+" consumed", qty, cc.factoryProgress.Consumed[id])
}

func (cc *cycleContext) theFactoryProgressIs(want string) error {
	expected, err := strconv.ParseFloat(want, 64)
	if err != nil {
		return err
	}
	if cc.factoryProgress.Progress != expected {
		return fmt.Errorf("expected progress %v, got %v", expected, cc.factoryProgress.Progress)
	}
	return nil
}

func (cc *cycleContext) theNextCompletionIsMinutesAfterTheStart(minutes int) error {
	next := cc.factoryProgress.NextCompletion
	if next == nil {
		return fmt.Errorf("expected a next completion, got none")
	}
	if want := t0.Add(time.Duration(minutes) * time.Minute); !next.Equal(want) {
		return fmt.Errorf("expected next completion %s, got %s", want, next)
	}
	return nil
}

func (cc *cycleContext) theExtractorExtracted(qty int, name string) error {
	if err := expectInt("extracted amount", qty, cc.extractorProgress.Extracted); err != nil {
		return err
	}
	return cc.thePinHolds(qty, name)
}

func (cc *cycleContext) theExtractorCompletedCycles(want int) error {
	return expectInt("completed extractor cycles", want, cc.extractorProgress.CompletedCycles)
}

func (cc *cycleContext) theExtractorStatusIs(want string) error {
	if string(cc.extractorProgress.Status) != want {
		return fmt.Errorf("expected extractor status %s, got %s", want, cc.extractorProgress.Status)
	}
	return nil
}

func (cc *cycleContext) theExtractorIsOnCycle(want int) error {
	return expectInt("current cycle index", want, cc.extractorProgress.CycleIndex)
}

// InitializeCycleScenario registers the factory and extractor cycle steps
func InitializeCycleScenario(ctx *godog.ScenarioContext) {
	cc := &cycleContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a schematic producing (\d+) "([^"]*)" every (\d+) minutes from:$`, cc.aSchematicProducingEveryMinutesFrom)
	ctx.Step(`^a factory with that schematic that has not started$`, cc.aFactoryThatHasNotStarted)
	ctx.Step(`^a factory with that schematic running since (\d+) minutes ago$`, cc.aFactoryRunningSinceMinutesAgo)
	ctx.Step(`^a factory with no schematic$`, cc.aFactoryWithNoSchematic)
	ctx.Step(`^the (?:factory|extractor) holds:$`, cc.theFactoryHolds)
	ctx.Step(`^an extractor of (\d+) "([^"]*)" per cycle with (\d+) minute cycles installed for (\d+) hours$`, cc.anExtractorInstalledFor)

	// When steps
	ctx.Step(`^the factory advances (\d+) (minutes|hours)$`, cc.theFactoryAdvances)
	ctx.Step(`^the extractor advances (\d+) hours$`, cc.theExtractorAdvancesHours)
	ctx.Step(`^the extractor advances from minute (\d+) to minute (\d+)$`, cc.theExtractorAdvancesFromMinutesToMinutes)

	// Then steps
	ctx.Step(`^the factory completes (\d+) cycles?$`, cc.theFactoryCompletesCycles)
	ctx.Step(`^the factory status is "([^"]*)"$`, cc.theFactoryStatusIs)
	ctx.Step(`^the (?:factory|extractor) holds (\d+) "([^"]*)"$`, cc.thePinHolds)
	ctx.Step(`^the factory consumed (\d+) "([^"]*)"$`, cc.theFactoryConsumed)
	ctx.Step(`^the factory progress is ([\d.]+)$`, cc.theFactoryProgressIs)
	ctx.Step(`^the next completion is (\d+) minutes after the start$`, cc.theNextCompletionIsMinutesAfterTheStart)
	ctx.Step(`^the extractor extracted (\d+) "([^"]*)"$`, cc.theExtractorExtracted)
	ctx.Step(`^the extractor completed (\d+) cycles?$`, cc.theExtractorCompletedCycles)
	ctx.Step(`^the extractor status is "([^"]*)"$`, cc.theExtractorStatusIs)
	ctx.Step(`^the extractor is on cycle (\d+)$`, cc.theExtractorIsOnCycle)
}
