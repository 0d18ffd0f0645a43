package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

type yieldContext struct {
	model  planetary.DecayModel
	output []int
}

func (yc *yieldContext) reset() {
	yc.model = planetary.DefaultDecayModel
	yc.output = nil
}

// Given steps

func (yc *yieldContext) aDecayModelWithFactorAndFloor(factor float64, floor int) error {
	yc.model = planetary.DecayModel{DecayFactor: factor, Floor: floor}
	return nil
}

func (yc *yieldContext) anExtractorProgram(hours, minutes, base int) error {
	yc.output = yc.model.ProgramOutput(planetary.ExtractorSpec{
		InstallTime:   t0,
		ExpiryTime:    t0.Add(time.Duration(hours) * time.Hour),
		CycleDuration: time.Duration(minutes) * time.Minute,
		BaseQuantity:  base,
	})
	return nil
}

// Then steps

func (yc *yieldContext) cycleOfAProgramWithBaseYields(cycle, base, want int) error {
	return expectInt(fmt.Sprintf("yield of cycle %d for base %d", cycle, base), want, yc.model.YieldForCycle(base, cycle))
}

func (yc *yieldContext) theProgramHasCycles(want int) error {
	return expectInt("program length", want, len(yc.output))
}

func (yc *yieldContext) theProgramYieldNeverIncreases() error {
	for i := 1; i < len(yc.output); i++ {
		if yc.output[i] > yc.output[i-1] {
			return fmt.Errorf("yield increased from %d to %d at cycle %d", yc.output[i-1], yc.output[i], i)
		}
	}
	return nil
}

func (yc *yieldContext) theProgramYieldNeverDropsBelow(floor int) error {
	for i, y := range yc.output {
		if y < floor {
			return fmt.Errorf("cycle %d yields %d, below floor %d", i, y, floor)
		}
	}
	return nil
}

func (yc *yieldContext) theProgramTotalIs(want int) error {
	total := 0
	for _, y := range yc.output {
		total += y
	}
	return expectInt("program total", want, total)
}

// InitializeYieldScenario registers the extractor yield model steps
func InitializeYieldScenario(ctx *godog.ScenarioContext) {
	yc := &yieldContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		yc.reset()
		return ctx, nil
	})

	ctx.Step(`^a decay model with factor ([\d.]+) and floor (\d+)$`, yc.aDecayModelWithFactorAndFloor)
	ctx.Step(`^an extractor program of (\d+) hours with (\d+) minute cycles and base (\d+)$`, yc.anExtractorProgram)

	ctx.Step(`^cycle (\d+) of a program with base (\d+) yields (\d+)$`, yc.cycleOfAProgramWithBaseYields)
	ctx.Step(`^the program has (\d+) cycles$`, yc.theProgramHasCycles)
	ctx.Step(`^the program yield never increases$`, yc.theProgramYieldNeverIncreases)
	ctx.Step(`^the program yield never drops below (\d+)$`, yc.theProgramYieldNeverDropsBelow)
	ctx.Step(`^the program total is (\d+)$`, yc.theProgramTotalIs)
}
