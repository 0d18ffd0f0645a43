package planetary

import "time"

// FactoryProgress is the outcome of advancing a factory over an interval
type FactoryProgress struct {
	Status          PinStatus
	CompletedCycles int
	Consumed        map[TypeID]int
	Produced        map[TypeID]int
	Progress        float64
	NextCompletion  *time.Time
}

// AdvanceFactory replays a factory's cycle state machine from `from` to `to`.
//
// A factory starts a cycle only while its inventory holds every recipe input
// (inclusive threshold). A completed cycle subtracts the inputs, adds the output,
// and immediately tries to chain the next cycle at its completion instant.
// A cycle already running at `from` completes even if the inputs are no longer
// held; its input subtraction is clamped at zero.
//
// Conservation (consumed = input quantity x completed cycles, and likewise for
// the output) holds only for cycles started inside the interval. A cycle running
// at `from` still yields its full output even when its clamped consumption was short.
func AdvanceFactory(spec *FactorySpec, inventory *Inventory, from, to time.Time) FactoryProgress {
	progress := FactoryProgress{
		Consumed: make(map[TypeID]int),
		Produced: make(map[TypeID]int),
	}

	recipe := spec.Recipe
	if recipe == nil {
		spec.Active = false
		progress.Status = PinStatusIdle
		return progress
	}

	cycle := recipe.CycleDuration
	state := spec.Cycle
	cursor := from
	inFlightAtSnapshot := state.IsRunning()

	for {
		if state.IsRunning() {
			start, _ := state.LastStart()
			end := start.Add(cycle)
			if end.After(to) {
				break
			}
			completeCycle(recipe, inventory, inFlightAtSnapshot, &progress)
			inFlightAtSnapshot = false
			state = Completed(start)
			cursor = end
			continue
		}

		if !inventory.Has(recipe.Inputs) {
			break
		}
		state = Running(cursor)
	}

	spec.Cycle = state
	spec.Active = state.IsRunning()
	progress.Progress = state.Progress(cycle, to)

	if state.IsRunning() {
		progress.Status = PinStatusRunning
		start, _ := state.LastStart()
		next := start.Add(cycle)
		progress.NextCompletion = &next
	} else {
		progress.Status = PinStatusStarved
	}

	return progress
}

func completeCycle(recipe *Recipe, inventory *Inventory, clamped bool, progress *FactoryProgress) {
	for _, in := range recipe.Inputs {
		removed := in.Quantity
		if clamped {
			removed = inventory.RemoveClamped(in.Type, in.Quantity)
		} else if err := inventory.Remove(in.Type, in.Quantity); err != nil {
			// Inputs were checked when this cycle started and nothing else draws on them
			removed = inventory.RemoveClamped(in.Type, in.Quantity)
		}
		if removed > 0 {
			progress.Consumed[in.Type] += removed
		}
	}
	_ = inventory.Add(recipe.Output.Type, recipe.Output.Quantity)
	progress.Produced[recipe.Output.Type] += recipe.Output.Quantity
	progress.CompletedCycles++
}
