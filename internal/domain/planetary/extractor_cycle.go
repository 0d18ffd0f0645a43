package planetary

import "time"

// ExtractorProgress is the outcome of advancing an extractor over an interval
type ExtractorProgress struct {
	Status            PinStatus
	CycleIndex        int
	CurrentCycleYield int
	CompletedCycles   int
	Extracted         int
	CycleProgress     float64
	TimeRemaining     time.Duration
}

// AdvanceExtractor accumulates the yield of every cycle completed in (from, to]
// into the extractor's own inventory. Partial cycles contribute nothing.
func AdvanceExtractor(spec ExtractorSpec, inventory *Inventory, from, to time.Time, model DecayModel) ExtractorProgress {
	doneAtFrom := completedCycles(spec.InstallTime, spec.ExpiryTime, spec.CycleDuration, from)
	doneAtTo := completedCycles(spec.InstallTime, spec.ExpiryTime, spec.CycleDuration, to)

	progress := ExtractorProgress{
		Status:     extractorStatus(spec, to),
		CycleIndex: CurrentCycleIndex(spec.InstallTime, spec.ExpiryTime, spec.CycleDuration, to),
	}

	if doneAtTo > doneAtFrom {
		progress.CompletedCycles = doneAtTo - doneAtFrom
		progress.Extracted = model.CumulativeYield(spec.BaseQuantity, doneAtFrom, doneAtTo)
		if spec.ProductType > 0 {
			// Extracted amounts are never negative, Add cannot fail here
			_ = inventory.Add(spec.ProductType, progress.Extracted)
		}
	}

	if progress.CycleIndex >= 0 {
		progress.CurrentCycleYield = model.YieldForCycle(spec.BaseQuantity, progress.CycleIndex)
	}

	if progress.Status == PinStatusActive {
		cycleStart := spec.InstallTime.Add(time.Duration(progress.CycleIndex) * spec.CycleDuration)
		progress.CycleProgress = Running(cycleStart).Progress(spec.CycleDuration, to)
		progress.TimeRemaining = spec.ExpiryTime.Sub(to)
	}

	return progress
}

func extractorStatus(spec ExtractorSpec, now time.Time) PinStatus {
	switch {
	case now.Before(spec.InstallTime):
		return PinStatusPending
	case spec.IsActive(now):
		return PinStatusActive
	default:
		return PinStatusExpired
	}
}
