package planetary

import (
	"math"
	"time"
)

const (
	// DefaultDecayFactor is the fractional yield loss applied per elapsed cycle
	DefaultDecayFactor = 0.012
	// DefaultYieldFloor is the minimum yield of any cycle of a running program
	DefaultYieldFloor = 1
)

// DecayModel computes extraction yield per cycle.
//
// yield(i) = max(floor, floor(base / (1 + DecayFactor*i)))
//
// Cycle 0 yields exactly base. Yield never increases with i and never drops
// below the floor (itself capped at base) while base is positive.
type DecayModel struct {
	DecayFactor float64
	Floor       int
}

// DefaultDecayModel is the decay curve used when none is configured
var DefaultDecayModel = DecayModel{DecayFactor: DefaultDecayFactor, Floor: DefaultYieldFloor}

// YieldForCycle returns the yield of one cycle using the default model
func YieldForCycle(base, cycleIndex int) int {
	return DefaultDecayModel.YieldForCycle(base, cycleIndex)
}

// YieldForCycle returns the quantity produced by cycle cycleIndex of a program
func (m DecayModel) YieldForCycle(base, cycleIndex int) int {
	if base <= 0 {
		return 0
	}
	if cycleIndex <= 0 {
		return base
	}

	decay := m.DecayFactor
	if decay < 0 {
		decay = 0
	}
	yield := int(math.Floor(float64(base) / (1 + decay*float64(cycleIndex))))

	floor := m.Floor
	if floor < 1 {
		floor = 1
	}
	if floor > base {
		floor = base
	}
	if yield < floor {
		return floor
	}
	return yield
}

// CumulativeYield sums the yields of cycles in [fromCycle, toCycle)
func (m DecayModel) CumulativeYield(base, fromCycle, toCycle int) int {
	if fromCycle < 0 {
		fromCycle = 0
	}
	total := 0
	for i := fromCycle; i < toCycle; i++ {
		total += m.YieldForCycle(base, i)
	}
	return total
}

// ProgramOutput returns the yield of every cycle of a program, for charting
func (m DecayModel) ProgramOutput(spec ExtractorSpec) []int {
	cycles := MaxCycles(spec.InstallTime, spec.ExpiryTime, spec.CycleDuration)
	output := make([]int, cycles)
	for i := range output {
		output[i] = m.YieldForCycle(spec.BaseQuantity, i)
	}
	return output
}

// MaxCycles returns the number of whole cycles that fit in a program
func MaxCycles(install, expiry time.Time, cycle time.Duration) int {
	if cycle <= 0 || !expiry.After(install) {
		return 0
	}
	return int(expiry.Sub(install) / cycle)
}

// CurrentCycleIndex returns the index of the cycle in progress at now.
//
// It is -1 before install (and for programs with no whole cycle). A cycle whose
// end coincides with now is still the current one; once now reaches expiry the
// index stays on the last cycle.
//
// This departs from a plain floor(elapsed/cycle), which would already report
// the next cycle at an exact boundary: three whole cycles after install the
// index is 2, not 3. The boundary case follows the cycle just completed.
func CurrentCycleIndex(install, expiry time.Time, cycle time.Duration, now time.Time) int {
	if now.Before(install) {
		return -1
	}
	maxCycles := MaxCycles(install, expiry, cycle)
	if maxCycles == 0 {
		return -1
	}

	end := now
	if end.After(expiry) {
		end = expiry
	}
	elapsed := end.Sub(install)

	index := 0
	if elapsed > 0 {
		index = int((elapsed - 1) / cycle)
	}
	if index > maxCycles-1 {
		index = maxCycles - 1
	}
	return index
}

// completedCycles returns how many cycles of a program finished by t
func completedCycles(install, expiry time.Time, cycle time.Duration, t time.Time) int {
	maxCycles := MaxCycles(install, expiry, cycle)
	if maxCycles == 0 || !t.After(install) {
		return 0
	}
	done := int(t.Sub(install) / cycle)
	if done > maxCycles {
		return maxCycles
	}
	return done
}
