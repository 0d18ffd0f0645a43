package planetary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestYieldForCycle_FirstCycleYieldsBase(t *testing.T) {
	assert.Equal(t, 100, planetary.YieldForCycle(100, 0))
	assert.Equal(t, 100, planetary.YieldForCycle(100, -3))
}

func TestYieldForCycle_DecaysWithFloor(t *testing.T) {
	assert.Equal(t, 98, planetary.YieldForCycle(100, 1))
	assert.Equal(t, 97, planetary.YieldForCycle(100, 2))
	assert.Equal(t, 1, planetary.YieldForCycle(2, 10000))
	assert.Equal(t, 0, planetary.YieldForCycle(0, 5))
}

func TestYieldForCycle_MonotonicAndPositive(t *testing.T) {
	for _, base := range []int{1, 7, 100, 4500} {
		prev := planetary.YieldForCycle(base, 0)
		for i := 1; i < 500; i++ {
			y := planetary.YieldForCycle(base, i)
			assert.LessOrEqual(t, y, prev, "base %d cycle %d", base, i)
			assert.Greater(t, y, 0, "base %d cycle %d", base, i)
			prev = y
		}
	}
}

func TestDecayModel_FloorNeverExceedsBase(t *testing.T) {
	model := planetary.DecayModel{DecayFactor: 0.5, Floor: 50}

	assert.Equal(t, 10, model.YieldForCycle(10, 40))
	assert.Equal(t, 50, model.YieldForCycle(200, 40))
}

func TestDecayModel_ProgramOutput(t *testing.T) {
	spec := planetary.ExtractorSpec{
		InstallTime:   t0,
		ExpiryTime:    t0.Add(10 * time.Hour),
		CycleDuration: time.Hour,
		BaseQuantity:  100,
	}

	output := planetary.DefaultDecayModel.ProgramOutput(spec)

	assert.Len(t, output, 10)
	assert.Equal(t, 100, output[0])
	assert.Equal(t, planetary.DefaultDecayModel.CumulativeYield(100, 0, 10), sum(output))
}

func TestMaxCycles(t *testing.T) {
	assert.Equal(t, 10, planetary.MaxCycles(t0, t0.Add(36000*time.Second), time.Hour))
	assert.Equal(t, 2, planetary.MaxCycles(t0, t0.Add(150*time.Minute), time.Hour))
	assert.Equal(t, 0, planetary.MaxCycles(t0, t0, time.Hour))
	assert.Equal(t, 0, planetary.MaxCycles(t0, t0.Add(time.Hour), 0))
}

func TestCurrentCycleIndex(t *testing.T) {
	expiry := t0.Add(36000 * time.Second)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before install", t0.Add(-time.Second), -1},
		{"at install", t0, 0},
		{"mid first cycle", t0.Add(30 * time.Minute), 0},
		{"end of first cycle", t0.Add(time.Hour), 0},
		{"just into second cycle", t0.Add(time.Hour + time.Second), 1},
		{"three cycles in", t0.Add(10800 * time.Second), 2},
		{"just past three cycles", t0.Add(10800*time.Second + time.Nanosecond), 3},
		{"at expiry", expiry, 9},
		{"long after expiry", expiry.Add(72 * time.Hour), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, planetary.CurrentCycleIndex(t0, expiry, time.Hour, tt.now))
		})
	}
}

func TestCurrentCycleIndex_NonDecreasing(t *testing.T) {
	expiry := t0.Add(7*time.Hour + 20*time.Minute)
	prev := -1
	for offset := -2 * time.Hour; offset < 12*time.Hour; offset += 7 * time.Minute {
		idx := planetary.CurrentCycleIndex(t0, expiry, 45*time.Minute, t0.Add(offset))
		assert.GreaterOrEqual(t, idx, prev, "offset %s", offset)
		if offset < 0 {
			assert.Equal(t, -1, idx)
		}
		prev = idx
	}
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
