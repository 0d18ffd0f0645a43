package planetary

import "time"

// CyclePhase is the phase of a factory's production cycle
type CyclePhase int

const (
	// CycleNotStarted means no cycle has ever started
	CycleNotStarted CyclePhase = iota
	// CycleRunning means a cycle is in progress since its start time
	CycleRunning
	// CycleCompleted means the last cycle finished and no new one has started
	CycleCompleted
)

func (p CyclePhase) String() string {
	switch p {
	case CycleRunning:
		return "RUNNING"
	case CycleCompleted:
		return "COMPLETED"
	default:
		return "NOT_STARTED"
	}
}

// CycleState makes the factory's "last cycle start" explicit:
// NotStarted carries no time, Running carries the start of the active cycle,
// Completed carries the start of the last finished cycle.
type CycleState struct {
	phase CyclePhase
	start time.Time
}

// NotStarted returns the initial cycle state
func NotStarted() CycleState {
	return CycleState{phase: CycleNotStarted}
}

// Running returns a state with an active cycle that began at start
func Running(start time.Time) CycleState {
	return CycleState{phase: CycleRunning, start: start}
}

// Completed returns a state whose last cycle began at lastStart and has finished
func Completed(lastStart time.Time) CycleState {
	return CycleState{phase: CycleCompleted, start: lastStart}
}

// Phase returns the cycle phase
func (s CycleState) Phase() CyclePhase {
	return s.phase
}

// IsRunning reports whether a cycle is in progress
func (s CycleState) IsRunning() bool {
	return s.phase == CycleRunning
}

// LastStart returns the start of the active or last cycle, if any
func (s CycleState) LastStart() (time.Time, bool) {
	if s.phase == CycleNotStarted {
		return time.Time{}, false
	}
	return s.start, true
}

// Progress returns the fraction of a cycle elapsed at now, clamped to [0, 1].
// It is 0 when no cycle has started.
func (s CycleState) Progress(cycle time.Duration, now time.Time) float64 {
	start, ok := s.LastStart()
	if !ok || cycle <= 0 {
		return 0
	}
	fraction := float64(now.Sub(start)) / float64(cycle)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}
