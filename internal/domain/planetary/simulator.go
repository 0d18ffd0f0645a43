package planetary

import (
	"sort"
	"time"
)

// PinState is the simulated condition of one pin at the target time
type PinState struct {
	PinID             PinID
	Kind              PinKind
	Status            PinStatus
	Progress          float64
	CycleIndex        int
	CurrentCycleYield int
	CompletedCycles   int
	Produced          map[TypeID]int
	Consumed          map[TypeID]int
	NextCompletion    *time.Time
	TimeRemaining     time.Duration
	Invalid           string
}

// SimulatedColony is a colony advanced to a target time. It owns its pins;
// nothing in it aliases the source colony.
type SimulatedColony struct {
	Colony     *Colony
	TargetTime time.Time
	States     []PinState
}

// State returns the simulated state of a pin
func (s *SimulatedColony) State(id PinID) (PinState, bool) {
	for _, st := range s.States {
		if st.PinID == id {
			return st, true
		}
	}
	return PinState{}, false
}

// Simulator advances colonies in time. It holds no mutable state and is safe
// for concurrent use.
type Simulator struct {
	model DecayModel
}

// NewSimulator creates a simulator with the given yield decay model
func NewSimulator(model DecayModel) *Simulator {
	return &Simulator{model: model}
}

// Model returns the simulator's decay model
func (s *Simulator) Model() DecayModel {
	return s.model
}

// Simulate projects every pin of a colony from its last update to target.
// The input colony is never modified. A target before the last update does
// not run the simulation backwards: the snapshot state is returned as-is.
func (s *Simulator) Simulate(colony *Colony, target time.Time) *SimulatedColony {
	from := colony.LastUpdate
	if target.Before(from) {
		// States still describe the snapshot, computed on a scratch copy
		scratch := colony.Clone()
		return &SimulatedColony{
			Colony:     colony.Clone(),
			TargetTime: from,
			States:     s.advanceAll(scratch, from, from),
		}
	}

	advanced := colony.Clone()
	return &SimulatedColony{
		Colony:     advanced,
		TargetTime: target,
		States:     s.advanceAll(advanced, from, target),
	}
}

func (s *Simulator) advanceAll(colony *Colony, from, to time.Time) []PinState {
	states := make([]PinState, len(colony.Pins))
	for i := range colony.Pins {
		states[i] = s.advancePin(&colony.Pins[i], from, to)
	}
	return states
}

func (s *Simulator) advancePin(pin *Pin, from, to time.Time) PinState {
	state := PinState{
		PinID:      pin.ID,
		Kind:       pin.Kind,
		CycleIndex: -1,
		Produced:   map[TypeID]int{},
		Consumed:   map[TypeID]int{},
	}

	if !pin.IsValid() {
		state.Status = PinStatusInactive
		state.Invalid = pin.Invalid
		return state
	}

	switch pin.Kind {
	case PinKindExtractor:
		progress := AdvanceExtractor(*pin.Extractor, &pin.Inventory, from, to, s.model)
		state.Status = progress.Status
		state.Progress = progress.CycleProgress
		state.CycleIndex = progress.CycleIndex
		state.CurrentCycleYield = progress.CurrentCycleYield
		state.CompletedCycles = progress.CompletedCycles
		state.TimeRemaining = progress.TimeRemaining
		if progress.Extracted > 0 {
			state.Produced[pin.Extractor.ProductType] = progress.Extracted
		}
	case PinKindFactory:
		progress := AdvanceFactory(pin.Factory, &pin.Inventory, from, to)
		state.Status = progress.Status
		state.Progress = progress.Progress
		state.CompletedCycles = progress.CompletedCycles
		state.Produced = progress.Produced
		state.Consumed = progress.Consumed
		state.NextCompletion = progress.NextCompletion
	case PinKindStorage:
		state.Status = PinStatusStorage
	}

	return state
}

func sortRecipeIDs(ids []RecipeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
