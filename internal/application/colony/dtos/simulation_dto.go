package dtos

import (
	"sort"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// PinStateDTO is the simulated progress of one pin
type PinStateDTO struct {
	PinID           int64         `json:"pin_id"`
	Kind            string        `json:"kind"`
	Status          string        `json:"status"`
	CompletedCycles int           `json:"completed_cycles"`
	Produced        []QuantityDTO `json:"produced,omitempty"`
	Consumed        []QuantityDTO `json:"consumed,omitempty"`
	NextCompletion  *time.Time    `json:"next_completion,omitempty"`
	Invalid         string        `json:"invalid,omitempty"`
}

// SimulationDTO is a colony summary plus per-pin simulation detail
type SimulationDTO struct {
	Summary        *ColonySummaryDTO `json:"summary"`
	States         []PinStateDTO     `json:"states"`
	ProgramOutputs map[int64][]int   `json:"program_outputs"`
}

// SimulationToDTO converts a simulation result
func SimulationToDTO(sim *planetary.SimulatedColony, summary *planetary.ColonySummary, programs map[planetary.PinID][]int) *SimulationDTO {
	dto := &SimulationDTO{
		Summary:        SummaryToDTO(summary, nil, false),
		ProgramOutputs: make(map[int64][]int, len(programs)),
	}
	for pinID, outputs := range programs {
		dto.ProgramOutputs[int64(pinID)] = outputs
	}
	if sim == nil {
		return dto
	}

	dto.States = make([]PinStateDTO, 0, len(sim.States))
	for _, st := range sim.States {
		dto.States = append(dto.States, PinStateDTO{
			PinID:           int64(st.PinID),
			Kind:            string(st.Kind),
			Status:          string(st.Status),
			CompletedCycles: st.CompletedCycles,
			Produced:        quantities(st.Produced),
			Consumed:        quantities(st.Consumed),
			NextCompletion:  st.NextCompletion,
			Invalid:         st.Invalid,
		})
	}
	return dto
}

func quantities(m map[planetary.TypeID]int) []QuantityDTO {
	if len(m) == 0 {
		return nil
	}
	out := make([]QuantityDTO, 0, len(m))
	for typeID, qty := range m {
		out = append(out, QuantityDTO{TypeID: int64(typeID), Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeID < out[j].TypeID })
	return out
}

// RecipeDTO is a schematic with the names of its types
type RecipeDTO struct {
	RecipeID         int64            `json:"recipe_id"`
	Name             string           `json:"name"`
	CycleTimeSeconds int64            `json:"cycle_time_seconds"`
	Output           QuantityDTO      `json:"output"`
	Inputs           []QuantityDTO    `json:"inputs"`
	TypeNames        map[int64]string `json:"type_names"`
}

// RecipeToDTO converts a recipe. Types without reference data are left out
// of TypeNames.
func RecipeToDTO(recipe *planetary.Recipe, types map[planetary.TypeID]*planetary.ResourceType) *RecipeDTO {
	if recipe == nil {
		return nil
	}
	dto := &RecipeDTO{
		RecipeID:         int64(recipe.ID),
		Name:             recipe.Name,
		CycleTimeSeconds: int64(recipe.CycleDuration / time.Second),
		Output:           QuantityDTO{TypeID: int64(recipe.Output.Type), Quantity: recipe.Output.Quantity},
		Inputs:           make([]QuantityDTO, 0, len(recipe.Inputs)),
		TypeNames:        make(map[int64]string),
	}
	for _, in := range recipe.Inputs {
		dto.Inputs = append(dto.Inputs, QuantityDTO{TypeID: int64(in.Type), Quantity: in.Quantity})
	}
	for id, t := range types {
		if t != nil {
			dto.TypeNames[int64(id)] = t.Name
		}
	}
	return dto
}
