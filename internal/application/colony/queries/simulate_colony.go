package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// SimulateColonyQuery projects one colony to a target time and returns the
// full per-pin simulation, including each extractor's program output curve
type SimulateColonyQuery struct {
	CharacterID shared.CharacterID
	ColonyID    planetary.ColonyID
	Target      time.Time // Optional: defaults to now
}

// SimulateColonyResponse represents the result of a colony simulation
type SimulateColonyResponse struct {
	Simulated      *planetary.SimulatedColony
	Summary        *planetary.ColonySummary
	ProgramOutputs map[planetary.PinID][]int
}

// SimulateColonyHandler handles the SimulateColony query
type SimulateColonyHandler struct {
	pipeline  *services.ColonyPipeline
	simulator *planetary.Simulator
}

// NewSimulateColonyHandler creates a new SimulateColonyHandler
func NewSimulateColonyHandler(pipeline *services.ColonyPipeline, simulator *planetary.Simulator) *SimulateColonyHandler {
	return &SimulateColonyHandler{
		pipeline:  pipeline,
		simulator: simulator,
	}
}

// Handle executes the SimulateColony query
func (h *SimulateColonyHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*SimulateColonyQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SimulateColonyQuery")
	}

	if query.CharacterID.IsZero() {
		return nil, fmt.Errorf("character_id is required")
	}

	// Force a fresh computation so the simulated pins are available; the
	// snapshot itself may still be served from the local cache.
	outcome, err := h.pipeline.ComputeUncached(ctx, services.ColonyRequest{
		Ref:    planetary.ColonyRef{Owner: query.CharacterID, ColonyID: query.ColonyID},
		Target: query.Target,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to simulate colony %d: %w", query.ColonyID, err)
	}

	outputs := make(map[planetary.PinID][]int)
	model := h.simulator.Model()
	for _, pin := range outcome.Simulated.Colony.PinsOfKind(planetary.PinKindExtractor) {
		outputs[pin.ID] = model.ProgramOutput(*pin.Extractor)
	}

	return &SimulateColonyResponse{
		Simulated:      outcome.Simulated,
		Summary:        outcome.Summary,
		ProgramOutputs: outputs,
	}, nil
}
