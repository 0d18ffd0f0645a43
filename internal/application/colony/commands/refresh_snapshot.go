package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// RefreshSnapshotCommand forces a fresh snapshot of one colony from the game
// API, replacing any cached snapshot and every result derived from it
type RefreshSnapshotCommand struct {
	CharacterID shared.CharacterID
	ColonyID    planetary.ColonyID
}

// RefreshSnapshotResponse represents the result of a snapshot refresh
type RefreshSnapshotResponse struct {
	Summary     *planetary.ColonySummary
	RefreshedAt time.Time
}

// RefreshSnapshotHandler handles the RefreshSnapshot command
type RefreshSnapshotHandler struct {
	pipeline *services.ColonyPipeline
	store    services.SummaryStore
	clock    shared.Clock
}

// NewRefreshSnapshotHandler creates a new RefreshSnapshotHandler. store may be nil.
func NewRefreshSnapshotHandler(pipeline *services.ColonyPipeline, store services.SummaryStore, clock shared.Clock) *RefreshSnapshotHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RefreshSnapshotHandler{
		pipeline: pipeline,
		store:    store,
		clock:    clock,
	}
}

// Handle executes the RefreshSnapshot command
func (h *RefreshSnapshotHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RefreshSnapshotCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RefreshSnapshotCommand")
	}

	if cmd.CharacterID.IsZero() {
		return nil, fmt.Errorf("character_id is required")
	}

	ref := planetary.ColonyRef{Owner: cmd.CharacterID, ColonyID: cmd.ColonyID}
	if h.store != nil {
		if err := h.store.Delete(ctx, ref); err != nil {
			return nil, fmt.Errorf("failed to drop stored digest: %w", err)
		}
	}

	outcome, err := h.pipeline.Compute(ctx, services.ColonyRequest{Ref: ref, ForceRefresh: true})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh colony %d: %w", cmd.ColonyID, err)
	}

	common.LoggerFromContext(ctx).Log("INFO", "Colony snapshot refreshed", map[string]interface{}{
		"character_id": cmd.CharacterID.Value(),
		"colony_id":    int64(cmd.ColonyID),
		"version":      outcome.Summary.Version,
	})

	return &RefreshSnapshotResponse{
		Summary:     outcome.Summary,
		RefreshedAt: h.clock.Now(),
	}, nil
}
