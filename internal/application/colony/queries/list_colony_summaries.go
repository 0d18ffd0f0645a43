package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/character"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/pkg/utils"
)

// ListColonySummariesQuery summarizes every colony of the given characters.
// An empty CharacterIDs list means every registered character.
type ListColonySummariesQuery struct {
	CharacterIDs []shared.CharacterID
	Target       time.Time // Optional: defaults to now
	ForceRefresh bool

	// OnResult, when set, receives each result as soon as it is ready
	OnResult func(services.ColonyResult)
}

// ListColonySummariesResponse holds one result per colony in listing order
type ListColonySummariesResponse struct {
	RunID   string
	Results []services.ColonyResult
	Failed  int
}

// ListColonySummariesHandler handles the ListColonySummaries query
type ListColonySummariesHandler struct {
	characters character.CharacterRepository
	snapshots  planetary.SnapshotProvider
	aggregator *services.Aggregator
}

// NewListColonySummariesHandler creates a new ListColonySummariesHandler
func NewListColonySummariesHandler(
	characters character.CharacterRepository,
	snapshots planetary.SnapshotProvider,
	aggregator *services.Aggregator,
) *ListColonySummariesHandler {
	return &ListColonySummariesHandler{
		characters: characters,
		snapshots:  snapshots,
		aggregator: aggregator,
	}
}

// Handle executes the ListColonySummaries query
func (h *ListColonySummariesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListColonySummariesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListColonySummariesQuery")
	}

	runID := utils.GenerateRunID("colonies")
	logger := common.LoggerFromContext(ctx)

	owners, err := h.resolveOwners(ctx, query.CharacterIDs)
	if err != nil {
		return nil, err
	}

	var requests []services.ColonyRequest
	for _, owner := range owners {
		refs, err := h.snapshots.ListColonies(ctx, owner)
		if err != nil {
			// One character's listing failure must not hide the others
			logger.Log("WARNING", "Failed to list colonies", map[string]interface{}{
				"run_id":       runID,
				"character_id": owner.Value(),
				"error":        err.Error(),
			})
			continue
		}
		for _, ref := range refs {
			requests = append(requests, services.ColonyRequest{
				Ref:          ref,
				Target:       query.Target,
				ForceRefresh: query.ForceRefresh,
			})
		}
	}

	logger.Log("INFO", "Aggregating colonies", map[string]interface{}{
		"run_id":      runID,
		"characters":  len(owners),
		"colonies":    len(requests),
		"concurrency": h.aggregator.Concurrency(),
	})

	response := &ListColonySummariesResponse{RunID: runID}
	for result := range h.aggregator.Run(ctx, requests) {
		if query.OnResult != nil {
			query.OnResult(result)
		}
		if result.Err != nil {
			response.Failed++
		}
		response.Results = append(response.Results, result)
	}
	services.SortByIndex(response.Results)

	if err := ctx.Err(); err != nil {
		return response, fmt.Errorf("aggregation %s cancelled: %w", runID, err)
	}

	logger.Log("INFO", "Aggregation complete", map[string]interface{}{
		"run_id":   runID,
		"colonies": len(response.Results),
		"failed":   response.Failed,
	})

	return response, nil
}

func (h *ListColonySummariesHandler) resolveOwners(ctx context.Context, ids []shared.CharacterID) ([]shared.CharacterID, error) {
	if len(ids) > 0 {
		return ids, nil
	}

	all, err := h.characters.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	owners := make([]shared.CharacterID, 0, len(all))
	for _, c := range all {
		owners = append(owners, c.ID)
	}
	return owners, nil
}
