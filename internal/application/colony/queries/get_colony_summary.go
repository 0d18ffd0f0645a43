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

// GetColonySummaryQuery represents a query for the summary of one colony
type GetColonySummaryQuery struct {
	CharacterID  shared.CharacterID
	ColonyID     planetary.ColonyID
	Target       time.Time // Optional: defaults to now
	ForceRefresh bool
}

// GetColonySummaryResponse represents the result of a colony summary query
type GetColonySummaryResponse struct {
	Summary *planetary.ColonySummary
	Issues  []planetary.ResolveIssue
	Cached  bool
}

// GetColonySummaryHandler handles the GetColonySummary query
type GetColonySummaryHandler struct {
	pipeline *services.ColonyPipeline
}

// NewGetColonySummaryHandler creates a new GetColonySummaryHandler
func NewGetColonySummaryHandler(pipeline *services.ColonyPipeline) *GetColonySummaryHandler {
	return &GetColonySummaryHandler{
		pipeline: pipeline,
	}
}

// Handle executes the GetColonySummary query
func (h *GetColonySummaryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetColonySummaryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetColonySummaryQuery")
	}

	if query.CharacterID.IsZero() {
		return nil, fmt.Errorf("character_id is required")
	}
	if query.ColonyID <= 0 {
		return nil, fmt.Errorf("colony_id must be positive")
	}

	outcome, err := h.pipeline.Compute(ctx, services.ColonyRequest{
		Ref:          planetary.ColonyRef{Owner: query.CharacterID, ColonyID: query.ColonyID},
		Target:       query.Target,
		ForceRefresh: query.ForceRefresh,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute colony %d: %w", query.ColonyID, err)
	}

	return &GetColonySummaryResponse{
		Summary: outcome.Summary,
		Issues:  outcome.Issues,
		Cached:  outcome.Cached,
	}, nil
}
