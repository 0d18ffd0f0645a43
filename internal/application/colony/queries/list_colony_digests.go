package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// ListColonyDigestsQuery reads the stored digests of a character's colonies
// without fetching or simulating anything
type ListColonyDigestsQuery struct {
	CharacterID shared.CharacterID
}

// ListColonyDigestsResponse represents the stored digests
type ListColonyDigestsResponse struct {
	Digests []*services.ColonyDigest
}

// ListColonyDigestsHandler handles the ListColonyDigests query
type ListColonyDigestsHandler struct {
	store services.SummaryStore
}

// NewListColonyDigestsHandler creates a new ListColonyDigestsHandler
func NewListColonyDigestsHandler(store services.SummaryStore) *ListColonyDigestsHandler {
	return &ListColonyDigestsHandler{store: store}
}

// Handle executes the ListColonyDigests query
func (h *ListColonyDigestsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListColonyDigestsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListColonyDigestsQuery")
	}

	digests, err := h.store.ListByOwner(ctx, query.CharacterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list colony digests: %w", err)
	}

	return &ListColonyDigestsResponse{Digests: digests}, nil
}
