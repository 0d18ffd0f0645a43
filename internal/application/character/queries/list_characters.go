package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/character"
)

// ListCharactersQuery represents a query to list registered characters
type ListCharactersQuery struct{}

// ListCharactersResponse represents the registered characters
type ListCharactersResponse struct {
	Characters []*character.Character
}

// ListCharactersHandler handles the ListCharacters query
type ListCharactersHandler struct {
	characters character.CharacterRepository
}

// NewListCharactersHandler creates a new ListCharactersHandler
func NewListCharactersHandler(characters character.CharacterRepository) *ListCharactersHandler {
	return &ListCharactersHandler{characters: characters}
}

// Handle executes the ListCharacters query
func (h *ListCharactersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ListCharactersQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListCharactersQuery")
	}

	characters, err := h.characters.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	return &ListCharactersResponse{Characters: characters}, nil
}
