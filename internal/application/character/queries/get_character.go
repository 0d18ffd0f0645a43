package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/character"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// GetCharacterQuery represents a query to get a character by ID or name
type GetCharacterQuery struct {
	CharacterID *int64 // Optional: get by character ID
	Name        string // Optional: get by name
}

// GetCharacterResponse represents the result of getting a character
type GetCharacterResponse struct {
	Character *character.Character
}

// GetCharacterHandler handles the GetCharacter query
type GetCharacterHandler struct {
	characters character.CharacterRepository
}

// NewGetCharacterHandler creates a new GetCharacterHandler
func NewGetCharacterHandler(characters character.CharacterRepository) *GetCharacterHandler {
	return &GetCharacterHandler{characters: characters}
}

// Handle executes the GetCharacter query
func (h *GetCharacterHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetCharacterQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetCharacterQuery")
	}

	// Validate that at least one identifier is provided
	if query.CharacterID == nil && query.Name == "" {
		return nil, fmt.Errorf("either character_id or name must be provided")
	}

	// Priority: CharacterID > Name
	if query.CharacterID != nil {
		id, err := shared.NewCharacterID(*query.CharacterID)
		if err != nil {
			return nil, fmt.Errorf("invalid character ID: %w", err)
		}
		c, err := h.characters.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to find character by ID: %w", err)
		}
		return &GetCharacterResponse{Character: c}, nil
	}

	c, err := h.characters.FindByName(ctx, query.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to find character by name: %w", err)
	}
	return &GetCharacterResponse{Character: c}, nil
}
