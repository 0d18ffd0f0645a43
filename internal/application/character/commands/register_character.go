package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/character"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// RegisterCharacterCommand represents a command to register a character
type RegisterCharacterCommand struct {
	CharacterID int64
	Name        string
	AccessToken string                 // ESI access token
	Metadata    map[string]interface{} // Optional metadata (corporation, alliance, etc.)
}

// RegisterCharacterResponse represents the result of registering a character
type RegisterCharacterResponse struct {
	Character *character.Character
}

// RegisterCharacterHandler handles the RegisterCharacter command
type RegisterCharacterHandler struct {
	characters character.CharacterRepository
}

// NewRegisterCharacterHandler creates a new RegisterCharacterHandler
func NewRegisterCharacterHandler(characters character.CharacterRepository) *RegisterCharacterHandler {
	return &RegisterCharacterHandler{
		characters: characters,
	}
}

// Handle executes the RegisterCharacter command
func (h *RegisterCharacterHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RegisterCharacterCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RegisterCharacterCommand")
	}

	id, err := shared.NewCharacterID(cmd.CharacterID)
	if err != nil {
		return nil, fmt.Errorf("invalid character ID: %w", err)
	}
	if cmd.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if cmd.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	c := character.NewCharacter(id, cmd.Name, cmd.AccessToken)
	for k, v := range cmd.Metadata {
		c.Metadata[k] = v
	}

	if err := h.characters.Add(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save character: %w", err)
	}

	return &RegisterCharacterResponse{
		Character: c,
	}, nil
}
