package character

import (
	"time"

	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// Character is a game account whose colonies are tracked
type Character struct {
	ID           shared.CharacterID
	Name         string
	AccessToken  string
	TokenExpires time.Time
	Metadata     map[string]interface{}
}

// NewCharacter creates a new character
func NewCharacter(id shared.CharacterID, name, accessToken string) *Character {
	return &Character{
		ID:          id,
		Name:        name,
		AccessToken: accessToken,
		Metadata:    make(map[string]interface{}),
	}
}

// HasToken reports whether the character can be used for authenticated fetches
func (c *Character) HasToken() bool {
	return c.AccessToken != ""
}
