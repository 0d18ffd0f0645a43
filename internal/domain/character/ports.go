package character

import (
	"context"

	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// CharacterRepository defines character persistence operations
type CharacterRepository interface {
	FindByID(ctx context.Context, id shared.CharacterID) (*Character, error)
	FindByName(ctx context.Context, name string) (*Character, error)
	ListAll(ctx context.Context) ([]*Character, error)
	Add(ctx context.Context, character *Character) error
}
