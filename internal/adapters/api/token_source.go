package api

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colonysim-go/internal/application/auth"
	"github.com/andrescamacho/colonysim-go/internal/domain/character"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// TokenSource resolves the ESI access token of a character
type TokenSource interface {
	Token(ctx context.Context, owner shared.CharacterID) (string, error)
}

// RepositoryTokenSource prefers a token injected into the context by the
// mediator and falls back to the character registry
type RepositoryTokenSource struct {
	characters character.CharacterRepository
}

// NewRepositoryTokenSource creates a token source backed by the character registry
func NewRepositoryTokenSource(characters character.CharacterRepository) *RepositoryTokenSource {
	return &RepositoryTokenSource{characters: characters}
}

// Token returns the access token of owner
func (s *RepositoryTokenSource) Token(ctx context.Context, owner shared.CharacterID) (string, error) {
	if token, err := auth.CharacterTokenFromContext(ctx, owner); err == nil {
		return token, nil
	}

	c, err := s.characters.FindByID(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("failed to resolve token: %w", err)
	}
	if !c.HasToken() {
		return "", shared.NewMissingTokenError(owner.Value())
	}
	return c.AccessToken, nil
}

// StaticTokenSource returns the same token for every character
type StaticTokenSource string

// Token returns the static token
func (s StaticTokenSource) Token(ctx context.Context, owner shared.CharacterID) (string, error) {
	if s == "" {
		return "", shared.NewMissingTokenError(owner.Value())
	}
	return string(s), nil
}
