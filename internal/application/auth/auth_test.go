package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/application/auth"
	"github.com/andrescamacho/colonysim-go/internal/application/mediator"
	"github.com/andrescamacho/colonysim-go/internal/domain/character"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

type ownedRequest struct {
	CharacterID shared.CharacterID
}

type anonymousRequest struct{}

func TestCharacterTokenMiddleware_InjectsToken(t *testing.T) {
	// Arrange
	repo := helpers.NewMockCharacterRepository()
	owner := shared.MustNewCharacterID(90000001)
	require.NoError(t, repo.Add(context.Background(), character.NewCharacter(owner, "pilot", "secret")))
	middleware := auth.CharacterTokenMiddleware(repo)

	var seen string
	next := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		token, err := auth.CharacterTokenFromContext(ctx, owner)
		require.NoError(t, err)
		seen = token
		return "ok", nil
	}

	// Act
	resp, err := middleware(context.Background(), &ownedRequest{CharacterID: owner}, next)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, "secret", seen)
}

func TestCharacterTokenMiddleware_MissingToken(t *testing.T) {
	repo := helpers.NewMockCharacterRepository()
	owner := shared.MustNewCharacterID(90000002)
	require.NoError(t, repo.Add(context.Background(), character.NewCharacter(owner, "tokenless", "")))
	middleware := auth.CharacterTokenMiddleware(repo)

	called := false
	_, err := middleware(context.Background(), &ownedRequest{CharacterID: owner}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		called = true
		return nil, nil
	})

	var missing *shared.MissingTokenError
	assert.ErrorAs(t, err, &missing)
	assert.False(t, called)
}

func TestCharacterTokenMiddleware_PassesThroughAnonymousRequests(t *testing.T) {
	middleware := auth.CharacterTokenMiddleware(helpers.NewMockCharacterRepository())

	resp, err := middleware(context.Background(), &anonymousRequest{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return "passed", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "passed", resp)
}

func TestCharacterTokenFromContext_RejectsOtherOwner(t *testing.T) {
	ctx := auth.WithCharacterToken(context.Background(), shared.MustNewCharacterID(1), "token")

	_, err := auth.CharacterTokenFromContext(ctx, shared.MustNewCharacterID(2))
	assert.Error(t, err)

	token, err := auth.CharacterTokenFromContext(ctx, shared.MustNewCharacterID(1))
	require.NoError(t, err)
	assert.Equal(t, "token", token)
}
