package auth

import (
	"context"
	"fmt"
	"reflect"

	"github.com/andrescamacho/colonysim-go/internal/application/mediator"
	"github.com/andrescamacho/colonysim-go/internal/domain/character"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// Context keys for passing authentication data through context
type authContextKey int

const (
	characterTokenKey authContextKey = iota + 1000 // Offset from logger keys
)

// WithCharacterToken injects a character access token into the context
func WithCharacterToken(ctx context.Context, owner shared.CharacterID, token string) context.Context {
	return context.WithValue(ctx, characterTokenKey, characterToken{owner: owner, token: token})
}

// CharacterTokenFromContext extracts the access token of owner from context.
// A token injected for a different character is not returned.
func CharacterTokenFromContext(ctx context.Context, owner shared.CharacterID) (string, error) {
	ct, ok := ctx.Value(characterTokenKey).(characterToken)
	if !ok || ct.token == "" || !ct.owner.Equals(owner) {
		return "", fmt.Errorf("access token for character %s not found in context", owner)
	}
	return ct.token, nil
}

type characterToken struct {
	owner shared.CharacterID
	token string
}

// CharacterTokenMiddleware creates middleware that injects character tokens into context.
// Requests carrying a CharacterID field are resolved against the repository; an
// unknown character or one without a token fails before the handler runs.
func CharacterTokenMiddleware(characters character.CharacterRepository) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		owner, found := extractCharacterID(request)
		if !found || owner.IsZero() {
			return next(ctx, request)
		}

		c, err := characters.FindByID(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to find character %s: %w", owner, err)
		}
		if !c.HasToken() {
			return nil, shared.NewMissingTokenError(owner.Value())
		}

		return next(WithCharacterToken(ctx, owner, c.AccessToken), request)
	}
}

// extractCharacterID uses reflection to read a shared.CharacterID field named CharacterID
func extractCharacterID(request mediator.Request) (shared.CharacterID, bool) {
	requestValue := reflect.ValueOf(request)
	if requestValue.Kind() == reflect.Ptr {
		if requestValue.IsNil() {
			return shared.CharacterID{}, false
		}
		requestValue = requestValue.Elem()
	}

	if requestValue.Kind() != reflect.Struct {
		return shared.CharacterID{}, false
	}

	fieldValue := requestValue.FieldByName("CharacterID")
	if !fieldValue.IsValid() {
		return shared.CharacterID{}, false
	}

	id, ok := fieldValue.Interface().(shared.CharacterID)
	return id, ok
}
