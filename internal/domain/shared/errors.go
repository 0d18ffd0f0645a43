package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Character errors

type CharacterError struct {
	*DomainError
	CharacterID int64
}

func NewCharacterError(message string, characterID int64) *CharacterError {
	return &CharacterError{
		DomainError: &DomainError{Message: message},
		CharacterID: characterID,
	}
}

type CharacterNotFoundError struct {
	*CharacterError
}

func NewCharacterNotFoundError(characterID int64) *CharacterNotFoundError {
	return &CharacterNotFoundError{
		CharacterError: NewCharacterError(fmt.Sprintf("character not found: %d", characterID), characterID),
	}
}

type MissingTokenError struct {
	*CharacterError
}

func NewMissingTokenError(characterID int64) *MissingTokenError {
	return &MissingTokenError{
		CharacterError: NewCharacterError(fmt.Sprintf("character %d has no access token", characterID), characterID),
	}
}
