package planetary

import (
	"fmt"

	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// ColonyError is the base error for colony-level failures
type ColonyError struct {
	*shared.DomainError
	ColonyID ColonyID
}

func NewColonyError(message string, colonyID ColonyID) *ColonyError {
	return &ColonyError{
		DomainError: shared.NewDomainError(message),
		ColonyID:    colonyID,
	}
}

type DuplicatePinError struct {
	*ColonyError
	PinID PinID
}

func NewDuplicatePinError(colonyID ColonyID, pinID PinID) *DuplicatePinError {
	return &DuplicatePinError{
		ColonyError: NewColonyError(fmt.Sprintf("colony %d has duplicate pin %d", colonyID, pinID), colonyID),
		PinID:       pinID,
	}
}

type InvalidSnapshotError struct {
	*ColonyError
}

func NewInvalidSnapshotError(colonyID ColonyID, reason string) *InvalidSnapshotError {
	return &InvalidSnapshotError{
		ColonyError: NewColonyError(fmt.Sprintf("colony %d snapshot unusable: %s", colonyID, reason), colonyID),
	}
}

// SnapshotFetchError wraps a recoverable per-colony fetch failure
type SnapshotFetchError struct {
	*ColonyError
	Cause error
}

func NewSnapshotFetchError(colonyID ColonyID, cause error) *SnapshotFetchError {
	return &SnapshotFetchError{
		ColonyError: NewColonyError(fmt.Sprintf("failed to fetch colony %d: %v", colonyID, cause), colonyID),
		Cause:       cause,
	}
}

func (e *SnapshotFetchError) Unwrap() error {
	return e.Cause
}

// Pin errors

type InvalidPinDataError struct {
	*shared.DomainError
	PinID PinID
	Field string
}

func NewInvalidPinDataError(pinID PinID, field, reason string) *InvalidPinDataError {
	return &InvalidPinDataError{
		DomainError: shared.NewDomainError(fmt.Sprintf("pin %d: invalid %s: %s", pinID, field, reason)),
		PinID:       pinID,
		Field:       field,
	}
}

// Inventory errors

type InsufficientInventoryError struct {
	*shared.DomainError
	Type      TypeID
	Required  int
	Available int
}

func NewInsufficientInventoryError(typeID TypeID, required, available int) *InsufficientInventoryError {
	return &InsufficientInventoryError{
		DomainError: shared.NewDomainError(fmt.Sprintf("insufficient %d: need %d, have %d", typeID, required, available)),
		Type:        typeID,
		Required:    required,
		Available:   available,
	}
}

type CapacityExceededError struct {
	*shared.DomainError
	Capacity  float64
	Requested float64
}

func NewCapacityExceededError(capacity, requested float64) *CapacityExceededError {
	return &CapacityExceededError{
		DomainError: shared.NewDomainError(fmt.Sprintf("capacity exceeded: %.2f m3 requested, %.2f m3 capacity", requested, capacity)),
		Capacity:    capacity,
		Requested:   requested,
	}
}

// Reference data errors

type InvalidRecipeError struct {
	*shared.DomainError
	RecipeID RecipeID
}

func NewInvalidRecipeError(id RecipeID, reason string) *InvalidRecipeError {
	return &InvalidRecipeError{
		DomainError: shared.NewDomainError(fmt.Sprintf("recipe %d invalid: %s", id, reason)),
		RecipeID:    id,
	}
}

type UnknownRecipeError struct {
	*shared.DomainError
	RecipeID RecipeID
}

func NewUnknownRecipeError(id RecipeID) *UnknownRecipeError {
	return &UnknownRecipeError{
		DomainError: shared.NewDomainError(fmt.Sprintf("unknown recipe: %d", id)),
		RecipeID:    id,
	}
}

type UnknownTypeError struct {
	*shared.DomainError
	TypeID TypeID
}

func NewUnknownTypeError(id TypeID) *UnknownTypeError {
	return &UnknownTypeError{
		DomainError: shared.NewDomainError(fmt.Sprintf("unknown type: %d", id)),
		TypeID:      id,
	}
}
