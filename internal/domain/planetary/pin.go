package planetary

import "time"

// PinKind tags which payload a Pin carries
type PinKind string

const (
	PinKindExtractor PinKind = "EXTRACTOR"
	PinKindFactory   PinKind = "FACTORY"
	PinKindStorage   PinKind = "STORAGE"
)

// ExtractorSpec is the extraction program of an extractor pin
type ExtractorSpec struct {
	InstallTime   time.Time
	ExpiryTime    time.Time
	CycleDuration time.Duration
	BaseQuantity  int
	ProductType   TypeID
}

// IsActive reports whether the program is running at now
func (e ExtractorSpec) IsActive(now time.Time) bool {
	return !now.Before(e.InstallTime) && now.Before(e.ExpiryTime)
}

// FactorySpec is the production state of a factory pin.
// RecipeID is 0 when no schematic is assigned; Recipe is nil when unassigned
// or when the schematic could not be found in reference data.
type FactorySpec struct {
	RecipeID RecipeID
	Recipe   *Recipe
	Cycle    CycleState
	Active   bool
}

// StorageSpec is the capacity of a storage pin
type StorageSpec struct {
	Capacity float64
}

// Pin is a facility in a colony. Kind selects exactly one non-nil payload.
// A non-empty Invalid marks a pin whose snapshot data could not be used; it is
// carried through simulation unchanged and reported as inactive.
type Pin struct {
	ID        PinID
	TypeID    TypeID
	Kind      PinKind
	Inventory Inventory
	Extractor *ExtractorSpec
	Factory   *FactorySpec
	Storage   *StorageSpec
	Invalid   string
}

// NewExtractorPin creates an extractor pin
func NewExtractorPin(id PinID, typeID TypeID, spec ExtractorSpec, inventory Inventory) Pin {
	return Pin{ID: id, TypeID: typeID, Kind: PinKindExtractor, Extractor: &spec, Inventory: inventory}
}

// NewFactoryPin creates a factory pin
func NewFactoryPin(id PinID, typeID TypeID, spec FactorySpec, inventory Inventory) Pin {
	return Pin{ID: id, TypeID: typeID, Kind: PinKindFactory, Factory: &spec, Inventory: inventory}
}

// NewStoragePin creates a storage pin
func NewStoragePin(id PinID, typeID TypeID, spec StorageSpec, inventory Inventory) Pin {
	return Pin{ID: id, TypeID: typeID, Kind: PinKindStorage, Storage: &spec, Inventory: inventory}
}

// NewInvalidPin creates a pin excluded from simulation
func NewInvalidPin(id PinID, typeID TypeID, kind PinKind, reason string, inventory Inventory) Pin {
	return Pin{ID: id, TypeID: typeID, Kind: kind, Invalid: reason, Inventory: inventory}
}

// IsValid reports whether the pin takes part in simulation
func (p Pin) IsValid() bool {
	if p.Invalid != "" {
		return false
	}
	switch p.Kind {
	case PinKindExtractor:
		return p.Extractor != nil
	case PinKindFactory:
		return p.Factory != nil
	case PinKindStorage:
		return p.Storage != nil
	default:
		return false
	}
}

// Clone returns a deep copy. Recipes are immutable reference data and stay shared.
func (p Pin) Clone() Pin {
	clone := p
	clone.Inventory = p.Inventory.Clone()
	if p.Extractor != nil {
		e := *p.Extractor
		clone.Extractor = &e
	}
	if p.Factory != nil {
		f := *p.Factory
		clone.Factory = &f
	}
	if p.Storage != nil {
		s := *p.Storage
		clone.Storage = &s
	}
	return clone
}
