package planetary

import (
	"time"

	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// ColonyRef identifies one colony of one owner
type ColonyRef struct {
	Owner    shared.CharacterID
	ColonyID ColonyID
}

// Colony is the last-known state of an owner's facilities on one planet.
// Colonies are replaced, never mutated, when a fresh snapshot arrives.
type Colony struct {
	ID         ColonyID
	Owner      shared.CharacterID
	PlanetType string
	Pins       []Pin
	LastUpdate time.Time
	Version    string
}

// NewColony creates a colony, rejecting duplicate pin ids
func NewColony(id ColonyID, owner shared.CharacterID, planetType string, lastUpdate time.Time, version string, pins []Pin) (*Colony, error) {
	seen := make(map[PinID]struct{}, len(pins))
	for _, pin := range pins {
		if _, dup := seen[pin.ID]; dup {
			return nil, NewDuplicatePinError(id, pin.ID)
		}
		seen[pin.ID] = struct{}{}
	}

	return &Colony{
		ID:         id,
		Owner:      owner,
		PlanetType: planetType,
		Pins:       pins,
		LastUpdate: lastUpdate,
		Version:    version,
	}, nil
}

// Ref returns the colony's reference
func (c *Colony) Ref() ColonyRef {
	return ColonyRef{Owner: c.Owner, ColonyID: c.ID}
}

// Clone returns a deep copy sharing no mutable state with the original
func (c *Colony) Clone() *Colony {
	clone := *c
	clone.Pins = make([]Pin, len(c.Pins))
	for i, pin := range c.Pins {
		clone.Pins[i] = pin.Clone()
	}
	return &clone
}

// Pin finds a pin by id
func (c *Colony) Pin(id PinID) (*Pin, bool) {
	for i := range c.Pins {
		if c.Pins[i].ID == id {
			return &c.Pins[i], true
		}
	}
	return nil, false
}

// PinsOfKind returns the valid pins of a kind, in colony order
func (c *Colony) PinsOfKind(kind PinKind) []Pin {
	var pins []Pin
	for _, pin := range c.Pins {
		if pin.Kind == kind && pin.IsValid() {
			pins = append(pins, pin)
		}
	}
	return pins
}

// RecipeIDs returns the distinct recipe ids assigned to factories, ascending
func (c *Colony) RecipeIDs() []RecipeID {
	seen := make(map[RecipeID]struct{})
	var ids []RecipeID
	for _, pin := range c.Pins {
		if pin.Factory == nil || pin.Factory.RecipeID == 0 {
			continue
		}
		if _, ok := seen[pin.Factory.RecipeID]; !ok {
			seen[pin.Factory.RecipeID] = struct{}{}
			ids = append(ids, pin.Factory.RecipeID)
		}
	}
	sortRecipeIDs(ids)
	return ids
}
