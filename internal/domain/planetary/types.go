package planetary

import (
	"fmt"
	"sort"
	"time"
)

// TypeID identifies a resource type in the reference database
type TypeID int64

// RecipeID identifies a factory schematic
type RecipeID int64

// PinID identifies a facility within a colony
type PinID int64

// ColonyID identifies a colony (one planet of one owner)
type ColonyID int64

// GroupID identifies a facility archetype group in the reference database
type GroupID int64

// Facility archetype groups used to classify pins and derive storage capacity
const (
	GroupCommandCenter        GroupID = 1027
	GroupProcessor            GroupID = 1028
	GroupStorageFacility      GroupID = 1029
	GroupLaunchpad            GroupID = 1030
	GroupExtractorControlUnit GroupID = 1063
)

// storageCapacityByGroup holds the declared volume capacity (m3) of each storage tier
var storageCapacityByGroup = map[GroupID]float64{
	GroupCommandCenter:   500,
	GroupLaunchpad:       10000,
	GroupStorageFacility: 12000,
}

// StorageCapacity returns the capacity of a storage archetype group
func StorageCapacity(group GroupID) (float64, bool) {
	capacity, ok := storageCapacityByGroup[group]
	return capacity, ok
}

// ResourceType is immutable reference data for a commodity or facility type
type ResourceType struct {
	ID      TypeID
	Name    string
	IconRef string
	Volume  float64
	GroupID GroupID
}

// ResourceQuantity pairs a resource type with an amount
type ResourceQuantity struct {
	Type     TypeID
	Quantity int
}

// Recipe is a factory schematic: fixed inputs turned into one output per cycle.
//
// Invariants:
// - CycleDuration > 0
// - Output.Quantity > 0
// - Inputs hold unique types in ascending type order, each with a positive quantity
type Recipe struct {
	ID            RecipeID
	Name          string
	Output        ResourceQuantity
	CycleDuration time.Duration
	Inputs        []ResourceQuantity
}

// NewRecipe creates a validated recipe. Duplicate input types are merged.
func NewRecipe(id RecipeID, name string, output ResourceQuantity, cycle time.Duration, inputs []ResourceQuantity) (*Recipe, error) {
	merged := make(map[TypeID]int, len(inputs))
	for _, in := range inputs {
		merged[in.Type] += in.Quantity
	}

	normalized := make([]ResourceQuantity, 0, len(merged))
	for typeID, qty := range merged {
		normalized = append(normalized, ResourceQuantity{Type: typeID, Quantity: qty})
	}
	sort.Slice(normalized, func(i, j int) bool { return normalized[i].Type < normalized[j].Type })

	r := &Recipe{
		ID:            id,
		Name:          name,
		Output:        output,
		CycleDuration: cycle,
		Inputs:        normalized,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the recipe invariants
func (r *Recipe) Validate() error {
	if r.CycleDuration <= 0 {
		return NewInvalidRecipeError(r.ID, fmt.Sprintf("cycle duration must be positive, got %s", r.CycleDuration))
	}
	if r.Output.Quantity <= 0 {
		return NewInvalidRecipeError(r.ID, fmt.Sprintf("output quantity must be positive, got %d", r.Output.Quantity))
	}
	if r.Output.Type <= 0 {
		return NewInvalidRecipeError(r.ID, "output type is required")
	}
	for _, in := range r.Inputs {
		if in.Quantity <= 0 {
			return NewInvalidRecipeError(r.ID, fmt.Sprintf("input %d has non-positive quantity %d", in.Type, in.Quantity))
		}
	}
	return nil
}

// InputTypes returns the input type ids in ascending order
func (r *Recipe) InputTypes() []TypeID {
	types := make([]TypeID, len(r.Inputs))
	for i, in := range r.Inputs {
		types[i] = in.Type
	}
	return types
}

// SortTypeIDs sorts type ids ascending in place and returns the slice
func SortTypeIDs(ids []TypeID) []TypeID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
