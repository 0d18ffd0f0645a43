package planetary

import "sort"

// Inventory is a per-facility ledger of resource type to non-negative quantity.
// The zero value is an empty ledger ready to use. Copies share storage; use Clone
// before handing an inventory to another owner.
type Inventory struct {
	amounts map[TypeID]int
}

// NewInventory creates a ledger from a type->quantity map.
// Non-positive quantities are dropped.
func NewInventory(amounts map[TypeID]int) Inventory {
	inv := Inventory{amounts: make(map[TypeID]int, len(amounts))}
	for typeID, qty := range amounts {
		if qty > 0 {
			inv.amounts[typeID] = qty
		}
	}
	return inv
}

// Quantity returns the amount held of a type (0 when absent)
func (inv Inventory) Quantity(typeID TypeID) int {
	return inv.amounts[typeID]
}

// IsEmpty reports whether the ledger holds nothing
func (inv Inventory) IsEmpty() bool {
	return len(inv.amounts) == 0
}

// Types returns the held type ids in ascending order
func (inv Inventory) Types() []TypeID {
	types := make([]TypeID, 0, len(inv.amounts))
	for typeID := range inv.amounts {
		types = append(types, typeID)
	}
	return SortTypeIDs(types)
}

// Total returns the sum of all quantities
func (inv Inventory) Total() int {
	total := 0
	for _, qty := range inv.amounts {
		total += qty
	}
	return total
}

// Has reports whether every requirement is held in at least the required amount
func (inv Inventory) Has(requirements []ResourceQuantity) bool {
	for _, req := range requirements {
		if inv.amounts[req.Type] < req.Quantity {
			return false
		}
	}
	return true
}

// Add credits an amount of a type. Negative amounts are rejected.
func (inv *Inventory) Add(typeID TypeID, qty int) error {
	if qty < 0 {
		return NewInsufficientInventoryError(typeID, -qty, 0)
	}
	if qty == 0 {
		return nil
	}
	if inv.amounts == nil {
		inv.amounts = make(map[TypeID]int)
	}
	inv.amounts[typeID] += qty
	return nil
}

// AddBounded credits an amount only if the resulting volume fits the capacity
func (inv *Inventory) AddBounded(typeID TypeID, qty int, unitVolume float64, volumeOf func(TypeID) float64, capacity float64) error {
	requested := inv.Volume(volumeOf) + float64(qty)*unitVolume
	if requested > capacity {
		return NewCapacityExceededError(capacity, requested)
	}
	return inv.Add(typeID, qty)
}

// Remove debits an amount of a type, failing if not enough is held
func (inv *Inventory) Remove(typeID TypeID, qty int) error {
	available := inv.amounts[typeID]
	if qty > available {
		return NewInsufficientInventoryError(typeID, qty, available)
	}
	inv.set(typeID, available-qty)
	return nil
}

// RemoveClamped debits up to qty of a type and returns the amount actually removed
func (inv *Inventory) RemoveClamped(typeID TypeID, qty int) int {
	available := inv.amounts[typeID]
	if qty > available {
		qty = available
	}
	inv.set(typeID, available-qty)
	return qty
}

func (inv *Inventory) set(typeID TypeID, qty int) {
	if qty <= 0 {
		delete(inv.amounts, typeID)
		return
	}
	inv.amounts[typeID] = qty
}

// Volume returns the occupied volume given a per-type unit volume lookup
func (inv Inventory) Volume(volumeOf func(TypeID) float64) float64 {
	if volumeOf == nil {
		return 0
	}
	// Sum in type order so floating point totals are reproducible
	total := 0.0
	for _, typeID := range inv.Types() {
		total += float64(inv.amounts[typeID]) * volumeOf(typeID)
	}
	return total
}

// Clone returns an independent copy of the ledger
func (inv Inventory) Clone() Inventory {
	if inv.amounts == nil {
		return Inventory{}
	}
	clone := Inventory{amounts: make(map[TypeID]int, len(inv.amounts))}
	for typeID, qty := range inv.amounts {
		clone.amounts[typeID] = qty
	}
	return clone
}

// ToMap returns a copy of the ledger contents
func (inv Inventory) ToMap() map[TypeID]int {
	out := make(map[TypeID]int, len(inv.amounts))
	for typeID, qty := range inv.amounts {
		out[typeID] = qty
	}
	return out
}

// Equal reports whether two ledgers hold identical contents
func (inv Inventory) Equal(other Inventory) bool {
	if len(inv.amounts) != len(other.amounts) {
		return false
	}
	for typeID, qty := range inv.amounts {
		if other.amounts[typeID] != qty {
			return false
		}
	}
	return true
}

// Entries returns the contents as quantities sorted by type
func (inv Inventory) Entries() []ResourceQuantity {
	entries := make([]ResourceQuantity, 0, len(inv.amounts))
	for typeID, qty := range inv.amounts {
		entries = append(entries, ResourceQuantity{Type: typeID, Quantity: qty})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Type < entries[j].Type })
	return entries
}
