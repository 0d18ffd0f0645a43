package planetary

import (
	"sort"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// PinView is the presentation shape of one simulated pin
type PinView struct {
	PinID             PinID
	TypeID            TypeID
	Kind              PinKind
	Status            PinStatus
	Progress          float64
	CycleIndex        int
	CurrentCycleYield int
	ExpiryTime        *time.Time
	Contents          []ResourceQuantity
}

// FinalProductView is a final product with its display metadata
type FinalProductView struct {
	TypeID  TypeID
	Name    string
	IconRef string
}

// ColonySummary is the only shape exported to presentation layers
type ColonySummary struct {
	Owner                  shared.CharacterID
	ColonyID               ColonyID
	PlanetType             string
	Version                string
	TargetTime             time.Time
	Pins                   []PinView
	NearestExpiry          *time.Time
	ExpiredExtractors      int
	ExpiringSoonExtractors int
	StorageFill            map[PinID]float64
	FinalProducts          []FinalProductView
}

// BuildSummary derives the presentation summary of a simulated colony.
//
// Types supplies names, icons and unit volumes; missing entries fall back to
// empty names and zero volume. Extractors expiring within expiringSoon of the
// target time are counted as expiring soon.
func BuildSummary(sim *SimulatedColony, finals FinalProducts, types map[TypeID]*ResourceType, expiringSoon time.Duration) *ColonySummary {
	colony := sim.Colony
	target := sim.TargetTime

	summary := &ColonySummary{
		Owner:       colony.Owner,
		ColonyID:    colony.ID,
		PlanetType:  colony.PlanetType,
		Version:     colony.Version,
		TargetTime:  target,
		Pins:        make([]PinView, 0, len(colony.Pins)),
		StorageFill: make(map[PinID]float64),
	}

	volumeOf := func(typeID TypeID) float64 {
		if t, ok := types[typeID]; ok && t != nil {
			return t.Volume
		}
		return 0
	}

	var upcoming, past []time.Time
	for i, pin := range colony.Pins {
		state := sim.States[i]
		view := PinView{
			PinID:             pin.ID,
			TypeID:            pin.TypeID,
			Kind:              pin.Kind,
			Status:            state.Status,
			Progress:          state.Progress,
			CycleIndex:        state.CycleIndex,
			CurrentCycleYield: state.CurrentCycleYield,
			Contents:          pin.Inventory.Entries(),
		}

		if pin.IsValid() && pin.Kind == PinKindExtractor {
			expiry := pin.Extractor.ExpiryTime
			view.ExpiryTime = &expiry
			if expiry.After(target) {
				upcoming = append(upcoming, expiry)
				if expiry.Sub(target) <= expiringSoon {
					summary.ExpiringSoonExtractors++
				}
			} else {
				past = append(past, expiry)
				summary.ExpiredExtractors++
			}
		}

		if pin.IsValid() && pin.Kind == PinKindStorage && pin.Storage.Capacity > 0 {
			summary.StorageFill[pin.ID] = pin.Inventory.Volume(volumeOf) / pin.Storage.Capacity
		}

		summary.Pins = append(summary.Pins, view)
	}

	summary.NearestExpiry = nearestExpiry(upcoming, past)

	summary.FinalProducts = make([]FinalProductView, 0, len(finals))
	for _, typeID := range finals {
		fv := FinalProductView{TypeID: typeID}
		if t, ok := types[typeID]; ok && t != nil {
			fv.Name = t.Name
			fv.IconRef = t.IconRef
		}
		summary.FinalProducts = append(summary.FinalProducts, fv)
	}

	return summary
}

// nearestExpiry picks the earliest upcoming expiry, or the most recent past one
// when every program has ended
func nearestExpiry(upcoming, past []time.Time) *time.Time {
	if len(upcoming) > 0 {
		sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Before(upcoming[j]) })
		return &upcoming[0]
	}
	if len(past) > 0 {
		sort.Slice(past, func(i, j int) bool { return past[i].After(past[j]) })
		return &past[0]
	}
	return nil
}
