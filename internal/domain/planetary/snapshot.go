package planetary

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Snapshot is a raw planet layout as delivered by the game API. Timestamps are
// kept as wire strings (RFC 3339) so that malformed values can be isolated to
// the pin that carries them. The rfc3339 validation tag is registered by the
// snapshot converter.
type Snapshot struct {
	Owner      int64       `json:"owner_id" validate:"required,gt=0"`
	ColonyID   int64       `json:"planet_id" validate:"required,gt=0"`
	PlanetType string      `json:"planet_type"`
	LastUpdate string      `json:"last_update" validate:"required,rfc3339"`
	Pins       []PinRecord `json:"pins"`
}

// PinRecord is one facility in a raw snapshot
type PinRecord struct {
	PinID          int64            `json:"pin_id" validate:"required,gt=0"`
	TypeID         int64            `json:"type_id" validate:"required,gt=0"`
	SchematicID    int64            `json:"schematic_id,omitempty" validate:"gte=0"`
	LastCycleStart string           `json:"last_cycle_start,omitempty" validate:"omitempty,rfc3339"`
	InstallTime    string           `json:"install_time,omitempty" validate:"omitempty,rfc3339"`
	ExpiryTime     string           `json:"expiry_time,omitempty" validate:"omitempty,rfc3339"`
	Extractor      *ExtractorRecord `json:"extractor_details,omitempty"`
	Contents       []ContentRecord  `json:"contents,omitempty" validate:"dive"`
}

// ExtractorRecord is the extraction program of a raw extractor pin
type ExtractorRecord struct {
	CycleTime     int64 `json:"cycle_time" validate:"gt=0"`
	QtyPerCycle   int   `json:"qty_per_cycle" validate:"gte=0"`
	ProductTypeID int64 `json:"product_type_id" validate:"gt=0"`
}

// ContentRecord is one inventory entry of a raw pin
type ContentRecord struct {
	TypeID int64 `json:"type_id" validate:"gt=0"`
	Amount int   `json:"amount" validate:"gte=0"`
}

// Version identifies the snapshot content. Two snapshots with equal versions
// simulate identically.
func (s *Snapshot) Version() string {
	payload, err := json.Marshal(s.Pins)
	if err != nil {
		payload = []byte(fmt.Sprintf("%v", s.Pins))
	}
	return fmt.Sprintf("%d/%d/%s/%016x", s.Owner, s.ColonyID, s.LastUpdate, xxhash.Sum64(payload))
}

// TypeIDs returns every type id referenced by the snapshot, ascending
func (s *Snapshot) TypeIDs() []TypeID {
	seen := make(map[TypeID]struct{})
	add := func(id int64) {
		if id > 0 {
			seen[TypeID(id)] = struct{}{}
		}
	}
	for _, pin := range s.Pins {
		add(pin.TypeID)
		if pin.Extractor != nil {
			add(pin.Extractor.ProductTypeID)
		}
		for _, c := range pin.Contents {
			add(c.TypeID)
		}
	}

	ids := make([]TypeID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return SortTypeIDs(ids)
}

// RecipeIDs returns every schematic id referenced by the snapshot, ascending
func (s *Snapshot) RecipeIDs() []RecipeID {
	seen := make(map[RecipeID]struct{})
	var ids []RecipeID
	for _, pin := range s.Pins {
		if pin.SchematicID <= 0 {
			continue
		}
		id := RecipeID(pin.SchematicID)
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sortRecipeIDs(ids)
	return ids
}
