package dtos

import (
	"sort"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// QuantityDTO is one resource amount
type QuantityDTO struct {
	TypeID   int64 `json:"type_id"`
	Quantity int   `json:"quantity"`
}

// PinDTO is the serialized form of a simulated pin
type PinDTO struct {
	PinID             int64         `json:"pin_id"`
	TypeID            int64         `json:"type_id"`
	Kind              string        `json:"kind"`
	Status            string        `json:"status"`
	Progress          float64       `json:"progress"`
	CycleIndex        int           `json:"cycle_index"`
	CurrentCycleYield int           `json:"current_cycle_yield"`
	ExpiryTime        *time.Time    `json:"expiry_time,omitempty"`
	Contents          []QuantityDTO `json:"contents"`
}

// FinalProductDTO is a final product with display metadata
type FinalProductDTO struct {
	TypeID  int64  `json:"type_id"`
	Name    string `json:"name"`
	IconRef string `json:"icon_ref"`
}

// StorageFillDTO is the fill ratio of one storage-capable pin
type StorageFillDTO struct {
	PinID int64   `json:"pin_id"`
	Fill  float64 `json:"fill"`
}

// ColonySummaryDTO is the wire shape of a colony summary, shared by the HTTP
// and gRPC surfaces
type ColonySummaryDTO struct {
	CharacterID            int64             `json:"character_id"`
	ColonyID               int64             `json:"colony_id"`
	PlanetType             string            `json:"planet_type"`
	Version                string            `json:"version"`
	TargetTime             time.Time         `json:"target_time"`
	NearestExpiry          *time.Time        `json:"nearest_expiry,omitempty"`
	ExpiredExtractors      int               `json:"expired_extractors"`
	ExpiringSoonExtractors int               `json:"expiring_soon_extractors"`
	Pins                   []PinDTO          `json:"pins"`
	StorageFill            []StorageFillDTO  `json:"storage_fill"`
	FinalProducts          []FinalProductDTO `json:"final_products"`
	Issues                 []string          `json:"issues,omitempty"`
	Cached                 bool              `json:"cached"`
}

// ColonyResultDTO is one entry of a multi-colony listing. Exactly one of
// Summary and Error is set.
type ColonyResultDTO struct {
	Index       int               `json:"index"`
	CharacterID int64             `json:"character_id"`
	ColonyID    int64             `json:"colony_id"`
	Summary     *ColonySummaryDTO `json:"summary,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// SummaryToDTO converts a domain summary. Storage fill entries are ordered by
// pin id.
func SummaryToDTO(summary *planetary.ColonySummary, issues []planetary.ResolveIssue, cached bool) *ColonySummaryDTO {
	if summary == nil {
		return nil
	}

	dto := &ColonySummaryDTO{
		CharacterID:            summary.Owner.Value(),
		ColonyID:               int64(summary.ColonyID),
		PlanetType:             summary.PlanetType,
		Version:                summary.Version,
		TargetTime:             summary.TargetTime,
		NearestExpiry:          summary.NearestExpiry,
		ExpiredExtractors:      summary.ExpiredExtractors,
		ExpiringSoonExtractors: summary.ExpiringSoonExtractors,
		Pins:                   make([]PinDTO, 0, len(summary.Pins)),
		StorageFill:            make([]StorageFillDTO, 0, len(summary.StorageFill)),
		FinalProducts:          make([]FinalProductDTO, 0, len(summary.FinalProducts)),
		Cached:                 cached,
	}

	for _, pin := range summary.Pins {
		contents := make([]QuantityDTO, 0, len(pin.Contents))
		for _, q := range pin.Contents {
			contents = append(contents, QuantityDTO{TypeID: int64(q.Type), Quantity: q.Quantity})
		}
		dto.Pins = append(dto.Pins, PinDTO{
			PinID:             int64(pin.PinID),
			TypeID:            int64(pin.TypeID),
			Kind:              string(pin.Kind),
			Status:            string(pin.Status),
			Progress:          pin.Progress,
			CycleIndex:        pin.CycleIndex,
			CurrentCycleYield: pin.CurrentCycleYield,
			ExpiryTime:        pin.ExpiryTime,
			Contents:          contents,
		})
	}

	for pinID, fill := range summary.StorageFill {
		dto.StorageFill = append(dto.StorageFill, StorageFillDTO{PinID: int64(pinID), Fill: fill})
	}
	sort.Slice(dto.StorageFill, func(i, j int) bool { return dto.StorageFill[i].PinID < dto.StorageFill[j].PinID })

	for _, fp := range summary.FinalProducts {
		dto.FinalProducts = append(dto.FinalProducts, FinalProductDTO{TypeID: int64(fp.TypeID), Name: fp.Name, IconRef: fp.IconRef})
	}

	for _, issue := range issues {
		dto.Issues = append(dto.Issues, issue.String())
	}
	return dto
}

// ResultToDTO converts one aggregation result
func ResultToDTO(result services.ColonyResult) ColonyResultDTO {
	dto := ColonyResultDTO{
		Index:       result.Index,
		CharacterID: result.Request.Ref.Owner.Value(),
		ColonyID:    int64(result.Request.Ref.ColonyID),
	}
	if result.Err != nil {
		dto.Error = result.Err.Error()
		return dto
	}
	dto.Summary = SummaryToDTO(result.Summary, result.Issues, result.Cached)
	return dto
}
