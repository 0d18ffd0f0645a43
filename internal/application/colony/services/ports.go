package services

import (
	"context"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// ColonyDigest holds the cheap derived scalars of a colony kept for
// longer-lived display, beyond the lifetime of any simulation
type ColonyDigest struct {
	Owner                  int64                       `json:"owner"`
	ColonyID               int64                       `json:"colony_id"`
	Version                string                      `json:"version"`
	NearestExpiry          *time.Time                  `json:"nearest_expiry,omitempty"`
	ExpiredExtractors      int                         `json:"expired_extractors"`
	ExpiringSoonExtractors int                         `json:"expiring_soon_extractors"`
	FinalProducts          []planetary.TypeID          `json:"final_products"`
	StorageFill            map[planetary.PinID]float64 `json:"storage_fill,omitempty"`
	ComputedAt             time.Time                   `json:"computed_at"`
}

// DigestFromSummary extracts the digest of a summary
func DigestFromSummary(summary *planetary.ColonySummary, computedAt time.Time) *ColonyDigest {
	digest := &ColonyDigest{
		Owner:                  summary.Owner.Value(),
		ColonyID:               int64(summary.ColonyID),
		Version:                summary.Version,
		NearestExpiry:          summary.NearestExpiry,
		ExpiredExtractors:      summary.ExpiredExtractors,
		ExpiringSoonExtractors: summary.ExpiringSoonExtractors,
		FinalProducts:          make([]planetary.TypeID, 0, len(summary.FinalProducts)),
		StorageFill:            summary.StorageFill,
		ComputedAt:             computedAt,
	}
	for _, fp := range summary.FinalProducts {
		digest.FinalProducts = append(digest.FinalProducts, fp.TypeID)
	}
	return digest
}

// SummaryStore persists colony digests
type SummaryStore interface {
	Get(ctx context.Context, ref planetary.ColonyRef) (*ColonyDigest, error)
	Set(ctx context.Context, digest *ColonyDigest) error
	Delete(ctx context.Context, ref planetary.ColonyRef) error
	ListByOwner(ctx context.Context, owner shared.CharacterID) ([]*ColonyDigest, error)
}

// AggregatorMetrics observes aggregation runs
type AggregatorMetrics interface {
	ObserveFetch(duration time.Duration, err error)
	RecordResult(status string)
	RecordCacheLookup(hit bool)
	SetInFlight(n int)
}

// Result statuses reported to AggregatorMetrics
const (
	ResultStatusComputed  = "computed"
	ResultStatusCached    = "cached"
	ResultStatusFailed    = "failed"
	ResultStatusCancelled = "cancelled"
)

type noOpMetrics struct{}

func (noOpMetrics) ObserveFetch(time.Duration, error) {}
func (noOpMetrics) RecordResult(string)               {}
func (noOpMetrics) RecordCacheLookup(bool)            {}
func (noOpMetrics) SetInFlight(int)                   {}
