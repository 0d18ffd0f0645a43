package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// GormSnapshotRepository stores the last fetched snapshot of every colony
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GORM snapshot repository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// Save replaces the stored snapshot of a colony
func (r *GormSnapshotRepository) Save(ctx context.Context, snapshot *planetary.Snapshot, fetchedAt time.Time) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	model := &SnapshotModel{
		OwnerID:    snapshot.Owner,
		ColonyID:   snapshot.ColonyID,
		PlanetType: snapshot.PlanetType,
		LastUpdate: snapshot.LastUpdate,
		Version:    snapshot.Version(),
		Payload:    string(payload),
		FetchedAt:  fetchedAt,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save snapshot: %w", result.Error)
	}
	return nil
}

// Load returns the stored snapshot of a colony and when it was fetched.
// A colony never stored returns a nil snapshot and no error.
func (r *GormSnapshotRepository) Load(ctx context.Context, ref planetary.ColonyRef) (*planetary.Snapshot, time.Time, error) {
	var model SnapshotModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND colony_id = ?", ref.Owner.Value(), int64(ref.ColonyID)).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("failed to load snapshot: %w", result.Error)
	}

	var snapshot planetary.Snapshot
	if err := json.Unmarshal([]byte(model.Payload), &snapshot); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode stored snapshot: %w", err)
	}
	return &snapshot, model.FetchedAt, nil
}

// ListColonies returns the stored colonies of owner ordered by colony id
func (r *GormSnapshotRepository) ListColonies(ctx context.Context, owner shared.CharacterID) ([]planetary.ColonyRef, error) {
	var ids []int64
	result := r.db.WithContext(ctx).Model(&SnapshotModel{}).
		Where("owner_id = ?", owner.Value()).
		Order("colony_id").
		Pluck("colony_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list stored colonies: %w", result.Error)
	}

	refs := make([]planetary.ColonyRef, len(ids))
	for i, id := range ids {
		refs[i] = planetary.ColonyRef{Owner: owner, ColonyID: planetary.ColonyID(id)}
	}
	return refs, nil
}

// Delete removes the stored snapshot of a colony
func (r *GormSnapshotRepository) Delete(ctx context.Context, ref planetary.ColonyRef) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND colony_id = ?", ref.Owner.Value(), int64(ref.ColonyID)).
		Delete(&SnapshotModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete snapshot: %w", result.Error)
	}
	return nil
}
