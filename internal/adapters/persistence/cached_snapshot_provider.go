package persistence

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// CachedSnapshotProvider serves snapshots from the database while they are
// younger than maxAge and fetches from upstream otherwise. A forced refresh
// always goes upstream. When upstream fails on a regular fetch, the stored
// snapshot is served instead. Concurrent upstream fetches of the same colony
// are collapsed into one request that outlives any single caller.
type CachedSnapshotProvider struct {
	upstream planetary.SnapshotProvider
	repo     *GormSnapshotRepository
	maxAge   time.Duration
	clock    shared.Clock
	flight   singleflight.Group
}

// sharedFetchTimeout bounds an upstream fetch shared by several callers
const sharedFetchTimeout = 2 * time.Minute

// NewCachedSnapshotProvider creates a caching provider. If clock is nil, uses RealClock.
func NewCachedSnapshotProvider(upstream planetary.SnapshotProvider, repo *GormSnapshotRepository, maxAge time.Duration, clock shared.Clock) *CachedSnapshotProvider {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CachedSnapshotProvider{
		upstream: upstream,
		repo:     repo,
		maxAge:   maxAge,
		clock:    clock,
	}
}

// FetchSnapshot implements planetary.SnapshotProvider
func (p *CachedSnapshotProvider) FetchSnapshot(ctx context.Context, ref planetary.ColonyRef, forceRefresh bool) (*planetary.Snapshot, error) {
	logger := common.LoggerFromContext(ctx)

	var stored *planetary.Snapshot
	if !forceRefresh {
		snapshot, fetchedAt, err := p.repo.Load(ctx, ref)
		if err != nil {
			logger.Log("WARNING", "Snapshot cache read failed", map[string]interface{}{
				"colony_id": int64(ref.ColonyID),
				"error":     err.Error(),
			})
		}
		if snapshot != nil && p.clock.Now().Sub(fetchedAt) < p.maxAge {
			return snapshot, nil
		}
		stored = snapshot
	}

	key := fmt.Sprintf("%d/%d/%t", ref.Owner.Value(), int64(ref.ColonyID), forceRefresh)
	// Detached from the caller: a waiter cancelling leaves the shared fetch running
	flight := p.flight.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return p.fetchAndStore(fetchCtx, ref, forceRefresh)
	})

	var result singleflight.Result
	select {
	case result = <-flight:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := result.Err; err != nil {
		if stored != nil && ctx.Err() == nil {
			logger.Log("WARNING", "Serving stale snapshot after fetch failure", map[string]interface{}{
				"colony_id":   int64(ref.ColonyID),
				"last_update": stored.LastUpdate,
				"error":       err.Error(),
			})
			return stored, nil
		}
		return nil, err
	}
	return result.Val.(*planetary.Snapshot), nil
}

func (p *CachedSnapshotProvider) fetchAndStore(ctx context.Context, ref planetary.ColonyRef, forceRefresh bool) (*planetary.Snapshot, error) {
	snapshot, err := p.upstream.FetchSnapshot(ctx, ref, forceRefresh)
	if err != nil {
		return nil, err
	}

	if err := p.repo.Save(ctx, snapshot, p.clock.Now()); err != nil {
		common.LoggerFromContext(ctx).Log("WARNING", "Snapshot cache write failed", map[string]interface{}{
			"colony_id": int64(ref.ColonyID),
			"error":     err.Error(),
		})
	}
	return snapshot, nil
}

// ListColonies asks upstream and falls back to the stored colonies
func (p *CachedSnapshotProvider) ListColonies(ctx context.Context, owner shared.CharacterID) ([]planetary.ColonyRef, error) {
	refs, err := p.upstream.ListColonies(ctx, owner)
	if err == nil {
		return refs, nil
	}

	stored, storeErr := p.repo.ListColonies(ctx, owner)
	if storeErr != nil || len(stored) == 0 {
		return nil, err
	}
	common.LoggerFromContext(ctx).Log("WARNING", "Listing stored colonies after fetch failure", map[string]interface{}{
		"character_id": owner.Value(),
		"error":        err.Error(),
	})
	return stored, nil
}
