package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSnapshot(colonyID int64) *planetary.Snapshot {
	return helpers.NewSnapshotBuilder(90000001, colonyID, t0).
		WithExtractor(1, helpers.TypeMicroorganisms, 5000, 30*time.Minute, t0, t0.Add(24*time.Hour)).
		WithStorage(2, map[planetary.TypeID]int{helpers.TypeMicroorganisms: 100}).
		Build()
}

func TestSnapshotRepository_SaveLoadList(t *testing.T) {
	// Arrange
	repo := persistence.NewGormSnapshotRepository(helpers.NewTestDB(t))
	ctx := context.Background()
	snapshot := testSnapshot(40000002)

	// Act
	require.NoError(t, repo.Save(ctx, snapshot, t0))
	require.NoError(t, repo.Save(ctx, testSnapshot(40000001), t0))

	// Assert
	ref := planetary.ColonyRef{Owner: shared.MustNewCharacterID(90000001), ColonyID: 40000002}
	loaded, fetchedAt, err := repo.Load(ctx, ref)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, fetchedAt.Equal(t0))
	assert.Equal(t, snapshot.Version(), loaded.Version())

	refs, err := repo.ListColonies(ctx, ref.Owner)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, planetary.ColonyID(40000001), refs[0].ColonyID)

	require.NoError(t, repo.Delete(ctx, ref))
	gone, _, err := repo.Load(ctx, ref)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCachedSnapshotProvider_ServesFreshCopies(t *testing.T) {
	// Arrange
	upstream := helpers.NewMockSnapshotProvider()
	ref := upstream.AddSnapshot(testSnapshot(40000001))
	clock := shared.NewMockClock(t0)
	provider := persistence.NewCachedSnapshotProvider(upstream, persistence.NewGormSnapshotRepository(helpers.NewTestDB(t)), 10*time.Minute, clock)
	ctx := context.Background()

	// Act
	_, err := provider.FetchSnapshot(ctx, ref, false)
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)
	_, err = provider.FetchSnapshot(ctx, ref, false)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, upstream.FetchCalls(ref))

	clock.Advance(10 * time.Minute)
	_, err = provider.FetchSnapshot(ctx, ref, false)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.FetchCalls(ref))
}

func TestCachedSnapshotProvider_ForceRefreshGoesUpstream(t *testing.T) {
	upstream := helpers.NewMockSnapshotProvider()
	ref := upstream.AddSnapshot(testSnapshot(40000001))
	provider := persistence.NewCachedSnapshotProvider(upstream, persistence.NewGormSnapshotRepository(helpers.NewTestDB(t)), time.Hour, shared.NewMockClock(t0))

	_, err := provider.FetchSnapshot(context.Background(), ref, false)
	require.NoError(t, err)
	_, err = provider.FetchSnapshot(context.Background(), ref, true)
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.FetchCalls(ref))
	assert.Equal(t, 1, upstream.ForcedCalls())
}

func TestCachedSnapshotProvider_StaleFallback(t *testing.T) {
	// Arrange
	upstream := helpers.NewMockSnapshotProvider()
	ref := upstream.AddSnapshot(testSnapshot(40000001))
	clock := shared.NewMockClock(t0)
	provider := persistence.NewCachedSnapshotProvider(upstream, persistence.NewGormSnapshotRepository(helpers.NewTestDB(t)), time.Minute, clock)
	_, err := provider.FetchSnapshot(context.Background(), ref, false)
	require.NoError(t, err)

	upstream.FailColony(ref, errors.New("esi: 502"))
	clock.Advance(time.Hour)

	// Act
	stale, err := provider.FetchSnapshot(context.Background(), ref, false)
	_, forcedErr := provider.FetchSnapshot(context.Background(), ref, true)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(40000001), stale.ColonyID)
	assert.Error(t, forcedErr)
}

func TestCachedSnapshotProvider_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	// Arrange
	upstream := helpers.NewMockSnapshotProvider()
	ref := upstream.AddSnapshot(testSnapshot(40000003))
	upstream.Gate = make(chan struct{})
	provider := persistence.NewCachedSnapshotProvider(upstream, persistence.NewGormSnapshotRepository(helpers.NewTestDB(t)), time.Hour, shared.NewMockClock(t0))

	type fetchResult struct {
		snapshot *planetary.Snapshot
		err      error
	}
	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	resultA := make(chan fetchResult, 1)
	resultB := make(chan fetchResult, 1)

	// Act
	go func() {
		s, err := provider.FetchSnapshot(ctxA, ref, false)
		resultA <- fetchResult{s, err}
	}()
	require.Eventually(t, func() bool { return upstream.StartedCount() == 1 }, time.Second, 5*time.Millisecond)
	go func() {
		s, err := provider.FetchSnapshot(context.Background(), ref, false)
		resultB <- fetchResult{s, err}
	}()
	time.Sleep(50 * time.Millisecond)
	cancelA()
	a := <-resultA
	close(upstream.Gate)
	b := <-resultB

	// Assert
	assert.ErrorIs(t, a.err, context.Canceled)
	require.NoError(t, b.err)
	assert.Equal(t, int64(40000003), b.snapshot.ColonyID)
	assert.Equal(t, 1, upstream.FetchCalls(ref))
}
