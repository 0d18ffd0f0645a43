package helpers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// MockSnapshotProvider is a test double for planetary.SnapshotProvider.
// It tracks call counts and the peak number of concurrent fetches.
type MockSnapshotProvider struct {
	mu sync.Mutex

	snapshots map[planetary.ColonyRef]*planetary.Snapshot
	colonies  map[int64][]planetary.ColonyRef
	failures  map[planetary.ColonyRef]error
	delays    map[planetary.ColonyRef]time.Duration

	// Gate, when set, blocks every fetch until it is closed or ctx is done
	Gate chan struct{}

	fetchCalls   map[planetary.ColonyRef]int
	forcedCalls  int
	inFlight     int
	peakInFlight int
	started      []planetary.ColonyRef
}

// NewMockSnapshotProvider creates an empty mock provider
func NewMockSnapshotProvider() *MockSnapshotProvider {
	return &MockSnapshotProvider{
		snapshots:  make(map[planetary.ColonyRef]*planetary.Snapshot),
		colonies:   make(map[int64][]planetary.ColonyRef),
		failures:   make(map[planetary.ColonyRef]error),
		delays:     make(map[planetary.ColonyRef]time.Duration),
		fetchCalls: make(map[planetary.ColonyRef]int),
	}
}

// AddSnapshot registers a snapshot and lists its colony under its owner
func (m *MockSnapshotProvider) AddSnapshot(s *planetary.Snapshot) planetary.ColonyRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := planetary.ColonyRef{Owner: shared.MustNewCharacterID(s.Owner), ColonyID: planetary.ColonyID(s.ColonyID)}
	if _, exists := m.snapshots[ref]; !exists {
		m.colonies[s.Owner] = append(m.colonies[s.Owner], ref)
	}
	m.snapshots[ref] = s
	return ref
}

// FailColony makes fetches of ref fail with err
func (m *MockSnapshotProvider) FailColony(ref planetary.ColonyRef, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[ref] = err
}

// DelayColony makes fetches of ref take d
func (m *MockSnapshotProvider) DelayColony(ref planetary.ColonyRef, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[ref] = d
}

// FetchSnapshot returns the registered snapshot
func (m *MockSnapshotProvider) FetchSnapshot(ctx context.Context, ref planetary.ColonyRef, forceRefresh bool) (*planetary.Snapshot, error) {
	m.mu.Lock()
	m.fetchCalls[ref]++
	if forceRefresh {
		m.forcedCalls++
	}
	m.inFlight++
	if m.inFlight > m.peakInFlight {
		m.peakInFlight = m.inFlight
	}
	m.started = append(m.started, ref)
	delay := m.delays[ref]
	gate := m.Gate
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failures[ref]; ok {
		return nil, err
	}
	s, ok := m.snapshots[ref]
	if !ok {
		return nil, fmt.Errorf("colony %d not found for character %s", ref.ColonyID, ref.Owner)
	}
	return s, nil
}

// ListColonies returns the colonies registered for owner
func (m *MockSnapshotProvider) ListColonies(ctx context.Context, owner shared.CharacterID) ([]planetary.ColonyRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]planetary.ColonyRef, len(m.colonies[owner.Value()]))
	copy(refs, m.colonies[owner.Value()])
	return refs, nil
}

// FetchCalls returns how many times ref was fetched
func (m *MockSnapshotProvider) FetchCalls(ref planetary.ColonyRef) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls[ref]
}

// ForcedCalls returns how many fetches asked for a forced refresh
func (m *MockSnapshotProvider) ForcedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forcedCalls
}

// PeakInFlight returns the highest number of concurrent fetches observed
func (m *MockSnapshotProvider) PeakInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peakInFlight
}

// StartedCount returns how many fetches have started
func (m *MockSnapshotProvider) StartedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.started)
}
