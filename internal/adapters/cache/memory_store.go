package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

type memoryEntry struct {
	digest    services.ColonyDigest
	expiresAt time.Time
}

// MemoryStore is an in-process SummaryStore
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[planetary.ColonyRef]memoryEntry
	ttl     time.Duration
	clock   shared.Clock
}

// NewMemoryStore creates an in-process store. A zero ttl keeps digests until
// replaced. If clock is nil, uses RealClock.
func NewMemoryStore(ttl time.Duration, clock shared.Clock) *MemoryStore {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &MemoryStore{
		entries: make(map[planetary.ColonyRef]memoryEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the digest of ref, or nil when none is stored
func (s *MemoryStore) Get(ctx context.Context, ref planetary.ColonyRef) (*services.ColonyDigest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[ref]
	if !ok || s.expired(entry) {
		return nil, nil
	}
	digest := entry.digest
	return &digest, nil
}

// Set stores a digest, replacing any previous one of the same colony
func (s *MemoryStore) Set(ctx context.Context, digest *services.ColonyDigest) error {
	ref, err := refOf(digest)
	if err != nil {
		return err
	}

	entry := memoryEntry{digest: *digest}
	if s.ttl > 0 {
		entry.expiresAt = s.clock.Now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ref] = entry
	return nil
}

// Delete removes the digest of ref
func (s *MemoryStore) Delete(ctx context.Context, ref planetary.ColonyRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, ref)
	return nil
}

// ListByOwner returns the digests of owner ordered by colony id
func (s *MemoryStore) ListByOwner(ctx context.Context, owner shared.CharacterID) ([]*services.ColonyDigest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*services.ColonyDigest
	for ref, entry := range s.entries {
		if !ref.Owner.Equals(owner) || s.expired(entry) {
			continue
		}
		digest := entry.digest
		out = append(out, &digest)
	}
	sortDigests(out)
	return out, nil
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.clock.Now().Before(entry.expiresAt)
}

func refOf(digest *services.ColonyDigest) (planetary.ColonyRef, error) {
	owner, err := shared.NewCharacterID(digest.Owner)
	if err != nil {
		return planetary.ColonyRef{}, err
	}
	return planetary.ColonyRef{Owner: owner, ColonyID: planetary.ColonyID(digest.ColonyID)}, nil
}

func sortDigests(digests []*services.ColonyDigest) {
	sort.Slice(digests, func(i, j int) bool { return digests[i].ColonyID < digests[j].ColonyID })
}
