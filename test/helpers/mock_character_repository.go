package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/colonysim-go/internal/domain/character"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// MockCharacterRepository is a test double for CharacterRepository interface
type MockCharacterRepository struct {
	mu         sync.RWMutex
	characters map[int64]*character.Character
	byName     map[string]*character.Character
}

// NewMockCharacterRepository creates a new mock character repository
func NewMockCharacterRepository() *MockCharacterRepository {
	return &MockCharacterRepository{
		characters: make(map[int64]*character.Character),
		byName:     make(map[string]*character.Character),
	}
}

// FindByID retrieves a character by ID
func (m *MockCharacterRepository) FindByID(ctx context.Context, id shared.CharacterID) (*character.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.characters[id.Value()]
	if !ok {
		return nil, shared.NewCharacterNotFoundError(id.Value())
	}
	return c, nil
}

// FindByName retrieves a character by name
func (m *MockCharacterRepository) FindByName(ctx context.Context, name string) (*character.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.byName[name]
	if !ok {
		return nil, shared.NewCharacterNotFoundError(0)
	}
	return c, nil
}

// ListAll returns every character ordered by id
func (m *MockCharacterRepository) ListAll(ctx context.Context) ([]*character.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*character.Character, 0, len(m.characters))
	for _, c := range m.characters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Value() < out[j].ID.Value() })
	return out, nil
}

// Add persists a character
func (m *MockCharacterRepository) Add(ctx context.Context, c *character.Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.characters[c.ID.Value()] = c
	m.byName[c.Name] = c
	return nil
}
