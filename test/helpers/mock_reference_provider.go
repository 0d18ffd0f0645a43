package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// MockReferenceProvider is a test double for planetary.ReferenceProvider
type MockReferenceProvider struct {
	mu sync.Mutex

	recipes map[planetary.RecipeID]*planetary.Recipe
	types   map[planetary.TypeID]*planetary.ResourceType

	recipeCalls    int
	typeCalls      int
	requestedTypes []planetary.TypeID
	err            error
}

// NewMockReferenceProvider creates a provider preloaded with the standard fixtures
func NewMockReferenceProvider() *MockReferenceProvider {
	m := &MockReferenceProvider{
		recipes: make(map[planetary.RecipeID]*planetary.Recipe),
		types:   make(map[planetary.TypeID]*planetary.ResourceType),
	}
	for _, t := range FixtureTypes() {
		m.types[t.ID] = t
	}
	for _, r := range FixtureRecipes() {
		m.recipes[r.ID] = r
	}
	return m
}

// AddRecipe registers a recipe
func (m *MockReferenceProvider) AddRecipe(r *planetary.Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes[r.ID] = r
}

// AddType registers a resource type
func (m *MockReferenceProvider) AddType(t *planetary.ResourceType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[t.ID] = t
}

// SetError makes every call fail with err
func (m *MockReferenceProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Recipes returns the known recipes among ids
func (m *MockReferenceProvider) Recipes(ctx context.Context, ids []planetary.RecipeID) (map[planetary.RecipeID]*planetary.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipeCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[planetary.RecipeID]*planetary.Recipe)
	for _, id := range ids {
		if r, ok := m.recipes[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

// Types returns the known types among ids
func (m *MockReferenceProvider) Types(ctx context.Context, ids []planetary.TypeID) (map[planetary.TypeID]*planetary.ResourceType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typeCalls++
	m.requestedTypes = append(m.requestedTypes, ids...)
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[planetary.TypeID]*planetary.ResourceType)
	for _, id := range ids {
		if t, ok := m.types[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

// RecipeCalls returns the number of Recipes calls
func (m *MockReferenceProvider) RecipeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recipeCalls
}

// TypeCalls returns the number of Types calls
func (m *MockReferenceProvider) TypeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.typeCalls
}

// RequestedTypes returns every type id requested so far, in call order
func (m *MockReferenceProvider) RequestedTypes() []planetary.TypeID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]planetary.TypeID, len(m.requestedTypes))
	copy(out, m.requestedTypes)
	return out
}

// SaveTypes stores types, making the mock a planetary.ReferenceRepository
func (m *MockReferenceProvider) SaveTypes(ctx context.Context, types []*planetary.ResourceType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, t := range types {
		m.types[t.ID] = t
	}
	return nil
}

// SaveRecipes stores recipes
func (m *MockReferenceProvider) SaveRecipes(ctx context.Context, recipes []*planetary.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, r := range recipes {
		m.recipes[r.ID] = r
	}
	return nil
}

// ListRecipes returns every stored recipe ordered by id
func (m *MockReferenceProvider) ListRecipes(ctx context.Context) ([]*planetary.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*planetary.Recipe, 0, len(m.recipes))
	for _, r := range m.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
