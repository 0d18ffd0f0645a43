package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// ReferenceCache memoizes static recipe and type metadata for the lifetime of a
// process. Reads run concurrently; loads are serialized so that each missing
// id is requested from the provider at most once, in one batch per call.
type ReferenceCache struct {
	provider planetary.ReferenceProvider

	mu      sync.RWMutex
	loadMu  sync.Mutex
	recipes map[planetary.RecipeID]*planetary.Recipe
	types   map[planetary.TypeID]*planetary.ResourceType
	// Ids the provider was asked for but did not return
	missingRecipes map[planetary.RecipeID]struct{}
	missingTypes   map[planetary.TypeID]struct{}
}

// NewReferenceCache creates an empty cache over a provider
func NewReferenceCache(provider planetary.ReferenceProvider) *ReferenceCache {
	return &ReferenceCache{
		provider:       provider,
		recipes:        make(map[planetary.RecipeID]*planetary.Recipe),
		types:          make(map[planetary.TypeID]*planetary.ResourceType),
		missingRecipes: make(map[planetary.RecipeID]struct{}),
		missingTypes:   make(map[planetary.TypeID]struct{}),
	}
}

// Recipes returns the recipes for ids. Ids unknown to the provider are absent
// from the result and are not requested again.
func (c *ReferenceCache) Recipes(ctx context.Context, ids []planetary.RecipeID) (map[planetary.RecipeID]*planetary.Recipe, error) {
	if result, missing := c.lookupRecipes(ids); len(missing) == 0 {
		return result, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// Another caller may have loaded them while we waited
	_, missing := c.lookupRecipes(ids)
	if len(missing) > 0 {
		loaded, err := c.provider.Recipes(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load recipes: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.mu.Lock()
		for _, id := range missing {
			if recipe, ok := loaded[id]; ok && recipe != nil {
				c.recipes[id] = recipe
			} else {
				c.missingRecipes[id] = struct{}{}
			}
		}
		c.mu.Unlock()
	}

	result, _ := c.lookupRecipes(ids)
	return result, nil
}

// Types returns the resource types for ids, loading missing ones in one batch
func (c *ReferenceCache) Types(ctx context.Context, ids []planetary.TypeID) (map[planetary.TypeID]*planetary.ResourceType, error) {
	if result, missing := c.lookupTypes(ids); len(missing) == 0 {
		return result, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	_, missing := c.lookupTypes(ids)
	if len(missing) > 0 {
		loaded, err := c.provider.Types(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load types: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.mu.Lock()
		for _, id := range missing {
			if t, ok := loaded[id]; ok && t != nil {
				c.types[id] = t
			} else {
				c.missingTypes[id] = struct{}{}
			}
		}
		c.mu.Unlock()
	}

	result, _ := c.lookupTypes(ids)
	return result, nil
}

// RefsFor loads every recipe and type a snapshot references
func (c *ReferenceCache) RefsFor(ctx context.Context, snapshot *planetary.Snapshot) (ConversionRefs, error) {
	recipes, err := c.Recipes(ctx, snapshot.RecipeIDs())
	if err != nil {
		return ConversionRefs{}, err
	}

	typeIDs := snapshot.TypeIDs()
	for _, recipe := range recipes {
		typeIDs = append(typeIDs, recipe.Output.Type)
		typeIDs = append(typeIDs, recipe.InputTypes()...)
	}
	types, err := c.Types(ctx, typeIDs)
	if err != nil {
		return ConversionRefs{}, err
	}

	return ConversionRefs{Recipes: recipes, Types: types}, nil
}

// Size returns the number of cached recipes and types
func (c *ReferenceCache) Size() (recipes, types int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recipes), len(c.types)
}

func (c *ReferenceCache) lookupRecipes(ids []planetary.RecipeID) (map[planetary.RecipeID]*planetary.Recipe, []planetary.RecipeID) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[planetary.RecipeID]*planetary.Recipe, len(ids))
	var missing []planetary.RecipeID
	seen := make(map[planetary.RecipeID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if recipe, ok := c.recipes[id]; ok {
			result[id] = recipe
		} else if _, known := c.missingRecipes[id]; !known {
			missing = append(missing, id)
		}
	}
	return result, missing
}

func (c *ReferenceCache) lookupTypes(ids []planetary.TypeID) (map[planetary.TypeID]*planetary.ResourceType, []planetary.TypeID) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[planetary.TypeID]*planetary.ResourceType, len(ids))
	var missing []planetary.TypeID
	seen := make(map[planetary.TypeID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if t, ok := c.types[id]; ok {
			result[id] = t
		} else if _, known := c.missingTypes[id]; !known {
			missing = append(missing, id)
		}
	}
	return result, missing
}
