package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

func TestReferenceCache_LoadsMissingOnce(t *testing.T) {
	// Arrange
	provider := helpers.NewMockReferenceProvider()
	cache := services.NewReferenceCache(provider)
	ctx := context.Background()

	// Act
	first, err := cache.Recipes(ctx, []planetary.RecipeID{helpers.RecipeWater, 9999})
	require.NoError(t, err)
	second, err := cache.Recipes(ctx, []planetary.RecipeID{helpers.RecipeWater, 9999, helpers.RecipeWater})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, provider.RecipeCalls())
	assert.Len(t, first, 1)
	assert.Equal(t, first, second)
	recipes, _ := cache.Size()
	assert.Equal(t, 1, recipes)
}

func TestReferenceCache_ConcurrentReadersShareOneLoad(t *testing.T) {
	provider := helpers.NewMockReferenceProvider()
	cache := services.NewReferenceCache(provider)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			types, err := cache.Types(context.Background(), []planetary.TypeID{helpers.TypeWater, helpers.TypeBacteria})
			assert.NoError(t, err)
			assert.Len(t, types, 2)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, provider.TypeCalls())
}

func TestReferenceCache_ProviderErrorNotCached(t *testing.T) {
	provider := helpers.NewMockReferenceProvider()
	provider.SetError(errors.New("reference db unavailable"))
	cache := services.NewReferenceCache(provider)

	_, err := cache.Types(context.Background(), []planetary.TypeID{helpers.TypeWater})
	require.Error(t, err)

	provider.SetError(nil)
	types, err := cache.Types(context.Background(), []planetary.TypeID{helpers.TypeWater})

	require.NoError(t, err)
	assert.Len(t, types, 1)
	assert.Equal(t, 2, provider.TypeCalls())
}

func TestReferenceCache_CancelledLoadLeavesCacheUntouched(t *testing.T) {
	cache := services.NewReferenceCache(helpers.NewMockReferenceProvider())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Recipes(ctx, []planetary.RecipeID{helpers.RecipeWater})

	assert.ErrorIs(t, err, context.Canceled)
	recipes, _ := cache.Size()
	assert.Zero(t, recipes)
}

func TestReferenceCache_RefsForIncludesRecipeTypes(t *testing.T) {
	snapshot := helpers.NewSnapshotBuilder(90000001, 40000001, t0).
		WithFactory(2, helpers.RecipeWater, t0, nil).
		Build()

	refs, err := services.NewReferenceCache(helpers.NewMockReferenceProvider()).RefsFor(context.Background(), snapshot)

	require.NoError(t, err)
	assert.Contains(t, refs.Recipes, helpers.RecipeWater)
	assert.Contains(t, refs.Types, helpers.TypeWater)
	assert.Contains(t, refs.Types, helpers.TypeAqueousLiquids)
	assert.Contains(t, refs.Types, helpers.TypeBasicIndustry)
}
