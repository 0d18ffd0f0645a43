package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

func TestReferenceRepository_SaveAndLoad(t *testing.T) {
	// Arrange
	repo := persistence.NewGormReferenceRepository(helpers.NewTestDB(t))
	ctx := context.Background()

	// Act
	require.NoError(t, repo.SaveTypes(ctx, helpers.FixtureTypes()))
	require.NoError(t, repo.SaveRecipes(ctx, helpers.FixtureRecipes()))

	// Assert
	recipes, err := repo.Recipes(ctx, []planetary.RecipeID{helpers.RecipeWater, 999})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	water := recipes[helpers.RecipeWater]
	assert.Equal(t, helpers.TypeWater, water.Output.Type)
	assert.Equal(t, 20, water.Output.Quantity)
	require.Len(t, water.Inputs, 1)
	assert.Equal(t, helpers.TypeAqueousLiquids, water.Inputs[0].Type)
	assert.Equal(t, 3000, water.Inputs[0].Quantity)

	types, err := repo.Types(ctx, []planetary.TypeID{helpers.TypeWater, helpers.TypeStorageFacility})
	require.NoError(t, err)
	assert.Equal(t, "Water", types[helpers.TypeWater].Name)
	assert.Equal(t, planetary.GroupStorageFacility, types[helpers.TypeStorageFacility].GroupID)
}

func TestReferenceRepository_SaveRecipesReplacesInputs(t *testing.T) {
	repo := persistence.NewGormReferenceRepository(helpers.NewTestDB(t))
	ctx := context.Background()
	first, err := planetary.NewRecipe(500, "Test", planetary.ResourceQuantity{Type: 1, Quantity: 5}, time.Hour,
		[]planetary.ResourceQuantity{{Type: 2, Quantity: 10}, {Type: 3, Quantity: 10}})
	require.NoError(t, err)
	second, err := planetary.NewRecipe(500, "Test", planetary.ResourceQuantity{Type: 1, Quantity: 5}, time.Hour,
		[]planetary.ResourceQuantity{{Type: 4, Quantity: 40}})
	require.NoError(t, err)

	require.NoError(t, repo.SaveRecipes(ctx, []*planetary.Recipe{first}))
	require.NoError(t, repo.SaveRecipes(ctx, []*planetary.Recipe{second}))

	all, err := repo.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []planetary.ResourceQuantity{{Type: 4, Quantity: 40}}, all[0].Inputs)
}

func TestReferenceRepository_EmptyRequests(t *testing.T) {
	repo := persistence.NewGormReferenceRepository(helpers.NewTestDB(t))

	recipes, err := repo.Recipes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, recipes)

	types, err := repo.Types(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, types)
}
