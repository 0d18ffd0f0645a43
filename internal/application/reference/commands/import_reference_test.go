package commands_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/application/reference/commands"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

const referenceJSON = `{
  "types": [
    {"id": 9828, "name": "Silicon", "icon": "types/9828/icon", "volume": 0.38, "group_id": 1042},
    {"id": 2270, "name": "Noble Metals", "volume": 0.01, "group_id": 1032}
  ],
  "schematics": [
    {"id": 127, "name": "Silicon", "cycle_time": 1800,
     "output": {"type_id": 9828, "quantity": 20},
     "inputs": [{"type_id": 2270, "quantity": 1000}, {"type_id": 2270, "quantity": 2000}]},
    {"id": 999, "name": "Broken", "cycle_time": 0,
     "output": {"type_id": 9828, "quantity": 5},
     "inputs": []}
  ]
}`

func TestImportReference_SavesTypesAndSchematics(t *testing.T) {
	// Arrange
	repo := helpers.NewMockReferenceProvider()
	logger := helpers.NewMockLogger()
	ctx := common.WithLogger(context.Background(), logger)
	handler := commands.NewImportReferenceHandler(repo)

	// Act
	resp, err := handler.Handle(ctx, &commands.ImportReferenceCommand{Reader: strings.NewReader(referenceJSON)})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.ImportReferenceResponse)
	assert.Equal(t, 2, result.Types)
	assert.Equal(t, 1, result.Schematics)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, logger.CountLevel("WARNING"))

	recipes, err := repo.Recipes(ctx, []planetary.RecipeID{127, 999})
	require.NoError(t, err)
	require.Contains(t, recipes, planetary.RecipeID(127))
	assert.NotContains(t, recipes, planetary.RecipeID(999))
	require.Len(t, recipes[127].Inputs, 1)
	assert.Equal(t, 3000, recipes[127].Inputs[0].Quantity)

	types, err := repo.Types(ctx, []planetary.TypeID{9828})
	require.NoError(t, err)
	assert.Equal(t, "Silicon", types[9828].Name)
}

func TestImportReference_RejectsInvalidFile(t *testing.T) {
	handler := commands.NewImportReferenceHandler(helpers.NewMockReferenceProvider())

	_, err := handler.Handle(context.Background(), &commands.ImportReferenceCommand{
		Reader: strings.NewReader(`{"types": [{"id": 0, "name": ""}]}`),
	})
	assert.ErrorContains(t, err, "invalid reference file")

	_, err = handler.Handle(context.Background(), &commands.ImportReferenceCommand{Reader: strings.NewReader(`not json`)})
	assert.ErrorContains(t, err, "failed to decode")

	_, err = handler.Handle(context.Background(), &commands.ImportReferenceCommand{})
	assert.ErrorContains(t, err, "path is required")
}
