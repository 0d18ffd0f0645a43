package dtos_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

func TestSummaryToDTO_OrdersStorageFillAndFormatsIssues(t *testing.T) {
	// Arrange
	summary := &planetary.ColonySummary{
		Owner:       shared.MustNewCharacterID(7),
		ColonyID:    40001,
		StorageFill: map[planetary.PinID]float64{30: 0.9, 10: 0.1, 20: 0.5},
		Pins: []planetary.PinView{{
			PinID:    10,
			Kind:     planetary.PinKindStorage,
			Status:   planetary.PinStatusStorage,
			Contents: []planetary.ResourceQuantity{{Type: 2393, Quantity: 120}},
		}},
	}
	issues := []planetary.ResolveIssue{{PinID: 5, RecipeID: 99, Reason: "recipe not found in reference data"}}

	// Act
	dto := dtos.SummaryToDTO(summary, issues, true)

	// Assert
	require.NotNil(t, dto)
	assert.Equal(t, int64(7), dto.CharacterID)
	assert.Equal(t, []int64{10, 20, 30}, []int64{dto.StorageFill[0].PinID, dto.StorageFill[1].PinID, dto.StorageFill[2].PinID})
	assert.Equal(t, []dtos.QuantityDTO{{TypeID: 2393, Quantity: 120}}, dto.Pins[0].Contents)
	assert.Equal(t, "STORAGE", dto.Pins[0].Status)
	require.Len(t, dto.Issues, 1)
	assert.Contains(t, dto.Issues[0], "recipe not found")
	assert.True(t, dto.Cached)
}

func TestSummaryToDTO_Nil(t *testing.T) {
	assert.Nil(t, dtos.SummaryToDTO(nil, nil, false))
}

func TestResultToDTO_FailureCarriesOnlyError(t *testing.T) {
	// Arrange
	result := services.ColonyResult{
		Index:   3,
		Request: services.ColonyRequest{Ref: planetary.ColonyRef{Owner: shared.MustNewCharacterID(7), ColonyID: 40001}},
		Err:     errors.New("timeout"),
	}

	// Act
	dto := dtos.ResultToDTO(result)

	// Assert
	assert.Equal(t, 3, dto.Index)
	assert.Equal(t, int64(40001), dto.ColonyID)
	assert.Equal(t, "timeout", dto.Error)
	assert.Nil(t, dto.Summary)
}

func TestRecipeToDTO(t *testing.T) {
	// Arrange
	recipe, err := planetary.NewRecipe(121, "Bacteria", planetary.ResourceQuantity{Type: 2393, Quantity: 20}, 30*time.Minute,
		[]planetary.ResourceQuantity{{Type: 2073, Quantity: 3000}})
	require.NoError(t, err)
	types := map[planetary.TypeID]*planetary.ResourceType{2393: {ID: 2393, Name: "Bacteria"}, 2073: nil}

	// Act
	dto := dtos.RecipeToDTO(recipe, types)

	// Assert
	assert.Equal(t, int64(1800), dto.CycleTimeSeconds)
	assert.Equal(t, map[int64]string{2393: "Bacteria"}, dto.TypeNames)
	assert.Equal(t, []dtos.QuantityDTO{{TypeID: 2073, Quantity: 3000}}, dto.Inputs)
}

func TestSimulationToDTO_SortsQuantities(t *testing.T) {
	// Arrange
	sim := &planetary.SimulatedColony{States: []planetary.PinState{{
		PinID:    4,
		Kind:     planetary.PinKindFactory,
		Status:   planetary.PinStatusRunning,
		Produced: map[planetary.TypeID]int{2393: 40},
		Consumed: map[planetary.TypeID]int{3645: 10, 2073: 6000},
	}}}

	// Act
	dto := dtos.SimulationToDTO(sim, nil, map[planetary.PinID][]int{1: {100, 98}})

	// Assert
	require.Len(t, dto.States, 1)
	assert.Equal(t, []dtos.QuantityDTO{{TypeID: 2073, Quantity: 6000}, {TypeID: 3645, Quantity: 10}}, dto.States[0].Consumed)
	assert.Equal(t, []int{100, 98}, dto.ProgramOutputs[1])
	assert.Nil(t, dto.Summary)
}
