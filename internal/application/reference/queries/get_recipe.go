package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// GetRecipeQuery looks up a schematic with the display data of its types
type GetRecipeQuery struct {
	RecipeID planetary.RecipeID
}

// GetRecipeResponse represents a schematic and its types
type GetRecipeResponse struct {
	Recipe *planetary.Recipe
	Types  map[planetary.TypeID]*planetary.ResourceType
}

// GetRecipeHandler handles the GetRecipe query
type GetRecipeHandler struct {
	refs planetary.ReferenceProvider
}

// NewGetRecipeHandler creates a new GetRecipeHandler
func NewGetRecipeHandler(refs planetary.ReferenceProvider) *GetRecipeHandler {
	return &GetRecipeHandler{refs: refs}
}

// Handle executes the GetRecipe query
func (h *GetRecipeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetRecipeQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetRecipeQuery")
	}

	recipes, err := h.refs.Recipes(ctx, []planetary.RecipeID{query.RecipeID})
	if err != nil {
		return nil, fmt.Errorf("failed to load schematic: %w", err)
	}
	recipe, ok := recipes[query.RecipeID]
	if !ok {
		return nil, planetary.NewUnknownRecipeError(query.RecipeID)
	}

	typeIDs := append([]planetary.TypeID{recipe.Output.Type}, recipe.InputTypes()...)
	types, err := h.refs.Types(ctx, typeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load schematic types: %w", err)
	}

	return &GetRecipeResponse{Recipe: recipe, Types: types}, nil
}
