package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// ReferenceFile is the JSON layout of a reference data export
type ReferenceFile struct {
	Types      []TypeEntry      `json:"types" validate:"dive"`
	Schematics []SchematicEntry `json:"schematics" validate:"dive"`
}

// TypeEntry is one resource or facility type
type TypeEntry struct {
	ID      int64   `json:"id" validate:"required,gt=0"`
	Name    string  `json:"name" validate:"required"`
	Icon    string  `json:"icon"`
	Volume  float64 `json:"volume" validate:"gte=0"`
	GroupID int64   `json:"group_id" validate:"gte=0"`
}

// SchematicEntry is one factory schematic
type SchematicEntry struct {
	ID        int64           `json:"id" validate:"required,gt=0"`
	Name      string          `json:"name" validate:"required"`
	CycleTime int64           `json:"cycle_time" validate:"gte=0"`
	Output    QuantityEntry   `json:"output"`
	Inputs    []QuantityEntry `json:"inputs" validate:"dive"`
}

// QuantityEntry is a type and an amount
type QuantityEntry struct {
	TypeID   int64 `json:"type_id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"gt=0"`
}

// ImportReferenceCommand loads reference data into the reference database.
// Either Path or Reader must be set.
type ImportReferenceCommand struct {
	Path   string
	Reader io.Reader
}

// ImportReferenceResponse reports what was imported
type ImportReferenceResponse struct {
	Types      int
	Schematics int
	Skipped    int
}

// ImportReferenceHandler handles the ImportReference command
type ImportReferenceHandler struct {
	repo     planetary.ReferenceRepository
	validate *validator.Validate
}

// NewImportReferenceHandler creates a new ImportReferenceHandler
func NewImportReferenceHandler(repo planetary.ReferenceRepository) *ImportReferenceHandler {
	return &ImportReferenceHandler{
		repo:     repo,
		validate: validator.New(),
	}
}

// Handle executes the ImportReference command
func (h *ImportReferenceHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ImportReferenceCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ImportReferenceCommand")
	}

	reader := cmd.Reader
	if reader == nil {
		if cmd.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		f, err := os.Open(cmd.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open reference file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var file ReferenceFile
	if err := json.NewDecoder(reader).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode reference file: %w", err)
	}
	if err := h.validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid reference file: %w", err)
	}

	types := make([]*planetary.ResourceType, 0, len(file.Types))
	for _, t := range file.Types {
		types = append(types, &planetary.ResourceType{
			ID:      planetary.TypeID(t.ID),
			Name:    t.Name,
			IconRef: t.Icon,
			Volume:  t.Volume,
			GroupID: planetary.GroupID(t.GroupID),
		})
	}

	logger := common.LoggerFromContext(ctx)
	response := &ImportReferenceResponse{}
	recipes := make([]*planetary.Recipe, 0, len(file.Schematics))
	for _, s := range file.Schematics {
		inputs := make([]planetary.ResourceQuantity, 0, len(s.Inputs))
		for _, in := range s.Inputs {
			inputs = append(inputs, planetary.ResourceQuantity{Type: planetary.TypeID(in.TypeID), Quantity: in.Quantity})
		}
		recipe, err := planetary.NewRecipe(
			planetary.RecipeID(s.ID),
			s.Name,
			planetary.ResourceQuantity{Type: planetary.TypeID(s.Output.TypeID), Quantity: s.Output.Quantity},
			time.Duration(s.CycleTime)*time.Second,
			inputs,
		)
		if err != nil {
			logger.Log("WARNING", "Skipping invalid schematic", map[string]interface{}{
				"schematic_id": s.ID,
				"error":        err.Error(),
			})
			response.Skipped++
			continue
		}
		recipes = append(recipes, recipe)
	}

	if err := h.repo.SaveTypes(ctx, types); err != nil {
		return nil, fmt.Errorf("failed to save types: %w", err)
	}
	if err := h.repo.SaveRecipes(ctx, recipes); err != nil {
		return nil, fmt.Errorf("failed to save schematics: %w", err)
	}

	response.Types = len(types)
	response.Schematics = len(recipes)

	logger.Log("INFO", "Reference data imported", map[string]interface{}{
		"types":      response.Types,
		"schematics": response.Schematics,
		"skipped":    response.Skipped,
	})

	return response, nil
}
