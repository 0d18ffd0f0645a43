package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// GormReferenceRepository serves resource types and schematics from the
// bundled reference database. It implements planetary.ReferenceRepository.
type GormReferenceRepository struct {
	db *gorm.DB
}

// NewGormReferenceRepository creates a new GORM reference repository
func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{db: db}
}

// Types returns the known types among ids. Unknown ids are absent from the map.
func (r *GormReferenceRepository) Types(ctx context.Context, ids []planetary.TypeID) (map[planetary.TypeID]*planetary.ResourceType, error) {
	out := make(map[planetary.TypeID]*planetary.ResourceType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []ResourceTypeModel
	if err := r.db.WithContext(ctx).Where("id IN ?", toInt64s(ids)).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load types: %w", err)
	}
	for _, m := range models {
		out[planetary.TypeID(m.ID)] = &planetary.ResourceType{
			ID:      planetary.TypeID(m.ID),
			Name:    m.Name,
			IconRef: m.IconRef,
			Volume:  m.Volume,
			GroupID: planetary.GroupID(m.GroupID),
		}
	}
	return out, nil
}

// Recipes returns the known schematics among ids. Unknown ids are absent from
// the map, and a stored schematic that fails validation is skipped.
func (r *GormReferenceRepository) Recipes(ctx context.Context, ids []planetary.RecipeID) (map[planetary.RecipeID]*planetary.Recipe, error) {
	out := make(map[planetary.RecipeID]*planetary.Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}

	var models []SchematicModel
	if err := r.db.WithContext(ctx).Preload("Inputs").Where("id IN ?", raw).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load schematics: %w", err)
	}
	for i := range models {
		recipe, err := modelToRecipe(&models[i])
		if err != nil {
			continue
		}
		out[recipe.ID] = recipe
	}
	return out, nil
}

// ListRecipes returns every stored schematic ordered by id
func (r *GormReferenceRepository) ListRecipes(ctx context.Context) ([]*planetary.Recipe, error) {
	var models []SchematicModel
	if err := r.db.WithContext(ctx).Preload("Inputs").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list schematics: %w", err)
	}

	recipes := make([]*planetary.Recipe, 0, len(models))
	for i := range models {
		recipe, err := modelToRecipe(&models[i])
		if err != nil {
			continue
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// SaveTypes upserts resource types
func (r *GormReferenceRepository) SaveTypes(ctx context.Context, types []*planetary.ResourceType) error {
	if len(types) == 0 {
		return nil
	}

	models := make([]ResourceTypeModel, len(types))
	for i, t := range types {
		models[i] = ResourceTypeModel{
			ID:      int64(t.ID),
			Name:    t.Name,
			IconRef: t.IconRef,
			Volume:  t.Volume,
			GroupID: int64(t.GroupID),
		}
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(models, 500)
	if result.Error != nil {
		return fmt.Errorf("failed to save types: %w", result.Error)
	}
	return nil
}

// SaveRecipes upserts schematics, replacing their inputs
func (r *GormReferenceRepository) SaveRecipes(ctx context.Context, recipes []*planetary.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, recipe := range recipes {
			model := SchematicModel{
				ID:             int64(recipe.ID),
				Name:           recipe.Name,
				CycleSeconds:   int64(recipe.CycleDuration / time.Second),
				OutputTypeID:   int64(recipe.Output.Type),
				OutputQuantity: recipe.Output.Quantity,
			}
			if err := tx.Omit("Inputs").Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
				return fmt.Errorf("failed to save schematic %d: %w", recipe.ID, err)
			}

			if err := tx.Where("schematic_id = ?", model.ID).Delete(&SchematicInputModel{}).Error; err != nil {
				return fmt.Errorf("failed to clear inputs of schematic %d: %w", recipe.ID, err)
			}
			if len(recipe.Inputs) == 0 {
				continue
			}
			inputs := make([]SchematicInputModel, len(recipe.Inputs))
			for i, in := range recipe.Inputs {
				inputs[i] = SchematicInputModel{SchematicID: model.ID, TypeID: int64(in.Type), Quantity: in.Quantity}
			}
			if err := tx.Create(&inputs).Error; err != nil {
				return fmt.Errorf("failed to save inputs of schematic %d: %w", recipe.ID, err)
			}
		}
		return nil
	})
}

func modelToRecipe(m *SchematicModel) (*planetary.Recipe, error) {
	inputs := make([]planetary.ResourceQuantity, len(m.Inputs))
	for i, in := range m.Inputs {
		inputs[i] = planetary.ResourceQuantity{Type: planetary.TypeID(in.TypeID), Quantity: in.Quantity}
	}
	return planetary.NewRecipe(
		planetary.RecipeID(m.ID),
		m.Name,
		planetary.ResourceQuantity{Type: planetary.TypeID(m.OutputTypeID), Quantity: m.OutputQuantity},
		time.Duration(m.CycleSeconds)*time.Second,
		inputs,
	)
}

func toInt64s(ids []planetary.TypeID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
