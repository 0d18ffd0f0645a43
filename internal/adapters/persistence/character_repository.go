package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/colonysim-go/internal/domain/character"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// GormCharacterRepository implements CharacterRepository using GORM
type GormCharacterRepository struct {
	db *gorm.DB
}

// NewGormCharacterRepository creates a new GORM character repository
func NewGormCharacterRepository(db *gorm.DB) *GormCharacterRepository {
	return &GormCharacterRepository{db: db}
}

// FindByID retrieves a character by ID
func (r *GormCharacterRepository) FindByID(ctx context.Context, id shared.CharacterID) (*character.Character, error) {
	var model CharacterModel
	result := r.db.WithContext(ctx).Where("id = ?", id.Value()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewCharacterNotFoundError(id.Value())
		}
		return nil, fmt.Errorf("failed to find character: %w", result.Error)
	}

	return r.modelToCharacter(&model)
}

// FindByName retrieves a character by name
func (r *GormCharacterRepository) FindByName(ctx context.Context, name string) (*character.Character, error) {
	var model CharacterModel
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("character not found: %s", name)
		}
		return nil, fmt.Errorf("failed to find character: %w", result.Error)
	}

	return r.modelToCharacter(&model)
}

// ListAll retrieves all characters ordered by id
func (r *GormCharacterRepository) ListAll(ctx context.Context) ([]*character.Character, error) {
	var models []CharacterModel
	result := r.db.WithContext(ctx).Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list characters: %w", result.Error)
	}

	characters := make([]*character.Character, 0, len(models))
	for i := range models {
		c, err := r.modelToCharacter(&models[i])
		if err != nil {
			continue // Skip invalid characters
		}
		characters = append(characters, c)
	}

	return characters, nil
}

// Add persists a character
func (r *GormCharacterRepository) Add(ctx context.Context, c *character.Character) error {
	model, err := r.characterToModel(c)
	if err != nil {
		return fmt.Errorf("failed to convert character to model: %w", err)
	}

	// Upsert keeping the original created_at
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "access_token", "token_expires", "metadata"}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to add character: %w", result.Error)
	}

	return nil
}

func (r *GormCharacterRepository) modelToCharacter(model *CharacterModel) (*character.Character, error) {
	metadata := make(map[string]interface{})
	if model.Metadata != "" {
		if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
			metadata = make(map[string]interface{})
		}
	}

	id, err := shared.NewCharacterID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid character ID in database: %w", err)
	}

	c := character.NewCharacter(id, model.Name, model.AccessToken)
	c.Metadata = metadata
	if model.TokenExpires != nil {
		c.TokenExpires = *model.TokenExpires
	}
	return c, nil
}

func (r *GormCharacterRepository) characterToModel(c *character.Character) (*CharacterModel, error) {
	metadataJSON := "{}"
	if len(c.Metadata) > 0 {
		bytes, err := json.Marshal(c.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = string(bytes)
	}

	model := &CharacterModel{
		ID:          c.ID.Value(),
		Name:        c.Name,
		AccessToken: c.AccessToken,
		CreatedAt:   time.Now().UTC(),
		Metadata:    metadataJSON,
	}
	if !c.TokenExpires.IsZero() {
		expires := c.TokenExpires
		model.TokenExpires = &expires
	}
	return model, nil
}
