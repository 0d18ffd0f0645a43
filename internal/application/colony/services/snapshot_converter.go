package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// SnapshotConverter turns raw snapshots into colonies.
//
// Malformed pins become invalid pins instead of failing the colony; only an
// unusable snapshot header (owner, colony id, last update) rejects the whole
// snapshot.
type SnapshotConverter struct {
	validate *validator.Validate
}

// NewSnapshotConverter creates a converter with the snapshot validation rules registered
func NewSnapshotConverter() *SnapshotConverter {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})

	return &SnapshotConverter{validate: v}
}

// ConversionRefs is the reference data needed to convert one snapshot
type ConversionRefs struct {
	Recipes map[planetary.RecipeID]*planetary.Recipe
	Types   map[planetary.TypeID]*planetary.ResourceType
}

// Convert builds a colony from a snapshot. Reference misses are logged as
// data-integrity warnings through the context logger.
func (c *SnapshotConverter) Convert(ctx context.Context, snapshot *planetary.Snapshot, refs ConversionRefs) (*planetary.Colony, error) {
	logger := common.LoggerFromContext(ctx)
	colonyID := planetary.ColonyID(snapshot.ColonyID)

	if err := c.validate.Struct(snapshot); err != nil {
		return nil, planetary.NewInvalidSnapshotError(colonyID, formatValidationError(err))
	}

	owner, err := shared.NewCharacterID(snapshot.Owner)
	if err != nil {
		return nil, planetary.NewInvalidSnapshotError(colonyID, err.Error())
	}
	lastUpdate, _ := time.Parse(time.RFC3339, snapshot.LastUpdate)

	pins := make([]planetary.Pin, 0, len(snapshot.Pins))
	for _, record := range snapshot.Pins {
		pin := c.convertPin(record, lastUpdate, refs)

		if pin.Invalid != "" {
			logger.Log("WARNING", "Excluding malformed pin from simulation", map[string]interface{}{
				"colony_id": snapshot.ColonyID,
				"pin_id":    record.PinID,
				"reason":    pin.Invalid,
			})
		}
		if pin.Factory != nil && pin.Factory.RecipeID != 0 && pin.Factory.Recipe == nil {
			logger.Log("WARNING", "Factory schematic missing from reference data", map[string]interface{}{
				"colony_id":    snapshot.ColonyID,
				"pin_id":       record.PinID,
				"schematic_id": record.SchematicID,
			})
		}

		pins = append(pins, pin)
	}

	return planetary.NewColony(colonyID, owner, snapshot.PlanetType, lastUpdate.UTC(), snapshot.Version(), pins)
}

func (c *SnapshotConverter) convertPin(record planetary.PinRecord, lastUpdate time.Time, refs ConversionRefs) planetary.Pin {
	id := planetary.PinID(record.PinID)
	typeID := planetary.TypeID(record.TypeID)

	if err := c.validate.Struct(record); err != nil {
		return planetary.NewInvalidPin(id, typeID, classify(record, refs), formatValidationError(err), planetary.Inventory{})
	}

	inventory := contentsToInventory(record.Contents)

	switch kind := classify(record, refs); kind {
	case planetary.PinKindExtractor:
		return convertExtractor(id, typeID, record, inventory)
	case planetary.PinKindFactory:
		return convertFactory(id, typeID, record, lastUpdate, refs, inventory)
	case planetary.PinKindStorage:
		capacity, _ := planetary.StorageCapacity(refs.groupOf(typeID))
		return planetary.NewStoragePin(id, typeID, planetary.StorageSpec{Capacity: capacity}, inventory)
	default:
		if refs.groupOf(typeID) == planetary.GroupExtractorControlUnit {
			return planetary.NewInvalidPin(id, typeID, planetary.PinKindExtractor, "extractor_details: missing", inventory)
		}
		return planetary.NewInvalidPin(id, typeID, "", fmt.Sprintf("type_id: unknown pin archetype %d", record.TypeID), inventory)
	}
}

// classify selects the pin kind from the record shape and the archetype group of its type
func classify(record planetary.PinRecord, refs ConversionRefs) planetary.PinKind {
	if record.Extractor != nil {
		return planetary.PinKindExtractor
	}
	group := refs.groupOf(planetary.TypeID(record.TypeID))
	if record.SchematicID > 0 || group == planetary.GroupProcessor {
		return planetary.PinKindFactory
	}
	if _, ok := planetary.StorageCapacity(group); ok {
		return planetary.PinKindStorage
	}
	return ""
}

func convertExtractor(id planetary.PinID, typeID planetary.TypeID, record planetary.PinRecord, inventory planetary.Inventory) planetary.Pin {
	if record.InstallTime == "" {
		return planetary.NewInvalidPin(id, typeID, planetary.PinKindExtractor, "install_time: missing", inventory)
	}
	if record.ExpiryTime == "" {
		return planetary.NewInvalidPin(id, typeID, planetary.PinKindExtractor, "expiry_time: missing", inventory)
	}

	install, _ := time.Parse(time.RFC3339, record.InstallTime)
	expiry, _ := time.Parse(time.RFC3339, record.ExpiryTime)
	if !expiry.After(install) {
		return planetary.NewInvalidPin(id, typeID, planetary.PinKindExtractor, "expiry_time: not after install_time", inventory)
	}

	return planetary.NewExtractorPin(id, typeID, planetary.ExtractorSpec{
		InstallTime:   install.UTC(),
		ExpiryTime:    expiry.UTC(),
		CycleDuration: time.Duration(record.Extractor.CycleTime) * time.Second,
		BaseQuantity:  record.Extractor.QtyPerCycle,
		ProductType:   planetary.TypeID(record.Extractor.ProductTypeID),
	}, inventory)
}

// convertFactory derives the cycle state from the last cycle start. A cycle that
// ended before the snapshot was taken is already reflected in the snapshot
// inventory and is treated as completed.
func convertFactory(id planetary.PinID, typeID planetary.TypeID, record planetary.PinRecord, lastUpdate time.Time, refs ConversionRefs, inventory planetary.Inventory) planetary.Pin {
	spec := planetary.FactorySpec{
		RecipeID: planetary.RecipeID(record.SchematicID),
		Cycle:    planetary.NotStarted(),
	}
	if spec.RecipeID != 0 {
		spec.Recipe = refs.Recipes[spec.RecipeID]
	}

	if record.LastCycleStart != "" && spec.Recipe != nil {
		start, _ := time.Parse(time.RFC3339, record.LastCycleStart)
		start = start.UTC()
		if start.Add(spec.Recipe.CycleDuration).After(lastUpdate) {
			spec.Cycle = planetary.Running(start)
			spec.Active = true
		} else {
			spec.Cycle = planetary.Completed(start)
		}
	}

	return planetary.NewFactoryPin(id, typeID, spec, inventory)
}

func contentsToInventory(contents []planetary.ContentRecord) planetary.Inventory {
	amounts := make(map[planetary.TypeID]int, len(contents))
	for _, c := range contents {
		amounts[planetary.TypeID(c.TypeID)] += c.Amount
	}
	return planetary.NewInventory(amounts)
}

func (r ConversionRefs) groupOf(typeID planetary.TypeID) planetary.GroupID {
	if t, ok := r.Types[typeID]; ok && t != nil {
		return t.GroupID
	}
	return 0
}

// formatValidationError converts validator errors into readable messages
func formatValidationError(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf("%s: failed %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return strings.Join(messages, "; ")
}
