package helpers

import (
	"time"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// Fixture type ids
const (
	TypeExtractorControlUnit planetary.TypeID = 2848
	TypeBasicIndustry        planetary.TypeID = 2473
	TypeStorageFacility      planetary.TypeID = 2541
	TypeCommandCenter        planetary.TypeID = 2524
	TypeLaunchpad            planetary.TypeID = 2544

	TypeAqueousLiquids planetary.TypeID = 2268
	TypeMicroorganisms planetary.TypeID = 2073
	TypeWater          planetary.TypeID = 3645
	TypeBacteria       planetary.TypeID = 2393
)

// Fixture recipe ids
const (
	RecipeWater    planetary.RecipeID = 121
	RecipeBacteria planetary.RecipeID = 131
)

// FixtureTypes returns the resource and facility types used across tests
func FixtureTypes() []*planetary.ResourceType {
	return []*planetary.ResourceType{
		{ID: TypeExtractorControlUnit, Name: "Barren Extractor Control Unit", GroupID: planetary.GroupExtractorControlUnit},
		{ID: TypeBasicIndustry, Name: "Barren Basic Industry Facility", GroupID: planetary.GroupProcessor},
		{ID: TypeStorageFacility, Name: "Barren Storage Facility", GroupID: planetary.GroupStorageFacility},
		{ID: TypeCommandCenter, Name: "Barren Command Center", GroupID: planetary.GroupCommandCenter},
		{ID: TypeLaunchpad, Name: "Barren Launchpad", GroupID: planetary.GroupLaunchpad},
		{ID: TypeAqueousLiquids, Name: "Aqueous Liquids", IconRef: "types/2268/icon", Volume: 0.01, GroupID: 1032},
		{ID: TypeMicroorganisms, Name: "Microorganisms", IconRef: "types/2073/icon", Volume: 0.01, GroupID: 1032},
		{ID: TypeWater, Name: "Water", IconRef: "types/3645/icon", Volume: 0.38, GroupID: 1042},
		{ID: TypeBacteria, Name: "Bacteria", IconRef: "types/2393/icon", Volume: 0.38, GroupID: 1042},
	}
}

// FixtureRecipes returns the basic processing schematics used across tests
func FixtureRecipes() []*planetary.Recipe {
	water, _ := planetary.NewRecipe(RecipeWater, "Water",
		planetary.ResourceQuantity{Type: TypeWater, Quantity: 20}, 30*time.Minute,
		[]planetary.ResourceQuantity{{Type: TypeAqueousLiquids, Quantity: 3000}})
	bacteria, _ := planetary.NewRecipe(RecipeBacteria, "Bacteria",
		planetary.ResourceQuantity{Type: TypeBacteria, Quantity: 20}, 30*time.Minute,
		[]planetary.ResourceQuantity{{Type: TypeMicroorganisms, Quantity: 3000}})
	return []*planetary.Recipe{water, bacteria}
}

// SnapshotBuilder assembles raw snapshots for tests
type SnapshotBuilder struct {
	snapshot *planetary.Snapshot
}

// NewSnapshotBuilder starts a snapshot for an owner's colony taken at lastUpdate
func NewSnapshotBuilder(owner, colonyID int64, lastUpdate time.Time) *SnapshotBuilder {
	return &SnapshotBuilder{snapshot: &planetary.Snapshot{
		Owner:      owner,
		ColonyID:   colonyID,
		PlanetType: "barren",
		LastUpdate: lastUpdate.UTC().Format(time.RFC3339),
	}}
}

// WithExtractor adds an extractor pin
func (b *SnapshotBuilder) WithExtractor(pinID int64, product planetary.TypeID, qtyPerCycle int, cycle time.Duration, install, expiry time.Time) *SnapshotBuilder {
	b.snapshot.Pins = append(b.snapshot.Pins, planetary.PinRecord{
		PinID:       pinID,
		TypeID:      int64(TypeExtractorControlUnit),
		InstallTime: install.UTC().Format(time.RFC3339),
		ExpiryTime:  expiry.UTC().Format(time.RFC3339),
		Extractor: &planetary.ExtractorRecord{
			CycleTime:     int64(cycle / time.Second),
			QtyPerCycle:   qtyPerCycle,
			ProductTypeID: int64(product),
		},
	})
	return b
}

// WithFactory adds a factory pin. A zero lastCycleStart leaves it without a cycle.
func (b *SnapshotBuilder) WithFactory(pinID int64, recipe planetary.RecipeID, lastCycleStart time.Time, contents map[planetary.TypeID]int) *SnapshotBuilder {
	record := planetary.PinRecord{
		PinID:       pinID,
		TypeID:      int64(TypeBasicIndustry),
		SchematicID: int64(recipe),
		Contents:    contentRecords(contents),
	}
	if !lastCycleStart.IsZero() {
		record.LastCycleStart = lastCycleStart.UTC().Format(time.RFC3339)
	}
	b.snapshot.Pins = append(b.snapshot.Pins, record)
	return b
}

// WithStorage adds a storage facility pin
func (b *SnapshotBuilder) WithStorage(pinID int64, contents map[planetary.TypeID]int) *SnapshotBuilder {
	b.snapshot.Pins = append(b.snapshot.Pins, planetary.PinRecord{
		PinID:    pinID,
		TypeID:   int64(TypeStorageFacility),
		Contents: contentRecords(contents),
	})
	return b
}

// WithRecord adds a raw pin record as-is
func (b *SnapshotBuilder) WithRecord(record planetary.PinRecord) *SnapshotBuilder {
	b.snapshot.Pins = append(b.snapshot.Pins, record)
	return b
}

// Build returns the snapshot
func (b *SnapshotBuilder) Build() *planetary.Snapshot {
	return b.snapshot
}

func contentRecords(contents map[planetary.TypeID]int) []planetary.ContentRecord {
	records := make([]planetary.ContentRecord, 0, len(contents))
	for _, typeID := range planetary.SortTypeIDs(keys(contents)) {
		records = append(records, planetary.ContentRecord{TypeID: int64(typeID), Amount: contents[typeID]})
	}
	return records
}

func keys(m map[planetary.TypeID]int) []planetary.TypeID {
	out := make([]planetary.TypeID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
