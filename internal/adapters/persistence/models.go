package persistence

import (
	"time"
)

// CharacterModel represents the characters table
type CharacterModel struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name         string     `gorm:"column:name;unique;not null"`
	AccessToken  string     `gorm:"column:access_token;not null"`
	TokenExpires *time.Time `gorm:"column:token_expires"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	Metadata     string     `gorm:"column:metadata;type:text"` // JSON stored as string
}

func (CharacterModel) TableName() string {
	return "characters"
}

// SnapshotModel represents the colony_snapshots table. Payload holds the raw
// snapshot JSON as fetched.
type SnapshotModel struct {
	OwnerID    int64     `gorm:"column:owner_id;primaryKey;autoIncrement:false"`
	ColonyID   int64     `gorm:"column:colony_id;primaryKey;autoIncrement:false"`
	PlanetType string    `gorm:"column:planet_type"`
	LastUpdate string    `gorm:"column:last_update;not null"`
	Version    string    `gorm:"column:version;not null"`
	Payload    string    `gorm:"column:payload;type:text;not null"`
	FetchedAt  time.Time `gorm:"column:fetched_at;not null;index"`
}

func (SnapshotModel) TableName() string {
	return "colony_snapshots"
}

// ResourceTypeModel represents the resource_types table
type ResourceTypeModel struct {
	ID      int64   `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name    string  `gorm:"column:name;not null"`
	IconRef string  `gorm:"column:icon_ref"`
	Volume  float64 `gorm:"column:volume;not null;default:0"`
	GroupID int64   `gorm:"column:group_id;not null;default:0;index"`
}

func (ResourceTypeModel) TableName() string {
	return "resource_types"
}

// SchematicModel represents the schematics table
type SchematicModel struct {
	ID             int64                 `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name           string                `gorm:"column:name;not null"`
	CycleSeconds   int64                 `gorm:"column:cycle_seconds;not null"`
	OutputTypeID   int64                 `gorm:"column:output_type_id;not null;index"`
	OutputQuantity int                   `gorm:"column:output_quantity;not null"`
	Inputs         []SchematicInputModel `gorm:"foreignKey:SchematicID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (SchematicModel) TableName() string {
	return "schematics"
}

// SchematicInputModel represents the schematic_inputs table
type SchematicInputModel struct {
	SchematicID int64 `gorm:"column:schematic_id;primaryKey;autoIncrement:false"`
	TypeID      int64 `gorm:"column:type_id;primaryKey;autoIncrement:false"`
	Quantity    int   `gorm:"column:quantity;not null"`
}

func (SchematicInputModel) TableName() string {
	return "schematic_inputs"
}

// RunLogModel represents the run_logs table
type RunLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON stored as string
}

func (RunLogModel) TableName() string {
	return "run_logs"
}
