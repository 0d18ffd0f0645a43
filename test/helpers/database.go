package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/andrescamacho/colonysim-go/internal/infrastructure/database"
)

// NewTestDB creates a migrated in-memory SQLite database closed at test cleanup
func NewTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}
