package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

func TestRunLogRepository_DeduplicatesWithinWindow(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(t0)
	repo := persistence.NewGormRunLogRepository(helpers.NewTestDB(t), clock)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Log(ctx, "colonies-1", "WARNING", "Failed to list colonies", map[string]interface{}{"character_id": 1}))
	clock.Advance(30 * time.Second)
	require.NoError(t, repo.Log(ctx, "colonies-1", "WARNING", "Failed to list colonies", nil))
	require.NoError(t, repo.Log(ctx, "colonies-2", "WARNING", "Failed to list colonies", nil))
	clock.Advance(31 * time.Second)
	require.NoError(t, repo.Log(ctx, "colonies-1", "WARNING", "Failed to list colonies", nil))

	// Assert
	logs, err := repo.GetLogs(ctx, "colonies-1", 0, nil)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].Timestamp.After(logs[1].Timestamp))
	assert.EqualValues(t, 1, logs[1].Metadata["character_id"])

	other, err := repo.GetLogs(ctx, "colonies-2", 10, nil)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestRunLogRepository_FiltersByLevel(t *testing.T) {
	repo := persistence.NewGormRunLogRepository(helpers.NewTestDB(t), shared.NewMockClock(t0))
	ctx := context.Background()
	require.NoError(t, repo.Log(ctx, "run", "INFO", "Aggregating colonies", nil))
	require.NoError(t, repo.Log(ctx, "run", "ERROR", "Colony failed", nil))

	level := "ERROR"
	logs, err := repo.GetLogs(ctx, "run", 10, &level)

	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Colony failed", logs[0].Message)
}
