package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/adapters/logging"
	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

func TestConsoleLogger_JSONIncludesMetadata(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "json", "info")

	// Act
	logger.Log("WARNING", "Failed to list colonies", map[string]interface{}{"character_id": 42})

	// Assert
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Failed to list colonies", entry["msg"])
	assert.Equal(t, 42.0, entry["character_id"])
}

func TestConsoleLogger_FiltersBelowLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "text", "warning")

	// Act
	logger.Log("INFO", "hidden", nil)
	logger.Log("ERROR", "shown", nil)

	// Assert
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewConsoleLogger_WritesToFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "colonysim.log")
	logger, err := logging.NewConsoleLogger(logging.Options{Level: "debug", Format: "text", Output: "file", FilePath: path})
	require.NoError(t, err)

	// Act
	logger.Log("DEBUG", "written", nil)
	require.NoError(t, logger.Close())

	// Assert
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestNewConsoleLogger_RejectsUnknownOutput(t *testing.T) {
	// Act
	_, err := logging.NewConsoleLogger(logging.Options{Output: "syslog"})

	// Assert
	assert.Error(t, err)
}

func TestFanOut_DeliversToEveryLogger(t *testing.T) {
	// Arrange
	first := helpers.NewMockLogger()
	second := helpers.NewMockLogger()
	var logger common.Logger = logging.FanOut{first, nil, second}

	// Act
	logger.Log("INFO", "hello", nil)

	// Assert
	assert.Len(t, first.Entries(), 1)
	assert.Len(t, second.Entries(), 1)
}

type recordingStore struct {
	mu      sync.Mutex
	entries []string
	fail    bool
}

func (s *recordingStore) Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("database is locked")
	}
	s.entries = append(s.entries, runID+"|"+level+"|"+message)
	return nil
}

func TestRunLogger_PersistsAtOrAboveMinimum(t *testing.T) {
	// Arrange
	store := &recordingStore{}
	logger := logging.NewRunLogger("colonies-abc", store, "info")

	// Act
	logger.Log("DEBUG", "dropped", nil)
	logger.Log("INFO", "kept", nil)
	logger.Log("ERROR", "also kept", nil)
	logger.Flush()

	// Assert
	assert.ElementsMatch(t, []string{"colonies-abc|INFO|kept", "colonies-abc|ERROR|also kept"}, store.entries)
	assert.Equal(t, "colonies-abc", logger.RunID())
}

func TestRunLogger_StoreFailureDoesNotPanic(t *testing.T) {
	// Arrange
	store := &recordingStore{fail: true}
	logger := logging.NewRunLogger("run", store, "debug")

	// Act
	logger.Log("INFO", "lost", nil)
	logger.Flush()

	// Assert
	assert.Empty(t, store.entries)
}
