package pidfile_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/infrastructure/pidfile"
)

func TestAcquire_WritesCurrentPID(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "daemon.pid")
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))
	pid, running := pf.Running()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquire_FailsWhileOwnerAlive(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "daemon.pid")
	require.NoError(t, pidfile.New(path).Acquire())

	// Act
	err := pidfile.New(path).Acquire()

	// Assert
	assert.ErrorContains(t, err, "already running")
}

func TestAcquire_ReplacesGarbage(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "daemon.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0644))
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	_, running := pf.Running()
	assert.True(t, running)
}

func TestRelease_RemovesFileAndIsIdempotent(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "daemon.pid")
	pf := pidfile.New(path)
	require.NoError(t, pf.Acquire())

	// Act
	first := pf.Release()
	second := pf.Release()

	// Assert
	assert.NoError(t, first)
	assert.NoError(t, second)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestKillExisting_NotRunning(t *testing.T) {
	// Arrange
	pf := pidfile.New(filepath.Join(t.TempDir(), "missing.pid"))

	// Act
	err := pf.KillExisting(time.Second)

	// Assert
	assert.ErrorIs(t, err, pidfile.ErrNotRunning)
}
