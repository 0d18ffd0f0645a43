package logging

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// RunLogStore persists log entries keyed by run
type RunLogStore interface {
	Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error
}

// RunLogger writes the entries of one aggregation or refresh run to a
// RunLogStore. Writes are asynchronous; Flush waits for them.
type RunLogger struct {
	runID   string
	store   RunLogStore
	minimum string
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRunLogger creates a logger for runID. Entries below minLevel are
// dropped.
func NewRunLogger(runID string, store RunLogStore, minLevel string) *RunLogger {
	return &RunLogger{
		runID:   runID,
		store:   store,
		minimum: minLevel,
		timeout: 5 * time.Second,
	}
}

// RunID returns the run the logger writes to
func (r *RunLogger) RunID() string {
	return r.runID
}

// Log implements common.Logger
func (r *RunLogger) Log(level, message string, metadata map[string]interface{}) {
	if ParseLevel(level) < ParseLevel(r.minimum) {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.store.Log(ctx, r.runID, level, message, metadata); err != nil {
			fmt.Fprintf(os.Stderr, "[%s] [%s] ERROR: failed to persist log: %v\n",
				time.Now().Format(time.RFC3339), r.runID, err)
		}
	}()
}

// Flush blocks until every pending write has finished
func (r *RunLogger) Flush() {
	r.wg.Wait()
}
