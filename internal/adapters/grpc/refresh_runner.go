package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/adapters/logging"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/queries"
	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/pkg/utils"
)

// RefreshReport describes one background refresh run
type RefreshReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Colonies  int
	Failed    int
	Err       error
}

// RefreshRunner periodically refreshes every colony of every registered
// character so summaries stay warm between client requests
type RefreshRunner struct {
	mediator common.Mediator
	interval time.Duration
	logger   common.Logger
	runLogs  logging.RunLogStore
	clock    shared.Clock

	ctx        context.Context
	cancelFunc context.CancelFunc
	done       chan struct{}

	mu      sync.RWMutex
	started bool
	running bool
	last    *RefreshReport
}

// NewRefreshRunner creates a runner. runLogs may be nil to skip persisting
// run logs. If clock is nil, uses RealClock.
func NewRefreshRunner(
	mediator common.Mediator,
	interval time.Duration,
	logger common.Logger,
	runLogs logging.RunLogStore,
	clock shared.Clock,
) *RefreshRunner {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RefreshRunner{
		mediator:   mediator,
		interval:   interval,
		logger:     logger,
		runLogs:    runLogs,
		clock:      clock,
		ctx:        ctx,
		cancelFunc: cancel,
		done:       make(chan struct{}),
	}
}

// Start launches the refresh loop. A non-positive interval disables it.
func (r *RefreshRunner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	if r.interval <= 0 {
		close(r.done)
		return
	}
	r.running = true
	go r.loop()
}

// Stop cancels the current run and waits up to timeout for the loop to exit.
// A runner that was never started returns at once.
func (r *RefreshRunner) Stop(timeout time.Duration) {
	r.cancelFunc()

	r.mu.RLock()
	started := r.started
	r.mu.RUnlock()
	if !started {
		return
	}

	select {
	case <-r.done:
	case <-time.After(timeout):
		r.logger.Log("WARNING", "Refresh runner did not stop within timeout", nil)
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// Running reports whether the loop is active
func (r *RefreshRunner) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// LastReport returns the most recent run, or nil before the first one
func (r *RefreshRunner) LastReport() *RefreshReport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

func (r *RefreshRunner) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.RunOnce(r.ctx)
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce force-refreshes every colony and records the report
func (r *RefreshRunner) RunOnce(ctx context.Context) RefreshReport {
	report := RefreshReport{
		RunID:     utils.GenerateRunID("refresh"),
		StartedAt: r.clock.Now(),
	}

	logger := r.logger
	var runLogger *logging.RunLogger
	if r.runLogs != nil {
		runLogger = logging.NewRunLogger(report.RunID, r.runLogs, "info")
		logger = logging.FanOut{r.logger, runLogger}
	}
	ctx = common.WithLogger(ctx, logger)

	logger.Log("INFO", "Refresh run started", map[string]interface{}{"run_id": report.RunID})

	start := time.Now()
	response, err := r.mediator.Send(ctx, &queries.ListColonySummariesQuery{ForceRefresh: true})
	report.Duration = time.Since(start)
	report.Err = err
	if result, ok := response.(*queries.ListColonySummariesResponse); ok && result != nil {
		report.Colonies = len(result.Results)
		report.Failed = result.Failed
	}

	metadata := map[string]interface{}{
		"run_id":      report.RunID,
		"colonies":    report.Colonies,
		"failed":      report.Failed,
		"duration_ms": report.Duration.Milliseconds(),
	}
	if err != nil {
		metadata["error"] = err.Error()
		logger.Log("ERROR", "Refresh run failed", metadata)
	} else {
		logger.Log("INFO", "Refresh run completed", metadata)
	}
	if runLogger != nil {
		runLogger.Flush()
	}

	r.mu.Lock()
	r.last = &report
	r.mu.Unlock()
	return report
}
