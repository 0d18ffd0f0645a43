package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// RunLogEntry is one persisted aggregation-run log line
type RunLogEntry struct {
	ID        int
	RunID     string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormRunLogRepository persists run logs with time-windowed deduplication
type GormRunLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // key: runID|message, value: last logged time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormRunLogRepository creates a new run log repository.
// If clock is nil, uses RealClock.
func NewGormRunLogRepository(db *gorm.DB, clock shared.Clock) *GormRunLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormRunLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes an entry unless the same message was logged for the run within
// the dedup window
func (r *GormRunLogRepository) Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := runID + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	var metadataJSON string
	if len(metadata) > 0 {
		if bytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(bytes)
		}
	}

	return r.db.WithContext(ctx).Create(&RunLogModel{
		RunID:     runID,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}).Error
}

// Must be called while holding dedupMu
func (r *GormRunLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, ts := range r.dedupCache {
		if ts.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs returns the newest entries of a run, optionally filtered by level
func (r *GormRunLogRepository) GetLogs(ctx context.Context, runID string, limit int, level *string) ([]RunLogEntry, error) {
	var models []RunLogModel

	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("timestamp DESC, id DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]RunLogEntry, len(models))
	for i, m := range models {
		var metadata map[string]interface{}
		if m.Metadata != "" {
			_ = json.Unmarshal([]byte(m.Metadata), &metadata)
		}
		entries[i] = RunLogEntry{
			ID:        m.ID,
			RunID:     m.RunID,
			Timestamp: m.Timestamp,
			Level:     m.Level,
			Message:   m.Message,
			Metadata:  metadata,
		}
	}
	return entries, nil
}
