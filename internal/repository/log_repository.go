package repository

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/kv"
	"github.com/hakwon-ops/roster-api/internal/models"
)

const (
	logsEndpoint     = "logs"
	logPatchEndpoint = "logs/patch"
)

// LogRepository holds the per-date class-record log. Whole-day maps are
// shared across many independent workflow actions, so every write goes
// through the store's partial-patch endpoint rather than re-sending the day's
// map; two staff members editing different fields then cannot clobber each
// other.
type LogRepository struct {
	kv      *kv.Client
	logger  *zap.Logger
	metrics StoreMetrics

	mu   sync.RWMutex
	data map[models.DateKey]models.DayLogs
}

// NewLogRepository constructs the repository.
func NewLogRepository(client *kv.Client, logger *zap.Logger, metrics StoreMetrics) *LogRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogRepository{
		kv:      client,
		logger:  logger,
		metrics: orNilMetrics(metrics),
		data:    make(map[models.DateKey]models.DayLogs),
	}
}

// Refresh reloads the full log document.
func (r *LogRepository) Refresh(ctx context.Context) error {
	var raw map[models.DateKey]models.DayLogs
	if err := r.kv.Get(ctx, logsEndpoint, &raw); err != nil {
		r.logger.Warn("logs read failed", zap.Error(err))
		r.metrics.StoreReadFallback(logsEndpoint)
		return err
	}
	if raw == nil {
		raw = make(map[models.DateKey]models.DayLogs)
	}
	r.mu.Lock()
	r.data = raw
	r.mu.Unlock()
	return nil
}

// Day returns a copy of the log map for one date.
func (r *LogRepository) Day(date models.DateKey) models.DayLogs {
	r.mu.RLock()
	defer r.mu.RUnlock()
	day := r.data[date]
	out := make(models.DayLogs, len(day))
	for sid, entry := range day {
		out[sid] = entry
	}
	return out
}

// Get returns the log entry for (date, sid).
func (r *LogRepository) Get(date models.DateKey, sid string) (models.LogEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.data[date][sid]
	return entry, ok
}

// Apply merges the patch into the local cache and forwards it to the store's
// patch endpoint. Fields listed in patch.Clear are removed.
func (r *LogRepository) Apply(patch models.LogPatch) {
	r.mu.Lock()
	day := r.data[patch.Date]
	if day == nil {
		day = make(models.DayLogs)
		r.data[patch.Date] = day
	}
	day[patch.SID] = mergeEntry(day[patch.SID], patch.Entry, patch.Clear)
	r.mu.Unlock()

	go func() {
		ctx, cancel := writeContext()
		defer cancel()
		if err := r.kv.Post(ctx, logPatchEndpoint, patch); err != nil {
			r.logger.Warn("log patch write failed, keeping local state",
				zap.String("date", patch.Date.String()),
				zap.String("sid", patch.SID),
				zap.Error(err))
			r.metrics.StoreWriteFailure(logPatchEndpoint)
			return
		}
		r.metrics.StoreWrite(logPatchEndpoint)
	}()
}

// mergeEntry applies the same field-granular merge the store performs:
// marshal the existing entry, overlay the patch fields, delete cleared keys.
func mergeEntry(entry models.LogEntry, fields map[string]interface{}, clear []string) models.LogEntry {
	raw, err := json.Marshal(entry)
	if err != nil {
		return entry
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return entry
	}
	if asMap == nil {
		asMap = make(map[string]interface{})
	}
	for k, v := range fields {
		asMap[k] = v
	}
	for _, k := range clear {
		delete(asMap, k)
	}
	merged, err := json.Marshal(asMap)
	if err != nil {
		return entry
	}
	var out models.LogEntry
	if err := json.Unmarshal(merged, &out); err != nil {
		return entry
	}
	return out
}
