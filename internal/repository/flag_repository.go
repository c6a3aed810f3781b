package repository

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/kv"
	"github.com/hakwon-ops/roster-api/internal/models"
	"github.com/hakwon-ops/roster-api/pkg/debounce"
)

const (
	// AttendanceEndpoint backs the attendance-checked flag map.
	AttendanceEndpoint = "attendance"
	// ContactEndpoint backs the contacted flag map.
	ContactEndpoint = "contact"
)

// FlagRepository is a presence-only boolean map per (date, student): the key
// exists with value 1 or is absent. Checkbox toggles arrive in bursts, so
// writes coalesce per date behind a debounce window.
type FlagRepository struct {
	kv       *kv.Client
	endpoint string
	logger   *zap.Logger
	metrics  StoreMetrics
	writer   *debounce.Writer[models.DateKey]

	mu   sync.RWMutex
	data map[models.DateKey]map[string]int
}

// NewFlagRepository constructs a repository for one flag endpoint.
func NewFlagRepository(client *kv.Client, endpoint string, logger *zap.Logger, metrics StoreMetrics, cfg debounce.Config) *FlagRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &FlagRepository{
		kv:       client,
		endpoint: endpoint,
		logger:   logger,
		metrics:  orNilMetrics(metrics),
		data:     make(map[models.DateKey]map[string]int),
	}
	cfg.Logger = logger
	r.writer = debounce.NewWriter[models.DateKey](r.flush, cfg)
	return r
}

// Refresh reloads the flag document.
func (r *FlagRepository) Refresh(ctx context.Context) error {
	var raw map[models.DateKey]map[string]int
	if err := r.kv.Get(ctx, r.endpoint, &raw); err != nil {
		r.logger.Warn("flag read failed", zap.String("endpoint", r.endpoint), zap.Error(err))
		r.metrics.StoreReadFallback(r.endpoint)
		return err
	}
	if raw == nil {
		raw = make(map[models.DateKey]map[string]int)
	}
	r.mu.Lock()
	r.data = raw
	r.mu.Unlock()
	return nil
}

// IsSet reports whether the flag is on for (date, sid).
func (r *FlagRepository) IsSet(date models.DateKey, sid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.data[date][sid]
	return ok
}

// For returns the set student ids for a date.
func (r *FlagRepository) For(date models.DateKey) map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	day := r.data[date]
	out := make(map[string]bool, len(day))
	for sid := range day {
		out[sid] = true
	}
	return out
}

// Set turns the flag on or off locally and schedules a coalesced write of the
// whole document.
func (r *FlagRepository) Set(date models.DateKey, sid string, on bool) {
	r.mu.Lock()
	day := r.data[date]
	if on {
		if day == nil {
			day = make(map[string]int)
			r.data[date] = day
		}
		day[sid] = 1
	} else if day != nil {
		delete(day, sid)
		if len(day) == 0 {
			delete(r.data, date)
		}
	}
	r.mu.Unlock()

	r.writer.Trigger(date)
}

// FlushPending forces all coalesced writes out, used on shutdown.
func (r *FlagRepository) FlushPending() {
	r.writer.FlushAll()
}

func (r *FlagRepository) flush(models.DateKey) {
	r.mu.RLock()
	body := make(map[models.DateKey]map[string]int, len(r.data))
	for date, day := range r.data {
		cp := make(map[string]int, len(day))
		for sid, v := range day {
			cp[sid] = v
		}
		body[date] = cp
	}
	r.mu.RUnlock()

	ctx, cancel := writeContext()
	defer cancel()
	if err := r.kv.Post(ctx, r.endpoint, body); err != nil {
		r.logger.Warn("flag write failed, keeping local state", zap.String("endpoint", r.endpoint), zap.Error(err))
		r.metrics.StoreWriteFailure(r.endpoint)
		return
	}
	r.metrics.StoreWrite(r.endpoint)
}
