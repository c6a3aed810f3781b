package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/kv"
	"github.com/hakwon-ops/roster-api/internal/models"
	"github.com/hakwon-ops/roster-api/pkg/debounce"
)

const arrivalEndpoint = "arrive-time"

// ArrivalRepository stores explicit per-date arrival-time overrides, the
// highest-precedence arrival source. Manual edits arrive keystroke by
// keystroke, so writes coalesce per date.
type ArrivalRepository struct {
	kv      *kv.Client
	logger  *zap.Logger
	metrics StoreMetrics
	writer  *debounce.Writer[models.DateKey]
	now     func() time.Time

	mu   sync.RWMutex
	data map[models.DateKey]map[string]string
}

// NewArrivalRepository constructs the repository. now is injectable for
// tests; nil means wall clock.
func NewArrivalRepository(client *kv.Client, logger *zap.Logger, metrics StoreMetrics, cfg debounce.Config, now func() time.Time) *ArrivalRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	r := &ArrivalRepository{
		kv:      client,
		logger:  logger,
		metrics: orNilMetrics(metrics),
		now:     now,
		data:    make(map[models.DateKey]map[string]string),
	}
	cfg.Logger = logger
	r.writer = debounce.NewWriter[models.DateKey](r.flush, cfg)
	return r
}

// Refresh reloads arrival overrides. Older documents were flat sid→time maps
// with no date level; flat entries are normalised under today's date.
func (r *ArrivalRepository) Refresh(ctx context.Context) error {
	var raw map[string]json.RawMessage
	if err := r.kv.Get(ctx, arrivalEndpoint, &raw); err != nil {
		r.logger.Warn("arrive-time read failed", zap.Error(err))
		r.metrics.StoreReadFallback(arrivalEndpoint)
		return err
	}

	today := models.DateKeyOf(r.now())
	data := make(map[models.DateKey]map[string]string)
	for key, value := range raw {
		var nested map[string]string
		if err := json.Unmarshal(value, &nested); err == nil {
			date, ok := models.ParseDateKey(key)
			if !ok {
				continue
			}
			if len(nested) > 0 {
				data[date] = nested
			}
			continue
		}
		var flat string
		if err := json.Unmarshal(value, &flat); err == nil && flat != "" {
			day := data[today]
			if day == nil {
				day = make(map[string]string)
				data[today] = day
			}
			day[key] = flat
		}
	}

	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}

// Get returns the arrival override for (date, sid).
func (r *ArrivalRepository) Get(date models.DateKey, sid string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.data[date][sid]
	return t, ok
}

// For returns all overrides for a date.
func (r *ArrivalRepository) For(date models.DateKey) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	day := r.data[date]
	out := make(map[string]string, len(day))
	for sid, t := range day {
		out[sid] = t
	}
	return out
}

// Set records an override locally and schedules a coalesced write. An empty
// time clears the entry.
func (r *ArrivalRepository) Set(date models.DateKey, sid, hhmm string) {
	r.mu.Lock()
	day := r.data[date]
	if hhmm == "" {
		if day != nil {
			delete(day, sid)
			if len(day) == 0 {
				delete(r.data, date)
			}
		}
	} else {
		if day == nil {
			day = make(map[string]string)
			r.data[date] = day
		}
		day[sid] = hhmm
	}
	r.mu.Unlock()

	r.writer.Trigger(date)
}

// FlushPending forces all coalesced writes out, used on shutdown.
func (r *ArrivalRepository) FlushPending() {
	r.writer.FlushAll()
}

func (r *ArrivalRepository) flush(models.DateKey) {
	r.mu.RLock()
	body := make(map[models.DateKey]map[string]string, len(r.data))
	for date, day := range r.data {
		cp := make(map[string]string, len(day))
		for sid, t := range day {
			cp[sid] = t
		}
		body[date] = cp
	}
	r.mu.RUnlock()

	ctx, cancel := writeContext()
	defer cancel()
	if err := r.kv.Post(ctx, arrivalEndpoint, body); err != nil {
		r.logger.Warn("arrive-time write failed, keeping local state", zap.Error(err))
		r.metrics.StoreWriteFailure(arrivalEndpoint)
		return
	}
	r.metrics.StoreWrite(arrivalEndpoint)
}
