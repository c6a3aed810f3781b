package repository

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/kv"
	"github.com/hakwon-ops/roster-api/internal/models"
)

const extraEndpoint = "extra-attendance"

// ExtraRepository holds ad-hoc makeup attendance: students added to a date's
// roster regardless of their recurring schedule.
type ExtraRepository struct {
	kv      *kv.Client
	logger  *zap.Logger
	metrics StoreMetrics

	mu   sync.RWMutex
	data map[models.DateKey][]string
}

// NewExtraRepository constructs the repository.
func NewExtraRepository(client *kv.Client, logger *zap.Logger, metrics StoreMetrics) *ExtraRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtraRepository{
		kv:      client,
		logger:  logger,
		metrics: orNilMetrics(metrics),
		data:    make(map[models.DateKey][]string),
	}
}

// Refresh reloads the extra-attendance document. A failed read keeps the
// current cache so resolution degrades instead of failing.
func (r *ExtraRepository) Refresh(ctx context.Context) error {
	var raw map[models.DateKey][]string
	if err := r.kv.Get(ctx, extraEndpoint, &raw); err != nil {
		r.logger.Warn("extra-attendance read failed", zap.Error(err))
		r.metrics.StoreReadFallback(extraEndpoint)
		return err
	}
	if raw == nil {
		raw = make(map[models.DateKey][]string)
	}
	r.mu.Lock()
	r.data = raw
	r.mu.Unlock()
	return nil
}

// For returns the extra-attendance student ids for a date.
func (r *ExtraRepository) For(date models.DateKey) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.data[date]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Add registers sid as an extra attendee on date. Returns false when the id
// was already present.
func (r *ExtraRepository) Add(date models.DateKey, sid string) bool {
	r.mu.Lock()
	for _, id := range r.data[date] {
		if id == sid {
			r.mu.Unlock()
			return false
		}
	}
	r.data[date] = append(r.data[date], sid)
	body := r.cloneLocked()
	r.mu.Unlock()

	r.persist(body)
	return true
}

// Remove drops sid from date's extras. Returns false when it was not listed.
func (r *ExtraRepository) Remove(date models.DateKey, sid string) bool {
	r.mu.Lock()
	ids := r.data[date]
	kept := ids[:0]
	found := false
	for _, id := range ids {
		if id == sid {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		r.mu.Unlock()
		return false
	}
	if len(kept) == 0 {
		delete(r.data, date)
	} else {
		r.data[date] = kept
	}
	body := r.cloneLocked()
	r.mu.Unlock()

	r.persist(body)
	return true
}

func (r *ExtraRepository) cloneLocked() map[models.DateKey][]string {
	out := make(map[models.DateKey][]string, len(r.data))
	for date, ids := range r.data {
		cp := make([]string, len(ids))
		copy(cp, ids)
		out[date] = cp
	}
	return out
}

func (r *ExtraRepository) persist(body map[models.DateKey][]string) {
	go func() {
		ctx, cancel := writeContext()
		defer cancel()
		if err := r.kv.Post(ctx, extraEndpoint, body); err != nil {
			r.logger.Warn("extra-attendance write failed, keeping local state", zap.Error(err))
			r.metrics.StoreWriteFailure(extraEndpoint)
			return
		}
		r.metrics.StoreWrite(extraEndpoint)
	}()
}
