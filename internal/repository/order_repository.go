package repository

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/kv"
	"github.com/hakwon-ops/roster-api/internal/models"
)

const orderEndpoint = "today-order"

// OrderRepository persists the operator's manual drag ordering per date. The
// stored order is a hint overlaid on the computed default; it is deleted
// outright whenever a structural change makes it stale.
type OrderRepository struct {
	kv      *kv.Client
	logger  *zap.Logger
	metrics StoreMetrics

	mu   sync.RWMutex
	data map[models.DateKey][]string
}

// NewOrderRepository constructs the repository.
func NewOrderRepository(client *kv.Client, logger *zap.Logger, metrics StoreMetrics) *OrderRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderRepository{
		kv:      client,
		logger:  logger,
		metrics: orNilMetrics(metrics),
		data:    make(map[models.DateKey][]string),
	}
}

// Refresh reloads stored manual orders.
func (r *OrderRepository) Refresh(ctx context.Context) error {
	var raw map[models.DateKey][]string
	if err := r.kv.Get(ctx, orderEndpoint, &raw); err != nil {
		r.logger.Warn("today-order read failed", zap.Error(err))
		r.metrics.StoreReadFallback(orderEndpoint)
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

// For returns the stored manual order for date, if any.
func (r *OrderRepository) For(date models.DateKey) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids, ok := r.data[date]
	if !ok {
		return nil, false
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, true
}

// Set stores a manual order for date. The visible order was already updated
// by the caller; persistence is fire-and-forget and a failure does not roll
// the visual order back.
func (r *OrderRepository) Set(date models.DateKey, ids []string) {
	cp := make([]string, len(ids))
	copy(cp, ids)

	r.mu.Lock()
	r.data[date] = cp
	body := r.cloneLocked()
	r.mu.Unlock()

	r.persist(body)
}

// Delete invalidates the stored order for date so the roster re-derives its
// default ordering.
func (r *OrderRepository) Delete(date models.DateKey) {
	r.mu.Lock()
	if _, ok := r.data[date]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.data, date)
	body := r.cloneLocked()
	r.mu.Unlock()

	r.persist(body)
}

func (r *OrderRepository) cloneLocked() map[models.DateKey][]string {
	out := make(map[models.DateKey][]string, len(r.data))
	for date, ids := range r.data {
		cp := make([]string, len(ids))
		copy(cp, ids)
		out[date] = cp
	}
	return out
}

func (r *OrderRepository) persist(body map[models.DateKey][]string) {
	go func() {
		ctx, cancel := writeContext()
		defer cancel()
		if err := r.kv.Post(ctx, orderEndpoint, body); err != nil {
			r.logger.Warn("today-order write failed, keeping local state", zap.Error(err))
			r.metrics.StoreWriteFailure(orderEndpoint)
			return
		}
		r.metrics.StoreWrite(orderEndpoint)
	}()
}
