package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/kv"
	"github.com/hakwon-ops/roster-api/internal/models"
)

// The endpoint name is historical: the override applies to any weekday, not
// only weekends.
const slotsEndpoint = "weekend-slots"

// SlotRepository stores per-date, per-student slot-number overrides. An entry
// beats the weekday-derived slot for display and sorting.
type SlotRepository struct {
	kv      *kv.Client
	logger  *zap.Logger
	metrics StoreMetrics

	mu   sync.RWMutex
	data map[models.DateKey]map[string][]int
}

// NewSlotRepository constructs the repository.
func NewSlotRepository(client *kv.Client, logger *zap.Logger, metrics StoreMetrics) *SlotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotRepository{
		kv:      client,
		logger:  logger,
		metrics: orNilMetrics(metrics),
		data:    make(map[models.DateKey]map[string][]int),
	}
}

// Refresh reloads the document. Stored values may be a bare number or a
// number list; both normalise to a deduplicated ascending slice.
func (r *SlotRepository) Refresh(ctx context.Context) error {
	var raw map[models.DateKey]map[string]json.RawMessage
	if err := r.kv.Get(ctx, slotsEndpoint, &raw); err != nil {
		r.logger.Warn("weekend-slots read failed", zap.Error(err))
		r.metrics.StoreReadFallback(slotsEndpoint)
		return err
	}

	data := make(map[models.DateKey]map[string][]int, len(raw))
	for date, byStudent := range raw {
		day := make(map[string][]int, len(byStudent))
		for sid, value := range byStudent {
			if slots := decodeSlots(value); len(slots) > 0 {
				day[sid] = slots
			}
		}
		if len(day) > 0 {
			data[date] = day
		}
	}

	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}

// Get returns the override slots for (date, sid).
func (r *SlotRepository) Get(date models.DateKey, sid string) ([]int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slots, ok := r.data[date][sid]
	if !ok {
		return nil, false
	}
	out := make([]int, len(slots))
	copy(out, slots)
	return out, true
}

// For returns all overrides recorded for a date.
func (r *SlotRepository) For(date models.DateKey) map[string][]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	day := r.data[date]
	out := make(map[string][]int, len(day))
	for sid, slots := range day {
		cp := make([]int, len(slots))
		copy(cp, slots)
		out[sid] = cp
	}
	return out
}

// Set records an override for (date, sid). Slots are deduplicated and sorted
// ascending; an empty normalised list clears the entry instead.
func (r *SlotRepository) Set(date models.DateKey, sid string, slots []int) {
	normalised := normaliseSlots(slots)
	if len(normalised) == 0 {
		r.Clear(date, sid)
		return
	}

	r.mu.Lock()
	day := r.data[date]
	if day == nil {
		day = make(map[string][]int)
		r.data[date] = day
	}
	day[sid] = normalised
	body := r.cloneLocked()
	r.mu.Unlock()

	r.persist(body)
}

// Clear removes the override for (date, sid).
func (r *SlotRepository) Clear(date models.DateKey, sid string) {
	r.mu.Lock()
	day, ok := r.data[date]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, ok := day[sid]; !ok {
		r.mu.Unlock()
		return
	}
	delete(day, sid)
	if len(day) == 0 {
		delete(r.data, date)
	}
	body := r.cloneLocked()
	r.mu.Unlock()

	r.persist(body)
}

func (r *SlotRepository) cloneLocked() map[models.DateKey]map[string][]int {
	out := make(map[models.DateKey]map[string][]int, len(r.data))
	for date, day := range r.data {
		cp := make(map[string][]int, len(day))
		for sid, slots := range day {
			s := make([]int, len(slots))
			copy(s, slots)
			cp[sid] = s
		}
		out[date] = cp
	}
	return out
}

func (r *SlotRepository) persist(body map[models.DateKey]map[string][]int) {
	go func() {
		ctx, cancel := writeContext()
		defer cancel()
		if err := r.kv.Post(ctx, slotsEndpoint, body); err != nil {
			r.logger.Warn("weekend-slots write failed, keeping local state", zap.Error(err))
			r.metrics.StoreWriteFailure(slotsEndpoint)
			return
		}
		r.metrics.StoreWrite(slotsEndpoint)
	}()
}

// decodeSlots accepts a JSON number or number array.
func decodeSlots(raw json.RawMessage) []int {
	var single int
	if err := json.Unmarshal(raw, &single); err == nil {
		return normaliseSlots([]int{single})
	}
	var many []int
	if err := json.Unmarshal(raw, &many); err == nil {
		return normaliseSlots(many)
	}
	return nil
}

func normaliseSlots(slots []int) []int {
	seen := make(map[int]struct{}, len(slots))
	out := make([]int, 0, len(slots))
	for _, n := range slots {
		if n <= 0 {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
