package repository

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/kv"
	"github.com/hakwon-ops/roster-api/internal/models"
)

const absenceEndpoint = "absence"

// absenceDocument is the wire shape. by_student is canonical; by_date is
// regenerated from it before every write so the two views cannot drift.
type absenceDocument struct {
	ByStudent map[string]models.DateKey   `json:"by_student"`
	ByDate    map[models.DateKey][]string `json:"by_date"`
}

// AbsenceRepository holds each student's active absence date. The per-date
// view consumed by roster resolution is derived on read.
type AbsenceRepository struct {
	kv      *kv.Client
	logger  *zap.Logger
	metrics StoreMetrics

	mu        sync.RWMutex
	byStudent map[string]models.DateKey
}

// NewAbsenceRepository constructs the repository.
func NewAbsenceRepository(client *kv.Client, logger *zap.Logger, metrics StoreMetrics) *AbsenceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceRepository{
		kv:        client,
		logger:    logger,
		metrics:   orNilMetrics(metrics),
		byStudent: make(map[string]models.DateKey),
	}
}

// Refresh reloads absence data. Legacy documents may carry only by_date; in
// that case the canonical map is rebuilt taking each student's latest date.
func (r *AbsenceRepository) Refresh(ctx context.Context) error {
	var doc absenceDocument
	if err := r.kv.Get(ctx, absenceEndpoint, &doc); err != nil {
		r.logger.Warn("absence read failed", zap.Error(err))
		r.metrics.StoreReadFallback(absenceEndpoint)
		return err
	}

	byStudent := doc.ByStudent
	if len(byStudent) == 0 && len(doc.ByDate) > 0 {
		byStudent = make(map[string]models.DateKey)
		for date, sids := range doc.ByDate {
			for _, sid := range sids {
				if current, ok := byStudent[sid]; !ok || date > current {
					byStudent[sid] = date
				}
			}
		}
	}
	if byStudent == nil {
		byStudent = make(map[string]models.DateKey)
	}

	r.mu.Lock()
	r.byStudent = byStudent
	r.mu.Unlock()
	return nil
}

// DateOf returns the active absence date recorded for sid.
func (r *AbsenceRepository) DateOf(sid string) (models.DateKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	date, ok := r.byStudent[sid]
	return date, ok
}

// ByDate returns the set of students absent on date, derived from the
// canonical by-student map.
func (r *AbsenceRepository) ByDate(date models.DateKey) map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{})
	for sid, d := range r.byStudent {
		if d == date {
			out[sid] = struct{}{}
		}
	}
	return out
}

// Mark records sid as absent on date, replacing any earlier absence date.
func (r *AbsenceRepository) Mark(sid string, date models.DateKey) {
	r.mu.Lock()
	r.byStudent[sid] = date
	body := r.documentLocked()
	r.mu.Unlock()

	r.persist(body)
}

// Clear removes sid's absence record entirely.
func (r *AbsenceRepository) Clear(sid string) {
	r.mu.Lock()
	if _, ok := r.byStudent[sid]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byStudent, sid)
	body := r.documentLocked()
	r.mu.Unlock()

	r.persist(body)
}

func (r *AbsenceRepository) documentLocked() absenceDocument {
	byStudent := make(map[string]models.DateKey, len(r.byStudent))
	byDate := make(map[models.DateKey][]string)
	for sid, date := range r.byStudent {
		byStudent[sid] = date
		byDate[date] = append(byDate[date], sid)
	}
	for _, sids := range byDate {
		sort.Strings(sids)
	}
	return absenceDocument{ByStudent: byStudent, ByDate: byDate}
}

func (r *AbsenceRepository) persist(body absenceDocument) {
	go func() {
		ctx, cancel := writeContext()
		defer cancel()
		if err := r.kv.Post(ctx, absenceEndpoint, body); err != nil {
			r.logger.Warn("absence write failed, keeping local state", zap.Error(err))
			r.metrics.StoreWriteFailure(absenceEndpoint)
			return
		}
		r.metrics.StoreWrite(absenceEndpoint)
	}()
}
