package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/bus"
	"github.com/hakwon-ops/roster-api/internal/models"
	appErrors "github.com/hakwon-ops/roster-api/pkg/errors"
)

type studentSource interface {
	All() []models.Student
	Refresh(ctx context.Context) error
}

type extraStore interface {
	For(date models.DateKey) []string
	Add(date models.DateKey, sid string) bool
	Remove(date models.DateKey, sid string) bool
	Refresh(ctx context.Context) error
}

type absenceStore interface {
	ByDate(date models.DateKey) map[string]struct{}
	Mark(sid string, date models.DateKey)
	Clear(sid string)
	Refresh(ctx context.Context) error
}

type slotStore interface {
	slotOverrides
	Set(date models.DateKey, sid string, slots []int)
	Clear(date models.DateKey, sid string)
	Refresh(ctx context.Context) error
}

type orderStore interface {
	For(date models.DateKey) ([]string, bool)
	Set(date models.DateKey, ids []string)
	Delete(date models.DateKey)
	Refresh(ctx context.Context) error
}

type logStore interface {
	Day(date models.DateKey) models.DayLogs
	Get(date models.DateKey, sid string) (models.LogEntry, bool)
	Apply(patch models.LogPatch)
	Refresh(ctx context.Context) error
}

type flagStore interface {
	IsSet(date models.DateKey, sid string) bool
	Set(date models.DateKey, sid string, on bool)
	For(date models.DateKey) map[string]bool
	Refresh(ctx context.Context) error
}

type arrivalStore interface {
	arrivalOverrides
	Set(date models.DateKey, sid, hhmm string)
	Refresh(ctx context.Context) error
}

// RosterServiceParams wires the service's dependencies.
type RosterServiceParams struct {
	Students   studentSource
	Extras     extraStore
	Absences   absenceStore
	Slots      slotStore
	Orders     orderStore
	Logs       logStore
	Attendance flagStore
	Contact    flagStore
	Arrivals   arrivalStore

	Schedule *ScheduleResolver
	Times    *TimeResolver
	Sorter   *SortEngine

	Cache     *CacheService
	Bus       *bus.Bus
	Validator *validator.Validate
	Logger    *zap.Logger
	Metrics   *MetricsService
}

// RosterService derives the ordered set of students present on a date from
// the recurring schedule and the independent override layers. Resolution is
// recomputed, never patched: every override mutation publishes a change event
// that drops the cached result for that date.
type RosterService struct {
	students   studentSource
	extras     extraStore
	absences   absenceStore
	slots      slotStore
	orders     orderStore
	logs       logStore
	attendance flagStore
	contact    flagStore
	arrivals   arrivalStore

	schedule *ScheduleResolver
	times    *TimeResolver
	sorter   *SortEngine

	cache     *CacheService
	bus       *bus.Bus
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewRosterService instantiates the service and subscribes it to override
// change events.
func NewRosterService(p RosterServiceParams) *RosterService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	s := &RosterService{
		students:   p.Students,
		extras:     p.Extras,
		absences:   p.Absences,
		slots:      p.Slots,
		orders:     p.Orders,
		logs:       p.Logs,
		attendance: p.Attendance,
		contact:    p.Contact,
		arrivals:   p.Arrivals,
		schedule:   p.Schedule,
		times:      p.Times,
		sorter:     p.Sorter,
		cache:      p.Cache,
		bus:        p.Bus,
		validator:  p.Validator,
		logger:     p.Logger,
		metrics:    p.Metrics,
	}
	if s.bus != nil {
		s.bus.Subscribe(s.onChange)
	}
	return s
}

func (s *RosterService) onChange(ch bus.Change) {
	// A slot edit or a makeup-attendance change makes any stored manual
	// order semantically stale; drop it so the roster re-derives a fresh
	// default ordering.
	if ch.Kind == bus.KindSlots || ch.Kind == bus.KindExtra {
		s.orders.Delete(ch.Date)
	}

	ctx := context.Background()
	if ch.Date != "" {
		_ = s.cache.Invalidate(ctx, rosterCacheKey(ch.Date))
		return
	}
	_ = s.cache.Invalidate(ctx, "roster:*")
}

func rosterCacheKey(date models.DateKey) string {
	return "roster:" + date.String()
}

// Resolve returns the ordered roster for a date.
func (s *RosterService) Resolve(ctx context.Context, date models.DateKey) []models.RosterEntry {
	var cached []models.RosterEntry
	if hit, _ := s.cache.Get(ctx, rosterCacheKey(date), &cached); hit {
		return cached
	}

	start := time.Now()
	entries := s.compute(date)
	if s.metrics != nil {
		s.metrics.ObserveResolve(time.Since(start))
	}

	_ = s.cache.Set(ctx, rosterCacheKey(date), entries, 0)
	return entries
}

// compute is the pure resolution pass: regular ∪ extra, minus absent, minus
// done, then default sort and manual-order overlay.
func (s *RosterService) compute(date models.DateKey) []models.RosterEntry {
	weekday := date.Weekday()
	students := s.students.All()

	byID := make(map[string]models.Student, len(students))
	for _, st := range students {
		if st.ID == "" {
			continue // malformed record, never fatal
		}
		byID[st.ID] = st
	}

	merged := make([]models.Student, 0, len(students))
	seen := make(map[string]struct{}, len(students))
	for _, st := range students {
		if st.ID == "" || !st.AttendsOn(weekday) {
			continue
		}
		merged = append(merged, st)
		seen[st.ID] = struct{}{}
	}
	for _, sid := range s.extras.For(date) {
		if _, dup := seen[sid]; dup {
			continue
		}
		st, known := byID[sid]
		if !known {
			continue // unknown id in override data, skip
		}
		merged = append(merged, st)
		seen[sid] = struct{}{}
	}

	absent := s.absences.ByDate(date)
	logs := s.logs.Day(date)

	entries := make([]models.RosterEntry, 0, len(merged))
	for _, st := range merged {
		if _, gone := absent[st.ID]; gone {
			continue
		}
		record := logs[st.ID]
		if record.Done {
			continue // surfaces in the done view instead
		}
		entries = append(entries, models.RosterEntry{
			Student:    st,
			SlotLabel:  s.schedule.SlotLabel(date, st),
			Arrival:    s.times.Arrival(date, st),
			Leave:      record.LeaveTime,
			Attended:   s.attendance.IsSet(date, st.ID),
			Contacted:  s.contact.IsSet(date, st.ID),
			HwAssigned: record.HwAssigned,
			HwChecked:  record.HwChecked,
		})
	}

	s.sorter.Sort(date, entries)
	if stored, ok := s.orders.For(date); ok {
		entries = s.sorter.Overlay(entries, stored)
	}
	return entries
}

// DoneList returns today's finished sessions, excluding archived records.
func (s *RosterService) DoneList(_ context.Context, date models.DateKey) []models.DoneEntry {
	byID := make(map[string]models.Student)
	for _, st := range s.students.All() {
		byID[st.ID] = st
	}

	var out []models.DoneEntry
	for sid, record := range s.logs.Day(date) {
		if !record.Done || record.Archived {
			continue
		}
		st, known := byID[sid]
		if !known {
			continue
		}
		out = append(out, models.DoneEntry{Student: st, Entry: record})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entry.LeaveTime != out[j].Entry.LeaveTime {
			return out[i].Entry.LeaveTime < out[j].Entry.LeaveTime
		}
		return out[i].Student.ID < out[j].Student.ID
	})
	return out
}

// ReorderRequest carries a manual drag ordering for one date.
type ReorderRequest struct {
	Order []string `json:"order" validate:"required,min=1"`
}

// Reorder persists the operator's manual order. The caller already sees the
// new order; persistence runs behind the scenes and failures do not roll the
// visible order back.
func (s *RosterService) Reorder(_ context.Context, date models.DateKey, req ReorderRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order payload")
	}
	s.orders.Set(date, req.Order)
	s.publish(bus.Change{Kind: bus.KindOrder, Date: date})
	return nil
}

// ExtraRequest adds or removes a makeup attendance on a date.
type ExtraRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Remove    bool   `json:"remove"`
}

// SetExtra registers or removes an ad-hoc attendee.
func (s *RosterService) SetExtra(_ context.Context, date models.DateKey, req ExtraRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid extra-attendance payload")
	}
	var changed bool
	if req.Remove {
		changed = s.extras.Remove(date, req.StudentID)
	} else {
		changed = s.extras.Add(date, req.StudentID)
	}
	if changed {
		s.publish(bus.Change{Kind: bus.KindExtra, Date: date, StudentID: req.StudentID})
	}
	return nil
}

// SlotsRequest assigns explicit slot numbers for a student on a date.
type SlotsRequest struct {
	Slots []int `json:"slots" validate:"required,min=1,dive,gt=0"`
}

// SetSlots records a per-date slot override.
func (s *RosterService) SetSlots(_ context.Context, date models.DateKey, sid string, req SlotsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slots payload")
	}
	s.slots.Set(date, sid, req.Slots)
	s.publish(bus.Change{Kind: bus.KindSlots, Date: date, StudentID: sid})
	return nil
}

// ClearSlots removes a per-date slot override.
func (s *RosterService) ClearSlots(_ context.Context, date models.DateKey, sid string) {
	s.slots.Clear(date, sid)
	s.publish(bus.Change{Kind: bus.KindSlots, Date: date, StudentID: sid})
}

// MarkAbsent records sid as absent on date.
func (s *RosterService) MarkAbsent(_ context.Context, date models.DateKey, sid string) {
	s.absences.Mark(sid, date)
	s.publish(bus.Change{Kind: bus.KindAbsence, Date: date, StudentID: sid})
}

// ClearAbsent removes sid's absence record.
func (s *RosterService) ClearAbsent(_ context.Context, date models.DateKey, sid string) {
	s.absences.Clear(sid)
	s.publish(bus.Change{Kind: bus.KindAbsence, Date: date, StudentID: sid})
}

// RefreshAll reloads every backing document and drops all cached rosters.
// Individual read failures degrade to the previous cache; the refresh never
// fails as a whole.
func (s *RosterService) RefreshAll(ctx context.Context) {
	type refresher interface {
		Refresh(ctx context.Context) error
	}
	sources := []refresher{
		s.students, s.extras, s.absences, s.slots,
		s.orders, s.logs, s.attendance, s.contact, s.arrivals,
	}
	for _, src := range sources {
		if err := src.Refresh(ctx); err != nil {
			s.logger.Warn("refresh degraded", zap.Error(err))
		}
	}
	s.publish(bus.Change{Kind: bus.KindRefresh})
}

func (s *RosterService) publish(ch bus.Change) {
	if s.bus != nil {
		s.bus.Publish(ch)
	}
}
