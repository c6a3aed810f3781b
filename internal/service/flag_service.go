package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/bus"
	"github.com/hakwon-ops/roster-api/internal/models"
	appErrors "github.com/hakwon-ops/roster-api/pkg/errors"
)

// FlagServiceParams wires the workflow-flag dependencies.
type FlagServiceParams struct {
	Attendance flagStore
	Contact    flagStore
	Arrivals   arrivalStore
	Logs       logStore

	Bus       *bus.Bus
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() time.Time
}

// FlagService mutates the per-date workflow state: attendance and contact
// checkboxes, homework flags, check-out and archiving. Log-backed fields go
// through the store's partial-patch path so concurrent staff edits to
// unrelated fields cannot clobber each other.
type FlagService struct {
	attendance flagStore
	contact    flagStore
	arrivals   arrivalStore
	logs       logStore

	bus       *bus.Bus
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFlagService instantiates FlagService.
func NewFlagService(p FlagServiceParams) *FlagService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &FlagService{
		attendance: p.Attendance,
		contact:    p.Contact,
		arrivals:   p.Arrivals,
		logs:       p.Logs,
		bus:        p.Bus,
		validator:  p.Validator,
		logger:     p.Logger,
		now:        p.Now,
	}
}

// ToggleRequest carries a checkbox state.
type ToggleRequest struct {
	Value *bool `json:"value" validate:"required"`
}

// SetAttended toggles the attendance checkbox. Turning it on stamps the
// arrival override to the current wall-clock time: the student actually
// walked in now, beating any schedule-derived estimate. Turning it off keeps
// the override so manual corrections survive.
func (s *FlagService) SetAttended(_ context.Context, date models.DateKey, sid string, req ToggleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload")
	}

	on := *req.Value
	s.attendance.Set(date, sid, on)
	s.publish(bus.Change{Kind: bus.KindAttendance, Date: date, StudentID: sid})

	if on {
		stamp := s.now().Format("15:04")
		s.arrivals.Set(date, sid, stamp)
		s.publish(bus.Change{Kind: bus.KindArrival, Date: date, StudentID: sid})
	}
	return nil
}

// SetContacted toggles the contacted checkbox.
func (s *FlagService) SetContacted(_ context.Context, date models.DateKey, sid string, req ToggleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload")
	}
	s.contact.Set(date, sid, *req.Value)
	s.publish(bus.Change{Kind: bus.KindContact, Date: date, StudentID: sid})
	return nil
}

// HomeworkRequest updates homework flags; at least one field must be set.
type HomeworkRequest struct {
	Assigned *bool `json:"assigned"`
	Checked  *bool `json:"checked"`
}

// SetHomework updates the homework flags stored in the day's log entry.
// Checking homework implies an assignment occurred, so checked=true also
// sets assigned.
func (s *FlagService) SetHomework(_ context.Context, date models.DateKey, sid string, req HomeworkRequest) error {
	if req.Assigned == nil && req.Checked == nil {
		return appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "assigned or checked required")
	}

	fields := make(map[string]interface{}, 2)
	if req.Assigned != nil {
		fields["hwAssigned"] = *req.Assigned
	}
	if req.Checked != nil {
		fields["hwChecked"] = *req.Checked
		if *req.Checked {
			fields["hwAssigned"] = true
		}
	}

	s.logs.Apply(models.LogPatch{Date: date, SID: sid, Entry: fields})
	s.publish(bus.Change{Kind: bus.KindLogs, Date: date, StudentID: sid})
	return nil
}

// MarkDone checks the student out: the session is complete and the student
// leaves the active roster. The leave time is stamped when not already
// recorded. done=false reinstates the student without touching leave time.
func (s *FlagService) MarkDone(_ context.Context, date models.DateKey, sid string, req ToggleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload")
	}

	fields := map[string]interface{}{"done": *req.Value}
	if *req.Value {
		if entry, ok := s.logs.Get(date, sid); !ok || entry.LeaveTime == "" {
			fields["leaveTime"] = s.now().Format("15:04")
		}
	}

	s.logs.Apply(models.LogPatch{Date: date, SID: sid, Entry: fields})
	s.publish(bus.Change{Kind: bus.KindLogs, Date: date, StudentID: sid})
	return nil
}

// Archive hides a finished record from the done view, keeping its history.
func (s *FlagService) Archive(_ context.Context, date models.DateKey, sid string) {
	s.logs.Apply(models.LogPatch{Date: date, SID: sid, Entry: map[string]interface{}{"archived": true}})
	s.publish(bus.Change{Kind: bus.KindLogs, Date: date, StudentID: sid})
}

// TimeRequest carries a manually edited time; empty clears the value.
type TimeRequest struct {
	Time string `json:"time"`
}

// SetArrival records a manual arrival-time override.
func (s *FlagService) SetArrival(_ context.Context, date models.DateKey, sid string, req TimeRequest) error {
	value := ""
	if req.Time != "" {
		norm, ok := NormalizeTime(req.Time)
		if !ok {
			return appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unparsable time")
		}
		value = norm
	}
	s.arrivals.Set(date, sid, value)
	s.publish(bus.Change{Kind: bus.KindArrival, Date: date, StudentID: sid})
	return nil
}

// SetLeave edits the leave time stored in the day's log entry. An empty time
// clears the field via the patch deletion list instead of writing a zero
// value.
func (s *FlagService) SetLeave(_ context.Context, date models.DateKey, sid string, req TimeRequest) error {
	patch := models.LogPatch{Date: date, SID: sid, Entry: map[string]interface{}{}}
	if req.Time == "" {
		patch.Clear = []string{"leaveTime"}
	} else {
		norm, ok := NormalizeTime(req.Time)
		if !ok {
			return appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unparsable time")
		}
		patch.Entry["leaveTime"] = norm
	}

	s.logs.Apply(patch)
	s.publish(bus.Change{Kind: bus.KindLogs, Date: date, StudentID: sid})
	return nil
}

func (s *FlagService) publish(ch bus.Change) {
	if s.bus != nil {
		s.bus.Publish(ch)
	}
}
