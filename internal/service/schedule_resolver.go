package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hakwon-ops/roster-api/internal/models"
)

// noSlotKey sorts students without a resolvable slot after everyone else on
// weekend dates.
const noSlotKey = 99

type slotOverrides interface {
	Get(date models.DateKey, sid string) ([]int, bool)
}

// ScheduleResolver resolves a student's slot numbers and display label for a
// date. A per-date slot override always beats the recurring weekly fields,
// which lets operators record makeup slots even on a student's normal
// weekday.
type ScheduleResolver struct {
	slots slotOverrides
}

// NewScheduleResolver constructs the resolver.
func NewScheduleResolver(slots slotOverrides) *ScheduleResolver {
	return &ScheduleResolver{slots: slots}
}

// ResolveSlots returns the slot numbers for (date, student): the override if
// one exists, otherwise digits collected from the weekday-matching dayN
// fields, deduplicated ascending. Empty when the student only has a legacy
// weekday-only record.
func (r *ScheduleResolver) ResolveSlots(date models.DateKey, st models.Student) []int {
	if r.slots != nil {
		if override, ok := r.slots.Get(date, st.ID); ok && len(override) > 0 {
			return override
		}
	}

	seen := make(map[int]struct{})
	var out []int
	for _, ws := range st.SlotsOn(date.Weekday()) {
		if !ws.HasSlot() {
			continue
		}
		if _, dup := seen[ws.Slot]; dup {
			continue
		}
		seen[ws.Slot] = struct{}{}
		out = append(out, ws.Slot)
	}
	sort.Ints(out)
	return out
}

// SlotLabel renders the display label: weekday character plus each slot
// number, joined by "·" ("토1·토3"); the bare weekday character when no slot
// resolves.
func (r *ScheduleResolver) SlotLabel(date models.DateKey, st models.Student) string {
	char := date.WeekdayChar()
	slots := r.ResolveSlots(date, st)
	if len(slots) == 0 {
		return char
	}
	parts := make([]string, len(slots))
	for i, n := range slots {
		parts[i] = char + strconv.Itoa(n)
	}
	return strings.Join(parts, "·")
}

// MinSlot returns the minimum resolved slot number, or noSlotKey when none
// resolves. Used as the primary sort key on weekend dates only.
func (r *ScheduleResolver) MinSlot(date models.DateKey, st models.Student) int {
	slots := r.ResolveSlots(date, st)
	if len(slots) == 0 {
		return noSlotKey
	}
	return slots[0]
}

// DefaultArrival is the static slot→time table. One canonical table is used
// everywhere: weekday sessions start at 18:00 regardless of slot; weekend
// slot 1 is the 13:00 session and later slots the 18:00 session. Digitless
// labels fall back to the day's first session.
func DefaultArrival(date models.DateKey, slots []int) string {
	if !date.IsWeekend() {
		return "18:00"
	}
	if len(slots) == 0 || slots[0] == 1 {
		return "13:00"
	}
	return "18:00"
}
