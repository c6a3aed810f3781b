package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hakwon-ops/roster-api/internal/models"
)

// unresolvedMinutes sorts entries without a valid arrival time after all
// timed entries.
const unresolvedMinutes = 1 << 30

type arrivalOverrides interface {
	Get(date models.DateKey, sid string) (string, bool)
}

// TimeResolver computes the display/sort arrival time for a student on a
// date, highest precedence first: explicit per-date override, the student's
// per-weekday visitTime, then the slot default table.
type TimeResolver struct {
	arrivals arrivalOverrides
	schedule *ScheduleResolver
}

// NewTimeResolver constructs the resolver.
func NewTimeResolver(arrivals arrivalOverrides, schedule *ScheduleResolver) *TimeResolver {
	return &TimeResolver{arrivals: arrivals, schedule: schedule}
}

// Arrival resolves the arrival time as "HH:MM", or "" when nothing resolves.
func (t *TimeResolver) Arrival(date models.DateKey, st models.Student) string {
	if t.arrivals != nil {
		if raw, ok := t.arrivals.Get(date, st.ID); ok {
			if norm, ok := NormalizeTime(raw); ok {
				return norm
			}
		}
	}

	for _, ws := range st.SlotsOn(date.Weekday()) {
		if ws.VisitTime == "" {
			continue
		}
		if norm, ok := NormalizeTime(ws.VisitTime); ok {
			return norm
		}
	}

	return DefaultArrival(date, t.schedule.ResolveSlots(date, st))
}

// NormalizeTime canonicalises "H", "H:M" or "HH:MM" input to zero-padded
// "HH:MM". Out-of-range components are clamped rather than rejected;
// non-numeric input reports ok=false.
func NormalizeTime(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	hourPart := raw
	minutePart := "0"
	if idx := strings.Index(raw, ":"); idx >= 0 {
		hourPart = raw[:idx]
		minutePart = raw[idx+1:]
		if minutePart == "" {
			minutePart = "0"
		}
	}

	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil {
		return "", false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minutePart))
	if err != nil {
		return "", false
	}

	hour = clamp(hour, 0, 23)
	minute = clamp(minute, 0, 59)
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// MinutesOf converts "HH:MM" to minutes since midnight; unresolvedMinutes
// when the value is empty or malformed.
func MinutesOf(hhmm string) int {
	norm, ok := NormalizeTime(hhmm)
	if !ok {
		return unresolvedMinutes
	}
	hour, _ := strconv.Atoi(norm[:2])
	minute, _ := strconv.Atoi(norm[3:])
	return hour*60 + minute
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
