package service

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hakwon-ops/roster-api/internal/models"
)

// SortEngine produces the deterministic default roster order and overlays a
// persisted manual order on top of it.
//
// The comparator encodes an operational priority: on weekends students group
// by time slot, on any day students whose homework is not yet checked or
// assigned bubble up so staff attend to them first, and within a tie earlier
// arrivals are seen first.
type SortEngine struct {
	schedule *ScheduleResolver
	collator *collate.Collator
}

// NewSortEngine constructs the engine with a Korean collator for the name
// tie-break.
func NewSortEngine(schedule *ScheduleResolver) *SortEngine {
	return &SortEngine{
		schedule: schedule,
		collator: collate.New(language.Korean),
	}
}

// Sort orders entries in place by the default comparator.
func (e *SortEngine) Sort(date models.DateKey, entries []models.RosterEntry) {
	weekend := date.IsWeekend()
	sort.SliceStable(entries, func(i, j int) bool {
		return e.less(date, weekend, entries[i], entries[j])
	})
}

func (e *SortEngine) less(date models.DateKey, weekend bool, a, b models.RosterEntry) bool {
	if weekend {
		sa := e.schedule.MinSlot(date, a.Student)
		sb := e.schedule.MinSlot(date, b.Student)
		if sa != sb {
			return sa < sb
		}
	}
	if a.HwChecked != b.HwChecked {
		return !a.HwChecked
	}
	if a.HwAssigned != b.HwAssigned {
		return !a.HwAssigned
	}
	ma, mb := MinutesOf(a.Arrival), MinutesOf(b.Arrival)
	if ma != mb {
		return ma < mb
	}
	return e.collator.CompareString(a.Student.Name, b.Student.Name) < 0
}

// Overlay applies a stored manual order to default-sorted entries. Ids listed
// in the stored order come first, in stored order; every other entry is
// appended afterward preserving its default-sort relative position. Stored
// ids no longer in the roster are dropped silently.
func (e *SortEngine) Overlay(entries []models.RosterEntry, stored []string) []models.RosterEntry {
	if len(stored) == 0 {
		return entries
	}

	byID := make(map[string]models.RosterEntry, len(entries))
	for _, entry := range entries {
		byID[entry.Student.ID] = entry
	}

	out := make([]models.RosterEntry, 0, len(entries))
	placed := make(map[string]struct{}, len(stored))
	for _, sid := range stored {
		entry, ok := byID[sid]
		if !ok {
			continue // stale id
		}
		if _, dup := placed[sid]; dup {
			continue
		}
		placed[sid] = struct{}{}
		out = append(out, entry)
	}

	for _, entry := range entries {
		if _, ok := placed[entry.Student.ID]; !ok {
			out = append(out, entry)
		}
	}
	return out
}
