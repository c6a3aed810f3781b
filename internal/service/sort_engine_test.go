package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hakwon-ops/roster-api/internal/models"
)

func entry(id, name, arrival string, hwAssigned, hwChecked bool) models.RosterEntry {
	return models.RosterEntry{
		Student:    models.Student{ID: id, Name: name},
		Arrival:    arrival,
		HwAssigned: hwAssigned,
		HwChecked:  hwChecked,
	}
}

func ids(entries []models.RosterEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Student.ID
	}
	return out
}

func TestSortHomeworkFlagsBeforeArrival(t *testing.T) {
	engine := NewSortEngine(NewScheduleResolver(newFakeSlots()))
	entries := []models.RosterEntry{
		entry("checked", "가", "10:00", true, true),
		entry("assigned", "나", "11:00", true, false),
		entry("fresh", "다", "12:00", false, false),
	}

	engine.Sort(wednesday, entries)

	// Unchecked students surface first even when they arrive later.
	assert.Equal(t, []string{"fresh", "assigned", "checked"}, ids(entries))
}

func TestSortArrivalThenName(t *testing.T) {
	engine := NewSortEngine(NewScheduleResolver(newFakeSlots()))
	entries := []models.RosterEntry{
		entry("late", "가람", "19:00", false, false),
		entry("early", "나래", "18:00", false, false),
		entry("noTime", "다솜", "", false, false),
		entry("tieB", "하늘", "18:30", false, false),
		entry("tieA", "구름", "18:30", false, false),
	}

	engine.Sort(wednesday, entries)

	// Invalid times sort last; the 18:30 tie breaks by Korean name order.
	assert.Equal(t, []string{"early", "tieA", "tieB", "late", "noTime"}, ids(entries))
}

func TestSortDeterministicAcrossRuns(t *testing.T) {
	engine := NewSortEngine(NewScheduleResolver(newFakeSlots()))
	build := func() []models.RosterEntry {
		return []models.RosterEntry{
			entry("b", "바다", "18:00", false, false),
			entry("a", "산", "18:00", false, false),
		}
	}

	first := build()
	engine.Sort(wednesday, first)
	for i := 0; i < 5; i++ {
		again := build()
		engine.Sort(wednesday, again)
		assert.Equal(t, ids(first), ids(again))
	}
}

func TestWeekendSlotIsPrimaryKey(t *testing.T) {
	slots := newFakeSlots()
	slots.Set(saturday, "slot2", []int{2})
	slots.Set(saturday, "slot1", []int{1})
	engine := NewSortEngine(NewScheduleResolver(slots))

	entries := []models.RosterEntry{
		entry("slot2", "가", "13:00", false, false),
		entry("noSlot", "나", "12:00", false, false),
		entry("slot1", "다", "18:00", false, false),
	}

	engine.Sort(saturday, entries)
	// Min slot groups first; slotless students go last (key 99) despite
	// arriving earliest.
	assert.Equal(t, []string{"slot1", "slot2", "noSlot"}, ids(entries))

	// On a weekday the same data ignores slots entirely.
	weekdayEntries := []models.RosterEntry{
		entry("slot2", "가", "13:00", false, false),
		entry("noSlot", "나", "12:00", false, false),
		entry("slot1", "다", "18:00", false, false),
	}
	engine.Sort(wednesday, weekdayEntries)
	assert.Equal(t, []string{"noSlot", "slot2", "slot1"}, ids(weekdayEntries))
}

func TestOverlayAppliesStoredOrderAndAppendsRest(t *testing.T) {
	engine := NewSortEngine(NewScheduleResolver(newFakeSlots()))
	defaultOrder := []models.RosterEntry{
		entry("a", "", "", false, false),
		entry("b", "", "", false, false),
		entry("c", "", "", false, false),
		entry("d", "", "", false, false),
	}

	out := engine.Overlay(defaultOrder, []string{"c", "a"})

	// Stored ids first in stored order; the rest keep default relative order.
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(out))
}

func TestOverlayDropsStaleIDs(t *testing.T) {
	engine := NewSortEngine(NewScheduleResolver(newFakeSlots()))
	defaultOrder := []models.RosterEntry{
		entry("a", "", "", false, false),
		entry("b", "", "", false, false),
	}

	out := engine.Overlay(defaultOrder, []string{"gone", "b", "gone2"})
	assert.Equal(t, []string{"b", "a"}, ids(out))
}

func TestOverlayEmptyStoredOrderIsIdentity(t *testing.T) {
	engine := NewSortEngine(NewScheduleResolver(newFakeSlots()))
	defaultOrder := []models.RosterEntry{
		entry("a", "", "", false, false),
		entry("b", "", "", false, false),
	}
	out := engine.Overlay(defaultOrder, nil)
	assert.Equal(t, []string{"a", "b"}, ids(out))
}
