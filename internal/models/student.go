package models

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Student represents a learner registered at the center. Records are owned by
// the external student-management service; this engine only reads them.
type Student struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Curriculum    string `json:"curriculum"`
	SubCurriculum string `json:"subCurriculum"`
	Level         string `json:"level"`

	// Up to five recurring weekly slots, each a weekday character with an
	// optional slot digit ("수1"); a bare weekday character is a legacy
	// weekday-only record. VisitTimeN pairs with DayN.
	Day1 string `json:"day1,omitempty"`
	Day2 string `json:"day2,omitempty"`
	Day3 string `json:"day3,omitempty"`
	Day4 string `json:"day4,omitempty"`
	Day5 string `json:"day5,omitempty"`

	VisitTime1 string `json:"visitTime1,omitempty"`
	VisitTime2 string `json:"visitTime2,omitempty"`
	VisitTime3 string `json:"visitTime3,omitempty"`
	VisitTime4 string `json:"visitTime4,omitempty"`
	VisitTime5 string `json:"visitTime5,omitempty"`
}

// WeeklySlot is one parsed recurring schedule entry.
type WeeklySlot struct {
	Weekday   time.Weekday
	Slot      int    // 0 when the record carries no slot digit
	VisitTime string // paired visitTime field, "" when unset
}

// HasSlot reports whether the entry carries an explicit slot number.
func (w WeeklySlot) HasSlot() bool {
	return w.Slot > 0
}

// ParseWeeklySlot parses a raw dayN field. The first rune must be a known
// weekday character; any trailing digits form the slot number. Malformed
// values report ok=false and are treated as non-matching by callers.
func ParseWeeklySlot(raw string) (WeeklySlot, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return WeeklySlot{}, false
	}
	runes := []rune(raw)
	wd, ok := weekdayByChar[string(runes[0])]
	if !ok {
		return WeeklySlot{}, false
	}
	slot := 0
	digits := strings.TrimFunc(string(runes[1:]), func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil || n <= 0 {
			return WeeklySlot{Weekday: wd}, true
		}
		slot = n
	}
	return WeeklySlot{Weekday: wd, Slot: slot}, true
}

// WeeklySlots parses all non-empty dayN fields, pairing each with its
// visitTime. Unparsable entries are skipped.
func (s Student) WeeklySlots() []WeeklySlot {
	days := [5]string{s.Day1, s.Day2, s.Day3, s.Day4, s.Day5}
	times := [5]string{s.VisitTime1, s.VisitTime2, s.VisitTime3, s.VisitTime4, s.VisitTime5}

	out := make([]WeeklySlot, 0, 5)
	for i, raw := range days {
		ws, ok := ParseWeeklySlot(raw)
		if !ok {
			continue
		}
		ws.VisitTime = strings.TrimSpace(times[i])
		out = append(out, ws)
	}
	return out
}

// SlotsOn returns the parsed weekly entries matching the given weekday.
func (s Student) SlotsOn(wd time.Weekday) []WeeklySlot {
	var out []WeeklySlot
	for _, ws := range s.WeeklySlots() {
		if ws.Weekday == wd {
			out = append(out, ws)
		}
	}
	return out
}

// AttendsOn reports whether the recurring schedule includes the weekday,
// regardless of slot number.
func (s Student) AttendsOn(wd time.Weekday) bool {
	return len(s.SlotsOn(wd)) > 0
}
