package models

import "time"

const dateKeyLayout = "2006-01-02"

// DateKey is a calendar date in the operator's local timezone, formatted
// "YYYY-MM-DD". Every override map in the backing store is keyed by it.
type DateKey string

// ParseDateKey validates raw and returns it as a DateKey.
func ParseDateKey(raw string) (DateKey, bool) {
	if _, err := time.ParseInLocation(dateKeyLayout, raw, time.Local); err != nil {
		return "", false
	}
	return DateKey(raw), true
}

// DateKeyOf formats t as a DateKey in local time.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Local().Format(dateKeyLayout))
}

// Time returns the midnight instant of the date in local time.
func (d DateKey) Time() time.Time {
	t, _ := time.ParseInLocation(dateKeyLayout, string(d), time.Local)
	return t
}

// Weekday returns the calendar weekday of the date.
func (d DateKey) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// WeekdayChar returns the single Hangul character used in schedule fields
// for this date's weekday.
func (d DateKey) WeekdayChar() string {
	return weekdayChars[d.Weekday()]
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func (d DateKey) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d DateKey) String() string {
	return string(d)
}

var weekdayChars = map[time.Weekday]string{
	time.Sunday:    "일",
	time.Monday:    "월",
	time.Tuesday:   "화",
	time.Wednesday: "수",
	time.Thursday:  "목",
	time.Friday:    "금",
	time.Saturday:  "토",
}

var weekdayByChar = map[string]time.Weekday{
	"일": time.Sunday,
	"월": time.Monday,
	"화": time.Tuesday,
	"수": time.Wednesday,
	"목": time.Thursday,
	"금": time.Friday,
	"토": time.Saturday,
}
