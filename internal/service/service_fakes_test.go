package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/hakwon-ops/roster-api/internal/models"
	appErrors "github.com/hakwon-ops/roster-api/pkg/errors"
)

type fakeStudents struct {
	students []models.Student
}

func (f *fakeStudents) All() []models.Student         { return f.students }
func (f *fakeStudents) Refresh(context.Context) error { return nil }

type fakeExtras struct {
	data map[models.DateKey][]string
}

func newFakeExtras() *fakeExtras {
	return &fakeExtras{data: make(map[models.DateKey][]string)}
}

func (f *fakeExtras) For(date models.DateKey) []string { return f.data[date] }

func (f *fakeExtras) Add(date models.DateKey, sid string) bool {
	for _, id := range f.data[date] {
		if id == sid {
			return false
		}
	}
	f.data[date] = append(f.data[date], sid)
	return true
}

func (f *fakeExtras) Remove(date models.DateKey, sid string) bool {
	ids := f.data[date]
	for i, id := range ids {
		if id == sid {
			f.data[date] = append(ids[:i], ids[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeExtras) Refresh(context.Context) error { return nil }

type fakeAbsences struct {
	byStudent map[string]models.DateKey
}

func newFakeAbsences() *fakeAbsences {
	return &fakeAbsences{byStudent: make(map[string]models.DateKey)}
}

func (f *fakeAbsences) ByDate(date models.DateKey) map[string]struct{} {
	out := make(map[string]struct{})
	for sid, d := range f.byStudent {
		if d == date {
			out[sid] = struct{}{}
		}
	}
	return out
}

func (f *fakeAbsences) Mark(sid string, date models.DateKey) { f.byStudent[sid] = date }
func (f *fakeAbsences) Clear(sid string)                     { delete(f.byStudent, sid) }
func (f *fakeAbsences) Refresh(context.Context) error        { return nil }

type fakeSlots struct {
	data map[models.DateKey]map[string][]int
}

func newFakeSlots() *fakeSlots {
	return &fakeSlots{data: make(map[models.DateKey]map[string][]int)}
}

func (f *fakeSlots) Get(date models.DateKey, sid string) ([]int, bool) {
	slots, ok := f.data[date][sid]
	return slots, ok
}

func (f *fakeSlots) Set(date models.DateKey, sid string, slots []int) {
	if f.data[date] == nil {
		f.data[date] = make(map[string][]int)
	}
	f.data[date][sid] = slots
}

func (f *fakeSlots) Clear(date models.DateKey, sid string) { delete(f.data[date], sid) }
func (f *fakeSlots) Refresh(context.Context) error         { return nil }

type fakeOrders struct {
	data    map[models.DateKey][]string
	deletes []models.DateKey
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{data: make(map[models.DateKey][]string)}
}

func (f *fakeOrders) For(date models.DateKey) ([]string, bool) {
	ids, ok := f.data[date]
	return ids, ok
}

func (f *fakeOrders) Set(date models.DateKey, ids []string) { f.data[date] = ids }

func (f *fakeOrders) Delete(date models.DateKey) {
	delete(f.data, date)
	f.deletes = append(f.deletes, date)
}

func (f *fakeOrders) Refresh(context.Context) error { return nil }

type fakeLogs struct {
	data    map[models.DateKey]models.DayLogs
	patches []models.LogPatch
}

func newFakeLogs() *fakeLogs {
	return &fakeLogs{data: make(map[models.DateKey]models.DayLogs)}
}

func (f *fakeLogs) Day(date models.DateKey) models.DayLogs {
	out := make(models.DayLogs)
	for sid, entry := range f.data[date] {
		out[sid] = entry
	}
	return out
}

func (f *fakeLogs) Get(date models.DateKey, sid string) (models.LogEntry, bool) {
	entry, ok := f.data[date][sid]
	return entry, ok
}

func (f *fakeLogs) Apply(patch models.LogPatch) {
	f.patches = append(f.patches, patch)
	day := f.data[patch.Date]
	if day == nil {
		day = make(models.DayLogs)
		f.data[patch.Date] = day
	}
	entry := day[patch.SID]
	raw, _ := json.Marshal(entry)
	var asMap map[string]interface{}
	_ = json.Unmarshal(raw, &asMap)
	if asMap == nil {
		asMap = make(map[string]interface{})
	}
	for k, v := range patch.Entry {
		asMap[k] = v
	}
	for _, k := range patch.Clear {
		delete(asMap, k)
	}
	merged, _ := json.Marshal(asMap)
	var out models.LogEntry
	_ = json.Unmarshal(merged, &out)
	day[patch.SID] = out
}

func (f *fakeLogs) Refresh(context.Context) error { return nil }

func (f *fakeLogs) set(date models.DateKey, sid string, entry models.LogEntry) {
	if f.data[date] == nil {
		f.data[date] = make(models.DayLogs)
	}
	f.data[date][sid] = entry
}

type fakeFlags struct {
	data map[models.DateKey]map[string]bool
}

func newFakeFlags() *fakeFlags {
	return &fakeFlags{data: make(map[models.DateKey]map[string]bool)}
}

func (f *fakeFlags) IsSet(date models.DateKey, sid string) bool { return f.data[date][sid] }

func (f *fakeFlags) Set(date models.DateKey, sid string, on bool) {
	if f.data[date] == nil {
		f.data[date] = make(map[string]bool)
	}
	if on {
		f.data[date][sid] = true
	} else {
		delete(f.data[date], sid)
	}
}

func (f *fakeFlags) For(date models.DateKey) map[string]bool { return f.data[date] }
func (f *fakeFlags) Refresh(context.Context) error           { return nil }

type fakeArrivals struct {
	data map[models.DateKey]map[string]string
}

func newFakeArrivals() *fakeArrivals {
	return &fakeArrivals{data: make(map[models.DateKey]map[string]string)}
}

func (f *fakeArrivals) Get(date models.DateKey, sid string) (string, bool) {
	t, ok := f.data[date][sid]
	return t, ok
}

func (f *fakeArrivals) Set(date models.DateKey, sid, hhmm string) {
	if hhmm == "" {
		delete(f.data[date], sid)
		return
	}
	if f.data[date] == nil {
		f.data[date] = make(map[string]string)
	}
	f.data[date][sid] = hhmm
}

func (f *fakeArrivals) Refresh(context.Context) error { return nil }

// stubCacheRepo is an in-memory CacheRepository.
type stubCacheRepo struct {
	data map[string][]byte
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{data: make(map[string][]byte)}
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := s.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.data {
		if pattern == key || strings.HasPrefix(key, prefix) {
			delete(s.data, key)
		}
	}
	return nil
}
