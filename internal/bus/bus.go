// Package bus decouples override-store mutations from the components that
// must react to them. Writers publish typed change events; the roster cache
// and the manual-order invalidation logic subscribe.
package bus

import (
	"sync"

	"github.com/hakwon-ops/roster-api/internal/models"
)

// Kind identifies which override layer changed.
type Kind string

const (
	KindStudents   Kind = "students"
	KindExtra      Kind = "extra"
	KindSlots      Kind = "slots"
	KindAbsence    Kind = "absence"
	KindOrder      Kind = "order"
	KindLogs       Kind = "logs"
	KindAttendance Kind = "attendance"
	KindContact    Kind = "contact"
	KindArrival    Kind = "arrival"
	KindRefresh    Kind = "refresh"
)

// Change is one mutation notice. Date is empty for global events
// (KindStudents, KindRefresh); StudentID is empty for whole-day events.
type Change struct {
	Kind      Kind
	Date      models.DateKey
	StudentID string
}

// Bus delivers changes synchronously to all subscribers, in subscription
// order. Resolution is pure and idempotent, so delivery inside the mutating
// call keeps derived state consistent without any queueing.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Change)
}

// New constructs an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all future changes.
func (b *Bus) Subscribe(fn func(Change)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Publish delivers the change to every subscriber.
func (b *Bus) Publish(ch Change) {
	b.mu.RLock()
	subs := make([]func(Change), len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(ch)
	}
}
