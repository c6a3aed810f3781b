package debounce

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Timer is the subset of *time.Timer the writer needs; injectable for tests.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn to run once after d.
type TimerFactory func(d time.Duration, fn func()) Timer

func stdTimer(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Config tunes a Writer.
type Config struct {
	Window time.Duration
	Logger *zap.Logger
	Timers TimerFactory
}

// Writer coalesces rapid triggers per key into a single flush call after a
// quiet window. The flush callback is expected to read the caller's current
// local state for the key, so only the final state of a burst is persisted.
type Writer[K comparable] struct {
	window time.Duration
	flush  func(K)
	logger *zap.Logger
	timers TimerFactory

	mu      sync.Mutex
	pending map[K]Timer
}

// NewWriter builds a debounced writer around the provided flush function.
func NewWriter[K comparable](flush func(K), cfg Config) *Writer[K] {
	if cfg.Window <= 0 {
		cfg.Window = 250 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Timers == nil {
		cfg.Timers = stdTimer
	}
	return &Writer[K]{
		window:  cfg.Window,
		flush:   flush,
		logger:  cfg.Logger,
		timers:  cfg.Timers,
		pending: make(map[K]Timer),
	}
}

// Trigger schedules a flush for key, replacing any flush already pending for
// the same key.
func (w *Writer[K]) Trigger(key K) {
	w.mu.Lock()
	if t, ok := w.pending[key]; ok {
		t.Stop()
	}
	w.pending[key] = w.timers(w.window, func() { w.fire(key) })
	w.mu.Unlock()
}

func (w *Writer[K]) fire(key K) {
	w.mu.Lock()
	delete(w.pending, key)
	w.mu.Unlock()
	w.flush(key)
}

// FlushAll cancels all pending timers and flushes their keys immediately.
// Used on shutdown so coalesced writes are not lost.
func (w *Writer[K]) FlushAll() {
	w.mu.Lock()
	keys := make([]K, 0, len(w.pending))
	for key, t := range w.pending {
		t.Stop()
		keys = append(keys, key)
	}
	w.pending = make(map[K]Timer)
	w.mu.Unlock()

	for _, key := range keys {
		w.flush(key)
	}
}

// Pending reports how many keys currently await a flush.
func (w *Writer[K]) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
