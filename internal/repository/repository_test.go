package repository

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hakwon-ops/roster-api/internal/kv"
	"github.com/hakwon-ops/roster-api/pkg/config"
	"github.com/hakwon-ops/roster-api/pkg/debounce"
)

// fakeStore serves canned GET documents and records POST bodies per endpoint.
type fakeStore struct {
	t *testing.T

	mu    sync.Mutex
	docs  map[string]string
	posts map[string][]string
}

func newFakeStore(t *testing.T) (*fakeStore, *kv.Client) {
	t.Helper()
	fs := &fakeStore{
		t:     t,
		docs:  make(map[string]string),
		posts: make(map[string][]string),
	}
	srv := httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(srv.Close)
	return fs, kv.NewClient(config.StoreConfig{BaseURL: srv.URL}, nil)
}

func (fs *fakeStore) handle(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Path[1:]
	fs.mu.Lock()
	defer fs.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		doc, ok := fs.docs[endpoint]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, doc) //nolint:errcheck
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		fs.posts[endpoint] = append(fs.posts[endpoint], string(body))
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fs *fakeStore) set(endpoint, doc string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.docs[endpoint] = doc
}

func (fs *fakeStore) postCount(endpoint string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.posts[endpoint])
}

// lastPost decodes the most recent POST body for endpoint into dest.
func (fs *fakeStore) lastPost(endpoint string, dest interface{}) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	bodies := fs.posts[endpoint]
	if len(bodies) == 0 {
		return false
	}
	if err := json.Unmarshal([]byte(bodies[len(bodies)-1]), dest); err != nil {
		fs.t.Fatalf("decode last post for %s: %v", endpoint, err)
	}
	return true
}

// manualTimers is a debounce timer factory fired explicitly by tests.
type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualTimers) factory(_ time.Duration, fn func()) debounce.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// fireAll runs every timer that has not been cancelled.
func (m *manualTimers) fireAll() {
	m.mu.Lock()
	timers := make([]*manualTimer, len(m.timers))
	copy(timers, m.timers)
	m.timers = m.timers[:0]
	m.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.fn()
		}
	}
}
