package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakwon-ops/roster-api/internal/models"
	"github.com/hakwon-ops/roster-api/pkg/debounce"
)

func TestFlagSetAndUnset(t *testing.T) {
	_, client := newFakeStore(t)
	timers := &manualTimers{}
	repo := NewFlagRepository(client, AttendanceEndpoint, nil, nil, debounce.Config{Timers: timers.factory})

	repo.Set("2025-03-08", "s1", true)
	assert.True(t, repo.IsSet("2025-03-08", "s1"))

	repo.Set("2025-03-08", "s1", false)
	assert.False(t, repo.IsSet("2025-03-08", "s1"))
}

func TestFlagTogglesCoalescePerDate(t *testing.T) {
	store, client := newFakeStore(t)
	timers := &manualTimers{}
	repo := NewFlagRepository(client, ContactEndpoint, nil, nil, debounce.Config{Timers: timers.factory})

	repo.Set("2025-03-08", "s1", true)
	repo.Set("2025-03-08", "s2", true)
	repo.Set("2025-03-08", "s1", false)
	assert.Equal(t, 0, store.postCount(ContactEndpoint))

	timers.fireAll()

	var body map[models.DateKey]map[string]int
	require.Eventually(t, func() bool {
		return store.lastPost(ContactEndpoint, &body)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, store.postCount(ContactEndpoint))
	assert.Equal(t, map[string]int{"s2": 1}, body["2025-03-08"], "final state of the burst wins")
}

func TestFlagRefreshLoadsDocument(t *testing.T) {
	store, client := newFakeStore(t)
	store.set(AttendanceEndpoint, `{"2025-03-08":{"s1":1}}`)

	repo := NewFlagRepository(client, AttendanceEndpoint, nil, nil, debounce.Config{})
	require.NoError(t, repo.Refresh(context.Background()))

	assert.True(t, repo.IsSet("2025-03-08", "s1"))
	assert.False(t, repo.IsSet("2025-03-08", "s2"))
	assert.Equal(t, map[string]bool{"s1": true}, repo.For("2025-03-08"))
}
