package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakwon-ops/roster-api/internal/models"
)

const testDate = models.DateKey("2025-03-08")

func TestSlotRepositoryNormalisesReadShapes(t *testing.T) {
	store, client := newFakeStore(t)
	store.set(slotsEndpoint, `{"2025-03-08":{"s1":1,"s2":[3,1,3],"s3":"bogus","s4":[]}}`)

	repo := NewSlotRepository(client, nil, nil)
	require.NoError(t, repo.Refresh(context.Background()))

	s1, ok := repo.Get(testDate, "s1")
	require.True(t, ok)
	assert.Equal(t, []int{1}, s1)

	s2, ok := repo.Get(testDate, "s2")
	require.True(t, ok)
	assert.Equal(t, []int{1, 3}, s2, "duplicates dropped, ascending")

	_, ok = repo.Get(testDate, "s3")
	assert.False(t, ok, "malformed entry treated as absent")
	_, ok = repo.Get(testDate, "s4")
	assert.False(t, ok)
}

func TestSlotRepositorySetDedupesAndPersists(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewSlotRepository(client, nil, nil)

	repo.Set(testDate, "s1", []int{2, 1, 2, 0})

	slots, ok := repo.Get(testDate, "s1")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, slots)

	var body map[models.DateKey]map[string][]int
	require.Eventually(t, func() bool {
		return store.lastPost(slotsEndpoint, &body)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{1, 2}, body[testDate]["s1"])
}

func TestSlotRepositoryClearRemovesEntry(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewSlotRepository(client, nil, nil)

	repo.Set(testDate, "s1", []int{1})
	repo.Clear(testDate, "s1")

	_, ok := repo.Get(testDate, "s1")
	assert.False(t, ok)

	var body map[models.DateKey]map[string][]int
	require.Eventually(t, func() bool {
		return store.postCount(slotsEndpoint) >= 2 && store.lastPost(slotsEndpoint, &body)
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, body[testDate])
}

func TestSlotRepositoryReadFailureFallsBackToEmpty(t *testing.T) {
	_, client := newFakeStore(t) // no document configured: GET returns 404
	repo := NewSlotRepository(client, nil, nil)

	assert.Error(t, repo.Refresh(context.Background()))
	_, ok := repo.Get(testDate, "s1")
	assert.False(t, ok)
}
