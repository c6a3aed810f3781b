package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakwon-ops/roster-api/internal/models"
)

func TestOrderSetAndFor(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewOrderRepository(client, nil, nil)

	repo.Set("2025-03-08", []string{"s2", "s1"})
	ids, ok := repo.For("2025-03-08")
	require.True(t, ok)
	assert.Equal(t, []string{"s2", "s1"}, ids)

	var body map[models.DateKey][]string
	require.Eventually(t, func() bool {
		return store.lastPost(orderEndpoint, &body)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"s2", "s1"}, body["2025-03-08"])
}

func TestOrderDeleteDropsStoredOrder(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewOrderRepository(client, nil, nil)

	repo.Set("2025-03-08", []string{"s1"})
	repo.Delete("2025-03-08")

	_, ok := repo.For("2025-03-08")
	assert.False(t, ok)

	var body map[models.DateKey][]string
	require.Eventually(t, func() bool {
		if !store.lastPost(orderEndpoint, &body) {
			return false
		}
		_, present := body["2025-03-08"]
		return !present
	}, time.Second, 10*time.Millisecond)
}

func TestOrderDeleteOfUnknownDateWritesNothing(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewOrderRepository(client, nil, nil)

	repo.Delete("2025-03-08")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, store.postCount(orderEndpoint))
}

func TestOrderRefresh(t *testing.T) {
	store, client := newFakeStore(t)
	store.set(orderEndpoint, `{"2025-03-08":["s3","s1","s2"]}`)

	repo := NewOrderRepository(client, nil, nil)
	require.NoError(t, repo.Refresh(context.Background()))

	ids, ok := repo.For("2025-03-08")
	require.True(t, ok)
	assert.Equal(t, []string{"s3", "s1", "s2"}, ids)
}
