package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakwon-ops/roster-api/internal/models"
)

func TestExtraAddIsIdempotent(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewExtraRepository(client, nil, nil)

	assert.True(t, repo.Add("2025-03-08", "s1"))
	assert.False(t, repo.Add("2025-03-08", "s1"))
	assert.Equal(t, []string{"s1"}, repo.For("2025-03-08"))

	var body map[models.DateKey][]string
	require.Eventually(t, func() bool {
		return store.lastPost(extraEndpoint, &body)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"s1"}, body["2025-03-08"])
}

func TestExtraRemove(t *testing.T) {
	_, client := newFakeStore(t)
	repo := NewExtraRepository(client, nil, nil)

	repo.Add("2025-03-08", "s1")
	repo.Add("2025-03-08", "s2")
	assert.True(t, repo.Remove("2025-03-08", "s1"))
	assert.False(t, repo.Remove("2025-03-08", "s1"))
	assert.Equal(t, []string{"s2"}, repo.For("2025-03-08"))
}

func TestExtraRefresh(t *testing.T) {
	store, client := newFakeStore(t)
	store.set(extraEndpoint, `{"2025-03-08":["s1","s2"]}`)

	repo := NewExtraRepository(client, nil, nil)
	require.NoError(t, repo.Refresh(context.Background()))
	assert.Equal(t, []string{"s1", "s2"}, repo.For("2025-03-08"))
}

func TestStudentRepositoryKeepsCacheOnReadFailure(t *testing.T) {
	store, client := newFakeStore(t)
	store.set(studentsEndpoint, `[{"id":"s1","name":"민준"}]`)

	repo := NewStudentRepository(client, nil, nil)
	require.NoError(t, repo.Refresh(context.Background()))
	require.Len(t, repo.All(), 1)

	store.set(studentsEndpoint, `not-json`)
	assert.Error(t, repo.Refresh(context.Background()))
	assert.Len(t, repo.All(), 1, "stale roster beats no roster")
}
