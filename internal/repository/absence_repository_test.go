package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakwon-ops/roster-api/internal/models"
)

func TestAbsenceMarkUpdatesBothViews(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewAbsenceRepository(client, nil, nil)

	repo.Mark("s1", "2025-03-08")

	date, ok := repo.DateOf("s1")
	require.True(t, ok)
	assert.Equal(t, models.DateKey("2025-03-08"), date)
	assert.Contains(t, repo.ByDate("2025-03-08"), "s1")

	var body absenceDocument
	require.Eventually(t, func() bool {
		return store.lastPost(absenceEndpoint, &body)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, models.DateKey("2025-03-08"), body.ByStudent["s1"])
	assert.Equal(t, []string{"s1"}, body.ByDate["2025-03-08"], "by_date regenerated from by_student")
}

func TestAbsenceMarkReplacesEarlierDate(t *testing.T) {
	_, client := newFakeStore(t)
	repo := NewAbsenceRepository(client, nil, nil)

	repo.Mark("s1", "2025-03-01")
	repo.Mark("s1", "2025-03-08")

	assert.Empty(t, repo.ByDate("2025-03-01"), "a student has one active absence date")
	assert.Contains(t, repo.ByDate("2025-03-08"), "s1")
}

func TestAbsenceRefreshRebuildsFromLegacyByDate(t *testing.T) {
	store, client := newFakeStore(t)
	store.set(absenceEndpoint, `{"by_date":{"2025-03-01":["s1"],"2025-03-08":["s1","s2"]}}`)

	repo := NewAbsenceRepository(client, nil, nil)
	require.NoError(t, repo.Refresh(context.Background()))

	date, ok := repo.DateOf("s1")
	require.True(t, ok)
	assert.Equal(t, models.DateKey("2025-03-08"), date, "latest date wins")
	assert.Contains(t, repo.ByDate("2025-03-08"), "s2")
}

func TestAbsenceClear(t *testing.T) {
	_, client := newFakeStore(t)
	repo := NewAbsenceRepository(client, nil, nil)

	repo.Mark("s1", "2025-03-08")
	repo.Clear("s1")

	_, ok := repo.DateOf("s1")
	assert.False(t, ok)
	assert.Empty(t, repo.ByDate("2025-03-08"))
}
