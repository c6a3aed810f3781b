package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakwon-ops/roster-api/internal/models"
)

func TestLogApplyMergesFields(t *testing.T) {
	store, client := newFakeStore(t)
	store.set(logsEndpoint, `{"2025-03-08":{"s1":{"notes":"chapter 3","hwAssigned":true}}}`)

	repo := NewLogRepository(client, nil, nil)
	require.NoError(t, repo.Refresh(context.Background()))

	repo.Apply(models.LogPatch{
		Date:  "2025-03-08",
		SID:   "s1",
		Entry: map[string]interface{}{"hwChecked": true, "leaveTime": "20:10"},
	})

	entry, ok := repo.Get("2025-03-08", "s1")
	require.True(t, ok)
	assert.True(t, entry.HwAssigned, "untouched field survives the merge")
	assert.True(t, entry.HwChecked)
	assert.Equal(t, "20:10", entry.LeaveTime)
	assert.Equal(t, "chapter 3", entry.Notes)

	var sent models.LogPatch
	require.Eventually(t, func() bool {
		return store.lastPost(logPatchEndpoint, &sent)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "s1", sent.SID, "only the patch travels, never the whole day map")
}

func TestLogApplyClearsListedFields(t *testing.T) {
	_, client := newFakeStore(t)
	repo := NewLogRepository(client, nil, nil)

	repo.Apply(models.LogPatch{
		Date:  "2025-03-08",
		SID:   "s1",
		Entry: map[string]interface{}{"done": true, "leaveTime": "20:00"},
	})
	repo.Apply(models.LogPatch{
		Date:  "2025-03-08",
		SID:   "s1",
		Entry: map[string]interface{}{},
		Clear: []string{"leaveTime"},
	})

	entry, ok := repo.Get("2025-03-08", "s1")
	require.True(t, ok)
	assert.True(t, entry.Done)
	assert.Empty(t, entry.LeaveTime)
}

func TestLogApplyCreatesMissingEntry(t *testing.T) {
	_, client := newFakeStore(t)
	repo := NewLogRepository(client, nil, nil)

	repo.Apply(models.LogPatch{
		Date:  "2025-03-08",
		SID:   "s9",
		Entry: map[string]interface{}{"hwAssigned": true},
	})

	entry, ok := repo.Get("2025-03-08", "s9")
	require.True(t, ok)
	assert.True(t, entry.HwAssigned)
}
