package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hakwon-ops/roster-api/internal/models"
)

func TestPublishReachesAllSubscribersInOrder(t *testing.T) {
	b := New()
	var seen []string
	b.Subscribe(func(ch Change) { seen = append(seen, "first:"+string(ch.Kind)) })
	b.Subscribe(func(ch Change) { seen = append(seen, "second:"+string(ch.Kind)) })

	b.Publish(Change{Kind: KindSlots, Date: models.DateKey("2025-03-05"), StudentID: "s1"})

	assert.Equal(t, []string{"first:slots", "second:slots"}, seen)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() {
		b.Publish(Change{Kind: KindRefresh})
	})
}
