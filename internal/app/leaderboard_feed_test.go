package app

import (
	"testing"

	"debug-challenge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedDeliversInitialThenUpdates(t *testing.T) {
	feed := NewLeaderboardFeed()
	initial := []domain.Account{{ID: 1, Score: 0}}

	ch, cancel := feed.Subscribe(initial)
	assert.Equal(t, 1, feed.Subscribers())
	assert.Equal(t, initial, <-ch)

	feed.Publish([]domain.Account{{ID: 1, Score: 10}})
	got := <-ch
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Score)

	cancel()
	cancel()
	assert.Equal(t, 0, feed.Subscribers())
	_, open := <-ch
	assert.False(t, open)
}

func TestFeedDropsStaleSnapshotsForSlowReaders(t *testing.T) {
	feed := NewLeaderboardFeed()
	ch, cancel := feed.Subscribe(nil)
	defer cancel()

	for score := 1; score <= 20; score++ {
		feed.Publish([]domain.Account{{ID: 1, Score: score}})
	}

	var last []domain.Account
	for len(ch) > 0 {
		last = <-ch
	}
	require.Len(t, last, 1)
	assert.Equal(t, 20, last[0].Score)
}
