package app

import (
	"sync"

	"debug-challenge/internal/domain"
)

// LeaderboardFeed fans leaderboard snapshots out to live subscribers.
type LeaderboardFeed struct {
	mu          sync.Mutex
	subscribers map[chan []domain.Account]struct{}
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{
		subscribers: make(map[chan []domain.Account]struct{}),
	}
}

// Subscribe registers a subscriber and queues the initial snapshot for it.
func (f *LeaderboardFeed) Subscribe(initial []domain.Account) (<-chan []domain.Account, func()) {
	ch := make(chan []domain.Account, 8)
	ch <- initial

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish sends a snapshot to every subscriber without blocking on slow readers.
func (f *LeaderboardFeed) Publish(board []domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- board:
		default:
			// drop the oldest queued snapshot; only the latest matters
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}

// Subscribers reports how many subscribers are attached.
func (f *LeaderboardFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
