package client

import (
	"context"
	"fmt"
	"time"
)

// Countdown is the client-side round timer. It never calls the server.
type Countdown struct {
	// Interval between ticks; one second when zero.
	Interval time.Duration
}

// Run counts down from seconds, calling onTick with the remaining seconds after every tick.
// It returns true when the countdown reaches zero and false when ctx is cancelled first.
// A non-positive start expires immediately.
func (c Countdown) Run(ctx context.Context, seconds int, onTick func(remaining int)) bool {
	if seconds <= 0 {
		return true
	}
	interval := c.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	remaining := seconds
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if ctx.Err() != nil {
				return false
			}
			remaining--
			if onTick != nil {
				onTick(remaining)
			}
			if remaining <= 0 {
				return true
			}
		}
	}
}

// FormatRemaining renders seconds as MM:SS. Negative values render as 00:00.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
