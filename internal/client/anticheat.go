package client

import (
	"context"

	"github.com/rs/zerolog"
)

// Visibility is whether the player is looking at the challenge.
type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

func (v Visibility) String() string {
	if v == Hidden {
		return "hidden"
	}
	return "visible"
}

// Disqualifier reports the current player for leaving the challenge.
type Disqualifier interface {
	Disqualify(ctx context.Context) error
}

// WatchVisibility sends one disqualify request for every transition to Hidden. Failures are
// logged and not retried. onDisqualified, if set, runs after each successful request.
// It returns when ctx is done or states is closed.
func WatchVisibility(ctx context.Context, states <-chan Visibility, d Disqualifier, logger zerolog.Logger, onDisqualified func()) {
	last := Visible
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			if state == Hidden && last != Hidden {
				if err := d.Disqualify(ctx); err != nil {
					logger.Error().Err(err).Msg("failed to disqualify")
				} else {
					logger.Warn().Msg("disqualified for leaving the challenge")
					if onDisqualified != nil {
						onDisqualified()
					}
				}
			}
			last = state
		}
	}
}
