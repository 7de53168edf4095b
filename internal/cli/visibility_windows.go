//go:build windows

package cli

import (
	"context"

	"debug-challenge/internal/client"
)

// visibilitySignals has no job-control signal to watch on Windows; the stream only closes.
func visibilitySignals(ctx context.Context) <-chan client.Visibility {
	out := make(chan client.Visibility)
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}
