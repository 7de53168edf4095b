//go:build !windows

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"debug-challenge/internal/client"
)

// visibilitySignals reports Hidden on SIGTSTP and Visible on SIGCONT. Catching SIGTSTP
// keeps the process running so the disqualification can still be sent.
func visibilitySignals(ctx context.Context) <-chan client.Visibility {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTSTP, syscall.SIGCONT)

	out := make(chan client.Visibility)
	go func() {
		defer close(out)
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				state := client.Visible
				if sig == syscall.SIGTSTP {
					state = client.Hidden
				}
				select {
				case out <- state:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
