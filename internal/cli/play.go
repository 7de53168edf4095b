package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"debug-challenge/internal/client"
	"debug-challenge/internal/domain"
	"debug-challenge/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// NewPlayCmd runs the challenge from the terminal. Suspending the session (Ctrl+Z) counts as
// leaving the page and disqualifies the player.
func NewPlayCmd() *cobra.Command {
	var (
		serverURL string
		username  string
		register  bool
		logLevel  string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the challenge against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := logging.New(logLevel, "console")
			api, err := client.New(serverURL)
			if err != nil {
				return err
			}

			reader := bufio.NewReader(os.Stdin)
			out := cmd.OutOrStdout()
			if username == "" {
				if username, err = promptLine(reader, out, "Username: "); err != nil {
					return err
				}
			}
			password, err := promptPassword(reader, out)
			if err != nil {
				return err
			}

			var account domain.Account
			if register {
				account, err = api.Register(ctx, username, password)
			} else {
				account, err = api.Login(ctx, username, password)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Welcome, %s. You are on round %d with %d points.\n", account.Username, account.CurrentRound, account.Score)
			fmt.Fprintln(out, "Leaving the challenge (Ctrl+Z) disqualifies you.")

			disqualified := make(chan struct{})
			var once atomic.Bool
			go client.WatchVisibility(ctx, visibilitySignals(ctx), api, logger, func() {
				if once.CompareAndSwap(false, true) {
					close(disqualified)
				}
			})

			p := &player{api: api, lines: readLines(ctx, reader), out: out}
			return p.run(ctx, disqualified)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "challenge server base URL")
	cmd.Flags().StringVar(&username, "username", "", "account username (prompted when empty)")
	cmd.Flags().BoolVar(&register, "register", false, "create the account before playing")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "client log level")
	return cmd
}

type roundOutcome int

const (
	roundQuit roundOutcome = iota
	roundCorrect
	roundExpired
	roundDisqualified
)

// player shows each question, runs its countdown, takes answers and ends on the leaderboard.
type player struct {
	api       *client.Client
	lines     <-chan string
	out       io.Writer
	countdown client.Countdown
}

func (p *player) run(ctx context.Context, disqualified <-chan struct{}) error {
	for {
		question, err := p.api.CurrentQuestion(ctx)
		if hasStatus(err, http.StatusNotFound) {
			fmt.Fprintln(p.out, "No more questions available!")
			return p.showLeaderboard(ctx)
		}
		if err != nil {
			return err
		}
		p.printQuestion(question)

		outcome, err := p.playRound(ctx, question, disqualified)
		if err != nil {
			return err
		}
		switch outcome {
		case roundCorrect:
			fmt.Fprintln(p.out, "Correct! Moving to next round...")
			if err := p.showLeaderboard(ctx); err != nil {
				return err
			}
		case roundExpired:
			fmt.Fprintln(p.out, "Time's up! Moving to leaderboard...")
			return p.showLeaderboard(ctx)
		case roundDisqualified:
			fmt.Fprintln(p.out, "You have been disqualified for leaving the page.")
			return p.showLeaderboard(context.WithoutCancel(ctx))
		default:
			return nil
		}
	}
}

func (p *player) playRound(ctx context.Context, question domain.PublicQuestion, disqualified <-chan struct{}) (roundOutcome, error) {
	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var remaining atomic.Int64
	remaining.Store(int64(question.TimeLimit))
	expired := make(chan struct{})
	if question.TimeLimit > 0 {
		go func() {
			if p.countdown.Run(roundCtx, question.TimeLimit, func(r int) { remaining.Store(int64(r)) }) {
				close(expired)
			}
		}()
	}

	for {
		if question.TimeLimit > 0 {
			fmt.Fprintf(p.out, "[%s] answer> ", client.FormatRemaining(int(remaining.Load())))
		} else {
			fmt.Fprint(p.out, "answer> ")
		}

		select {
		case <-ctx.Done():
			return roundQuit, nil
		case <-disqualified:
			return roundDisqualified, nil
		case <-expired:
			fmt.Fprintln(p.out)
			return roundExpired, nil
		case line, ok := <-p.lines:
			if !ok {
				return roundQuit, nil
			}
			answer := strings.TrimSpace(line)
			if answer == "" {
				continue
			}
			correct, err := p.api.Submit(ctx, question.ID, answer)
			if hasStatus(err, http.StatusForbidden) {
				var apiErr *client.APIError
				errors.As(err, &apiErr)
				if strings.Contains(strings.ToLower(apiErr.Message), "disqualified") {
					return roundDisqualified, nil
				}
				return roundExpired, nil
			}
			if err != nil {
				fmt.Fprintf(p.out, "Failed to submit answer: %v\n", err)
				continue
			}
			if correct {
				return roundCorrect, nil
			}
			fmt.Fprintln(p.out, "Incorrect. Try again.")
		}
	}
}

func (p *player) printQuestion(q domain.PublicQuestion) {
	fmt.Fprintf(p.out, "\nRound %d - Question %d", q.Round, q.QuestionNumber)
	if q.TimeLimit > 0 {
		fmt.Fprintf(p.out, " (%s)", client.FormatRemaining(q.TimeLimit))
	}
	fmt.Fprintf(p.out, "\n\n%s\n", strings.TrimRight(q.Content, "\n"))
	if q.ImageURL != nil {
		fmt.Fprintf(p.out, "Image: %s\n", *q.ImageURL)
	}
	for i, tc := range q.TestCases {
		fmt.Fprintf(p.out, "Test case %d: %s -> %s\n", i+1, tc.Input, tc.Output)
	}
	fmt.Fprintln(p.out)
}

func (p *player) showLeaderboard(ctx context.Context) error {
	board, err := p.api.Leaderboard(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, "\nLeaderboard")
	if len(board) == 0 {
		fmt.Fprintln(p.out, "  (no players yet)")
	}
	for i, a := range board {
		fmt.Fprintf(p.out, "%3d. %-20s %5d pts  round %d\n", i+1, a.Username, a.Score, a.CurrentRound)
	}
	return nil
}

func hasStatus(err error, code int) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

func promptLine(reader *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo on a terminal and falls back to a plain line otherwise.
func promptPassword(reader *bufio.Reader, w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(reader, w, "Password: ")
	}
	fmt.Fprint(w, "Password: ")
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// readLines feeds stdin lines to the round loop so a prompt can be abandoned on expiry.
func readLines(ctx context.Context, reader *bufio.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}
