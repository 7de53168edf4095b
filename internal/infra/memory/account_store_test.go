package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"debug-challenge/internal/domain"
)

func TestAccountStoreCreateAssignsIDs(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()

	alice, err := store.Create(ctx, domain.Account{Username: "alice", CurrentRound: 1})
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := store.Create(ctx, domain.Account{Username: "bob", CurrentRound: 1})
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if alice.ID != 1 || bob.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", alice.ID, bob.ID)
	}

	if _, err := store.Create(ctx, domain.Account{Username: "alice"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	found, err := store.GetByUsername(ctx, "bob")
	if err != nil || found.ID != bob.ID {
		t.Fatalf("lookup bob: %+v %v", found, err)
	}
	if _, err := store.Get(ctx, 42); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountStoreAdvanceIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()
	account, _ := store.Create(ctx, domain.Account{Username: "alice", CurrentRound: 1})
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	updated, err := store.Advance(ctx, account.ID, 1, 10, at)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if updated.Score != 10 || updated.CurrentRound != 2 {
		t.Fatalf("expected score 10 round 2, got %+v", updated)
	}
	if updated.LastSubmissionTime == nil || !updated.LastSubmissionTime.Equal(at) {
		t.Fatalf("expected last submission time %v, got %v", at, updated.LastSubmissionTime)
	}

	if _, err := store.Advance(ctx, account.ID, 1, 10, at); !errors.Is(err, domain.ErrStaleRound) {
		t.Fatalf("expected ErrStaleRound, got %v", err)
	}

	if err := store.Disqualify(ctx, account.ID); err != nil {
		t.Fatalf("disqualify: %v", err)
	}
	if _, err := store.Advance(ctx, account.ID, 2, 10, at); !errors.Is(err, domain.ErrDisqualified) {
		t.Fatalf("expected ErrDisqualified, got %v", err)
	}

	final, _ := store.Get(ctx, account.ID)
	if final.Score != 10 || final.CurrentRound != 2 || !final.IsDisqualified {
		t.Fatalf("unexpected final state %+v", final)
	}
}

func TestAccountStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()
	now := time.Now()
	account, _ := store.Create(ctx, domain.Account{Username: "alice", LastSubmissionTime: &now})

	got, _ := store.Get(ctx, account.ID)
	got.Score = 1000
	*got.LastSubmissionTime = time.Time{}

	again, _ := store.Get(ctx, account.ID)
	if again.Score != 0 || again.LastSubmissionTime.IsZero() {
		t.Fatalf("store leaked internal state: %+v", again)
	}
}

func TestSubmissionLogAppendOnly(t *testing.T) {
	ctx := context.Background()
	log := NewSubmissionLog()

	first, _ := log.Append(ctx, domain.Submission{AccountID: 1, QuestionID: 1, Answer: "a"})
	second, _ := log.Append(ctx, domain.Submission{AccountID: 2, QuestionID: 1, Answer: "b"})
	third, _ := log.Append(ctx, domain.Submission{AccountID: 1, QuestionID: 2, Answer: "c", IsCorrect: true})
	if first.ID != 1 || second.ID != 2 || third.ID != 3 {
		t.Fatalf("expected sequential ids, got %d %d %d", first.ID, second.ID, third.ID)
	}

	mine, _ := log.ListByAccount(ctx, 1)
	if len(mine) != 2 || mine[0].Answer != "a" || mine[1].Answer != "c" {
		t.Fatalf("unexpected history %+v", mine)
	}
	if log.Len() != 3 {
		t.Fatalf("expected 3 submissions, got %d", log.Len())
	}
}
