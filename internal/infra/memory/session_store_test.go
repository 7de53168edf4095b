package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"debug-challenge/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Hour)

	id, err := store.Create(ctx, 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	accountID, err := store.Lookup(ctx, id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if accountID != 7 {
		t.Fatalf("expected account 7, got %d", accountID)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Lookup(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }

	id, _ := store.Create(ctx, 1)
	now = now.Add(time.Minute)
	if _, err := store.Lookup(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}

	_, _ = store.Create(ctx, 2)
	if len(store.sessions) != 1 {
		t.Fatalf("expected expired session swept, have %d", len(store.sessions))
	}
}
