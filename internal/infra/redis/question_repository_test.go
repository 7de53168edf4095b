package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"debug-challenge/internal/domain"
	"debug-challenge/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(client, loader, time.Minute)

	q, err := repo.GetQuestion(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if q.ID != 1 || q.Answer != "Missing semicolon on line 5" {
		t.Fatalf("unexpected question %+v", q)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.count())
	}
	if !mr.Exists(questionsKey) || !mr.Exists(roundsKey) {
		t.Fatalf("expected question hashes to be written")
	}
	if ttl := mr.TTL(questionsKey); ttl < time.Minute {
		t.Fatalf("expected ttl of at least a minute, got %s", ttl)
	}

	// Second lookups should hit cache, loader not incremented.
	byID, err := repo.GetQuestionByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Round != 2 || len(byID.TestCases) != 1 {
		t.Fatalf("unexpected cached question %+v", byID)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.count())
	}
}

func TestQuestionRepositoryMissOnWarmCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetQuestionByID(context.Background(), 99); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found on cold cache, got %v", err)
	}
	if _, err := repo.GetQuestion(context.Background(), 7, 1); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found on warm cache, got %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected warm cache to answer misses, loader calls=%d", loader.count())
	}
}

func TestQuestionRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetQuestion(context.Background(), 1, 1); err != nil {
		t.Fatalf("get question: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := repo.GetQuestion(context.Background(), 1, 1); err != nil {
		t.Fatalf("get question after expiry: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.count())
	}

	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(questionsKey) {
		t.Fatalf("expected cache to be dropped")
	}
}

type countingLoader struct {
	memory.QuestionLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuestionLoader.LoadQuestions(ctx)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:             1,
			Round:          1,
			QuestionNumber: 1,
			Content:        "Find the bug",
			Answer:         "Missing semicolon on line 5",
			TimeLimit:      300,
		},
		{
			ID:             2,
			Round:          2,
			QuestionNumber: 1,
			Content:        "Why is the sum short?",
			Answer:         "off by one",
			TimeLimit:      240,
			TestCases:      []domain.TestCase{{Input: "[1,2,3]", Output: "6"}},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
