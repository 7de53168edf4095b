package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"debug-challenge/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the question bank from a backing store (seed file, Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the question bank with TTL to avoid repeated loader hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	bank      *QuestionBank
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, round, questionNumber int) (domain.Question, error) {
	bank, err := r.load(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	return bank.ByRound(round, questionNumber)
}

func (r *QuestionRepository) GetQuestionByID(ctx context.Context, id int64) (domain.Question, error) {
	bank, err := r.load(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	return bank.ByID(id)
}

func (r *QuestionRepository) load(ctx context.Context) (*QuestionBank, error) {
	now := r.clock()

	r.mu.RLock()
	if r.bank != nil && (r.ttl <= 0 || r.expiresAt.After(now)) {
		bank := r.bank
		r.mu.RUnlock()
		return bank, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("bank", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.bank != nil && (r.ttl <= 0 || r.expiresAt.After(now)) {
			bank := r.bank
			r.mu.RUnlock()
			return bank, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		bank := NewQuestionBank(questions)

		r.mu.Lock()
		r.bank = bank
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*QuestionBank), nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

type roundKey struct {
	round  int
	number int
}

// QuestionBank indexes an immutable set of questions by id and by (round, question number).
type QuestionBank struct {
	byID    map[int64]domain.Question
	byRound map[roundKey]int64
}

func NewQuestionBank(questions []domain.Question) *QuestionBank {
	bank := &QuestionBank{
		byID:    make(map[int64]domain.Question, len(questions)),
		byRound: make(map[roundKey]int64, len(questions)),
	}
	for _, q := range questions {
		bank.byID[q.ID] = q
		bank.byRound[roundKey{round: q.Round, number: q.QuestionNumber}] = q.ID
	}
	return bank
}

func (b *QuestionBank) ByID(id int64) (domain.Question, error) {
	q, ok := b.byID[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (b *QuestionBank) ByRound(round, questionNumber int) (domain.Question, error) {
	id, ok := b.byRound[roundKey{round: round, number: questionNumber}]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return b.byID[id], nil
}

// StaticQuestionLoader is a simple loader backed by a fixed slice (useful for tests/demos).
// Questions without an id are numbered in order.
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	numbered := make([]domain.Question, len(questions))
	var nextID int64
	for _, q := range questions {
		if q.ID > nextID {
			nextID = q.ID
		}
	}
	for i, q := range questions {
		if q.ID == 0 {
			nextID++
			q.ID = nextID
		}
		numbered[i] = q
	}
	return &StaticQuestionLoader{questions: numbered}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(l.questions))
	copy(out, l.questions)
	return out, nil
}
