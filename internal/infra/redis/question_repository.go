package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"debug-challenge/internal/domain"
	"debug-challenge/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	questionsKey = "challenge:questions"
	roundsKey    = "challenge:questions:rounds"
)

var errCacheMiss = errors.New("question cache miss")

// QuestionRepository caches the question bank in Redis so every instance serves the same set,
// and falls back to a loader when the cache is cold.
// Questions are stored as: HSET challenge:questions        {questionID} {json}
// The round index as:      HSET challenge:questions:rounds {round}:{number} {questionID}
type QuestionRepository struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, round, questionNumber int) (domain.Question, error) {
	id, err := r.client.HGet(ctx, roundsKey, roundField(round, questionNumber)).Result()
	if err == nil {
		q, err := r.cached(ctx, id)
		if !errors.Is(err, errCacheMiss) {
			return q, err
		}
	} else if errors.Is(err, redis.Nil) && r.warm(ctx) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}

	bank, err := r.fill(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	return bank.ByRound(round, questionNumber)
}

func (r *QuestionRepository) GetQuestionByID(ctx context.Context, id int64) (domain.Question, error) {
	q, err := r.cached(ctx, strconv.FormatInt(id, 10))
	if !errors.Is(err, errCacheMiss) {
		return q, err
	}

	bank, err := r.fill(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	return bank.ByID(id)
}

// Invalidate drops the cached bank so the next lookup reloads it.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, questionsKey, roundsKey).Err()
}

// cached reads one question from Redis. A miss on a warm cache means the question does not exist.
func (r *QuestionRepository) cached(ctx context.Context, field string) (domain.Question, error) {
	raw, err := r.client.HGet(ctx, questionsKey, field).Result()
	if errors.Is(err, redis.Nil) {
		if r.warm(ctx) {
			return domain.Question{}, domain.ErrQuestionNotFound
		}
		return domain.Question{}, errCacheMiss
	}
	if err != nil {
		return domain.Question{}, errCacheMiss
	}

	var q domain.Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return domain.Question{}, errCacheMiss
	}
	return q, nil
}

func (r *QuestionRepository) warm(ctx context.Context) bool {
	n, err := r.client.Exists(ctx, questionsKey).Result()
	return err == nil && n > 0
}

func (r *QuestionRepository) fill(ctx context.Context) (*memory.QuestionBank, error) {
	result, err, _ := r.sf.Do("bank", func() (interface{}, error) {
		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, questionsKey, roundsKey)
		for _, q := range questions {
			payload, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			id := strconv.FormatInt(q.ID, 10)
			pipe.HSet(ctx, questionsKey, id, payload)
			pipe.HSet(ctx, roundsKey, roundField(q.Round, q.QuestionNumber), id)
		}
		if ttl > 0 {
			pipe.Expire(ctx, questionsKey, ttl)
			pipe.Expire(ctx, roundsKey, ttl)
		}
		// a failed write only costs another load
		_, _ = pipe.Exec(ctx)

		return memory.NewQuestionBank(questions), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*memory.QuestionBank), nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func roundField(round, questionNumber int) string {
	return strconv.Itoa(round) + ":" + strconv.Itoa(questionNumber)
}
