package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"debug-challenge/internal/domain"
	"github.com/rs/zerolog"
)

// AccountRepository abstracts how accounts are stored (in-memory, Postgres, etc).
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	// Advance adds points and moves the account to the next round, but only while it is
	// still on fromRound and not disqualified. It returns ErrStaleRound or ErrDisqualified otherwise.
	Advance(ctx context.Context, id int64, fromRound, points int, at time.Time) (domain.Account, error)
	Disqualify(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Account, error)
}

// QuestionRepository loads question content (from cache/backing store).
type QuestionRepository interface {
	GetQuestion(ctx context.Context, round, questionNumber int) (domain.Question, error)
	GetQuestionByID(ctx context.Context, id int64) (domain.Question, error)
}

// SubmissionLog is the append-only record of answer attempts.
type SubmissionLog interface {
	Append(ctx context.Context, submission domain.Submission) (domain.Submission, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Submission, error)
}

// Options tune the round engine.
type Options struct {
	// PointsPerCorrect defaults to domain.PointsPerCorrectAnswer when zero.
	PointsPerCorrect int
	// EnforceTimeLimit rejects answers once the current round's time limit has elapsed.
	EnforceTimeLimit bool
	// StrictQuestionLookup fails submissions for unknown questions with ErrQuestionNotFound
	// instead of scoring them as incorrect. The attempt is logged either way.
	StrictQuestionLookup bool
	// Clock is test-only for deterministic timestamps.
	Clock func() time.Time
}

// ChallengeService is the round engine: the only mutator of score, round and disqualification.
type ChallengeService struct {
	accounts    AccountRepository
	questions   QuestionRepository
	submissions SubmissionLog
	feed        *LeaderboardFeed
	opts        Options
	now         func() time.Time
	logger      zerolog.Logger
	locks       accountLocks
}

func NewChallengeService(
	accounts AccountRepository,
	questions QuestionRepository,
	submissions SubmissionLog,
	feed *LeaderboardFeed,
	opts Options,
	logger zerolog.Logger,
) *ChallengeService {
	if opts.PointsPerCorrect <= 0 {
		opts.PointsPerCorrect = domain.PointsPerCorrectAnswer
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	if feed == nil {
		feed = NewLeaderboardFeed()
	}
	return &ChallengeService{
		accounts:    accounts,
		questions:   questions,
		submissions: submissions,
		feed:        feed,
		opts:        opts,
		now:         now,
		logger:      logger.With().Str("component", "round_engine").Logger(),
		locks:       accountLocks{locks: make(map[int64]*sync.Mutex)},
	}
}

// CurrentQuestion returns the first question of the account's current round without its answer.
func (s *ChallengeService) CurrentQuestion(ctx context.Context, accountID int64) (domain.PublicQuestion, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return domain.PublicQuestion{}, err
	}
	question, err := s.questions.GetQuestion(ctx, account.CurrentRound, 1)
	if err != nil {
		return domain.PublicQuestion{}, err
	}
	return question.Public(), nil
}

// SubmitAnswer scores an answer, appends it to the submission log and advances the account on success.
func (s *ChallengeService) SubmitAnswer(ctx context.Context, accountID int64, submission domain.AnswerSubmission) (domain.AnswerResult, error) {
	unlock := s.locks.lock(accountID)
	defer unlock()

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if account.IsDisqualified {
		return domain.AnswerResult{}, domain.ErrDisqualified
	}

	now := s.now()
	if s.opts.EnforceTimeLimit {
		if err := s.checkDeadline(ctx, account, now); err != nil {
			return domain.AnswerResult{}, err
		}
	}

	question, found, err := s.lookupQuestion(ctx, account, submission.QuestionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	correct := found && answersMatch(submission.Answer, question.Answer)

	if _, err := s.submissions.Append(ctx, domain.Submission{
		AccountID:   account.ID,
		QuestionID:  submission.QuestionID,
		Answer:      submission.Answer,
		IsCorrect:   correct,
		SubmittedAt: now,
	}); err != nil {
		return domain.AnswerResult{}, fmt.Errorf("append submission: %w", err)
	}

	if !found {
		s.logger.Debug().
			Int64("account_id", account.ID).
			Int64("question_id", submission.QuestionID).
			Int("round", account.CurrentRound).
			Msg("submission for a question outside the current round")
		if s.opts.StrictQuestionLookup {
			return domain.AnswerResult{}, domain.ErrQuestionNotFound
		}
		return domain.AnswerResult{IsCorrect: false}, nil
	}
	if !correct {
		return domain.AnswerResult{IsCorrect: false}, nil
	}

	updated, err := s.accounts.Advance(ctx, account.ID, account.CurrentRound, s.opts.PointsPerCorrect, now)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("advance account %d: %w", account.ID, err)
	}
	s.logger.Info().
		Int64("account_id", updated.ID).
		Int("round", updated.CurrentRound).
		Int("score", updated.Score).
		Msg("account advanced")

	s.PublishLeaderboard(ctx)
	return domain.AnswerResult{IsCorrect: true}, nil
}

// Disqualify freezes an account. Disqualifying twice is a no-op.
func (s *ChallengeService) Disqualify(ctx context.Context, accountID int64) error {
	unlock := s.locks.lock(accountID)
	defer unlock()

	if err := s.accounts.Disqualify(ctx, accountID); err != nil {
		return err
	}
	s.logger.Warn().Int64("account_id", accountID).Msg("account disqualified")
	s.PublishLeaderboard(ctx)
	return nil
}

// Leaderboard ranks active accounts by score. Ties go to whoever reached the score first.
func (s *ChallengeService) Leaderboard(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return rankAccounts(accounts), nil
}

// Submissions returns the account's attempt history, oldest first.
func (s *ChallengeService) Submissions(ctx context.Context, accountID int64) ([]domain.Submission, error) {
	return s.submissions.ListByAccount(ctx, accountID)
}

// Subscribe returns a channel that receives leaderboard snapshots.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ChallengeService) Subscribe(ctx context.Context) (<-chan []domain.Account, func(), error) {
	board, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.Subscribe(board)
	return ch, cancel, nil
}

// PublishLeaderboard pushes a fresh snapshot to subscribers, if there are any.
func (s *ChallengeService) PublishLeaderboard(ctx context.Context) {
	if s.feed.Subscribers() == 0 {
		return
	}
	board, err := s.Leaderboard(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("leaderboard snapshot failed")
		return
	}
	s.feed.Publish(board)
}

// lookupQuestion resolves the submitted question. Questions that do not exist or do not
// belong to the account's current round are reported as not found.
func (s *ChallengeService) lookupQuestion(ctx context.Context, account domain.Account, questionID int64) (domain.Question, bool, error) {
	question, err := s.questions.GetQuestionByID(ctx, questionID)
	if errors.Is(err, domain.ErrQuestionNotFound) {
		return domain.Question{}, false, nil
	}
	if err != nil {
		return domain.Question{}, false, fmt.Errorf("load question %d: %w", questionID, err)
	}
	if question.Round != account.CurrentRound {
		return domain.Question{}, false, nil
	}
	return question, true, nil
}

func (s *ChallengeService) checkDeadline(ctx context.Context, account domain.Account, now time.Time) error {
	started, ok := account.RoundStartedAt()
	if !ok {
		return nil
	}
	question, err := s.questions.GetQuestion(ctx, account.CurrentRound, 1)
	if errors.Is(err, domain.ErrQuestionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load round %d question: %w", account.CurrentRound, err)
	}
	if question.TimeLimit <= 0 {
		return nil
	}
	if now.After(started.Add(time.Duration(question.TimeLimit) * time.Second)) {
		return domain.ErrTimeLimitExceeded
	}
	return nil
}

// answersMatch compares answers case-insensitively, ignoring surrounding whitespace.
func answersMatch(submitted, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(expected))
}

func rankAccounts(accounts []domain.Account) []domain.Account {
	ranked := make([]domain.Account, 0, len(accounts))
	for _, account := range accounts {
		if account.IsDisqualified {
			continue
		}
		ranked = append(ranked, account)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		ti, iok := ranked[i].RoundStartedAt()
		tj, jok := ranked[j].RoundStartedAt()
		if iok && jok && !ti.Equal(tj) {
			return ti.Before(tj)
		}
		if iok != jok {
			return iok
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// accountLocks serializes mutations per account inside this process.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (l *accountLocks) lock(accountID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
