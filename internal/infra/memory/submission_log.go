package memory

import (
	"context"
	"sync"

	"debug-challenge/internal/domain"
)

// SubmissionLog is an append-only, in-memory implementation of app.SubmissionLog.
type SubmissionLog struct {
	mu          sync.RWMutex
	nextID      int64
	submissions []domain.Submission
}

func NewSubmissionLog() *SubmissionLog {
	return &SubmissionLog{}
}

func (l *SubmissionLog) Append(_ context.Context, submission domain.Submission) (domain.Submission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	submission.ID = l.nextID
	l.submissions = append(l.submissions, submission)
	return submission, nil
}

func (l *SubmissionLog) ListByAccount(_ context.Context, accountID int64) ([]domain.Submission, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Submission, 0)
	for _, submission := range l.submissions {
		if submission.AccountID == accountID {
			out = append(out, submission)
		}
	}
	return out, nil
}

// Len reports how many attempts have been logged.
func (l *SubmissionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.submissions)
}
