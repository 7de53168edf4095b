package postgres

import (
	"context"
	"fmt"

	"debug-challenge/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SubmissionLog appends answer attempts to the submissions table.
type SubmissionLog struct {
	pool *pgxpool.Pool
}

func NewSubmissionLog(pool *pgxpool.Pool) *SubmissionLog {
	return &SubmissionLog{pool: pool}
}

func (l *SubmissionLog) Append(ctx context.Context, submission domain.Submission) (domain.Submission, error) {
	err := l.pool.QueryRow(ctx, `
		INSERT INTO submissions (account_id, question_id, answer, is_correct, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		submission.AccountID, submission.QuestionID, submission.Answer, submission.IsCorrect, submission.SubmittedAt,
	).Scan(&submission.ID)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return submission, nil
}

func (l *SubmissionLog) ListByAccount(ctx context.Context, accountID int64) ([]domain.Submission, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, account_id, question_id, answer, is_correct, submitted_at
		FROM submissions WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Submission, 0)
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(&s.ID, &s.AccountID, &s.QuestionID, &s.Answer, &s.IsCorrect, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
