package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"debug-challenge/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads the question bank from Postgres; test cases live in a JSONB column.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, round, question_number, content, image_url, answer, time_limit, test_cases
		FROM questions ORDER BY round, question_number`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.Round, &q.QuestionNumber, &q.Content, &q.ImageURL, &q.Answer, &q.TimeLimit, &raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &q.TestCases); err != nil {
				return nil, fmt.Errorf("unmarshal test cases for question %d: %w", q.ID, err)
			}
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
