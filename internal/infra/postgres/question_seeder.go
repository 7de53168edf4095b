package postgres

import (
	"context"
	"fmt"

	"debug-challenge/internal/domain"
	"github.com/uptrace/bun"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID             int64             `bun:"id,pk"`
	Round          int               `bun:"round"`
	QuestionNumber int               `bun:"question_number"`
	Content        string            `bun:"content"`
	ImageURL       *string           `bun:"image_url"`
	Answer         string            `bun:"answer"`
	TimeLimit      int               `bun:"time_limit"`
	TestCases      []domain.TestCase `bun:"test_cases,type:jsonb"`
}

// SeedQuestions upserts questions by id and moves the id sequence past them.
func SeedQuestions(ctx context.Context, db *bun.DB, questions []domain.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		testCases := q.TestCases
		if testCases == nil {
			testCases = []domain.TestCase{}
		}
		rows = append(rows, questionRow{
			ID:             q.ID,
			Round:          q.Round,
			QuestionNumber: q.QuestionNumber,
			Content:        q.Content,
			ImageURL:       q.ImageURL,
			Answer:         q.Answer,
			TimeLimit:      q.TimeLimit,
			TestCases:      testCases,
		})
	}

	var affected int64
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().
			Model(&rows).
			On("CONFLICT (id) DO UPDATE").
			Set("round = EXCLUDED.round").
			Set("question_number = EXCLUDED.question_number").
			Set("content = EXCLUDED.content").
			Set("image_url = EXCLUDED.image_url").
			Set("answer = EXCLUDED.answer").
			Set("time_limit = EXCLUDED.time_limit").
			Set("test_cases = EXCLUDED.test_cases").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert questions: %w", err)
		}
		affected, _ = res.RowsAffected()

		_, err = tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('questions', 'id'), (SELECT MAX(id) FROM questions))`)
		return err
	})
	return affected, err
}
