package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"debug-challenge/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

const accountColumns = `id, username, password_hash, current_round, score, is_disqualified, last_submission_time`

// AccountStore persists accounts in Postgres.
type AccountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, password_hash, current_round, score, is_disqualified, last_submission_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		account.Username, account.PasswordHash, account.CurrentRound, account.Score,
		account.IsDisqualified, account.LastSubmissionTime,
	)
	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Account{}, domain.ErrUsernameTaken
		}
		return domain.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

func (s *AccountStore) Get(ctx context.Context, id int64) (domain.Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return s.one(row, "get account")
}

func (s *AccountStore) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	return s.one(row, "get account by username")
}

// Advance moves the account one round forward only while it is still on fromRound.
// When no row matches, the current row tells a disqualification apart from a lost race.
func (s *AccountStore) Advance(ctx context.Context, id int64, fromRound, points int, at time.Time) (domain.Account, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE accounts
		SET score = score + $3, current_round = current_round + 1, last_submission_time = $4
		WHERE id = $1 AND current_round = $2 AND NOT is_disqualified
		RETURNING `+accountColumns,
		id, fromRound, points, at,
	)
	updated, err := scanAccount(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("advance account: %w", err)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}
	if current.IsDisqualified {
		return domain.Account{}, domain.ErrDisqualified
	}
	return domain.Account{}, domain.ErrStaleRound
}

func (s *AccountStore) Disqualify(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET is_disqualified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("disqualify account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (s *AccountStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, account)
	}
	return out, rows.Err()
}

func (s *AccountStore) one(row pgx.Row, op string) (domain.Account, error) {
	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return account, nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CurrentRound, &a.Score, &a.IsDisqualified, &a.LastSubmissionTime)
	return a, err
}
