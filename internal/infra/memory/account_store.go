package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"debug-challenge/internal/domain"
)

// AccountStore is an in-memory implementation of app.AccountRepository.
type AccountStore struct {
	mu         sync.RWMutex
	nextID     int64
	accounts   map[int64]*domain.Account
	byUsername map[string]int64
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts:   make(map[int64]*domain.Account),
		byUsername: make(map[string]int64),
	}
}

func (s *AccountStore) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[account.Username]; taken {
		return domain.Account{}, domain.ErrUsernameTaken
	}
	s.nextID++
	account.ID = s.nextID
	stored := copyAccount(account)
	s.accounts[account.ID] = &stored
	s.byUsername[account.Username] = account.ID
	return copyAccount(stored), nil
}

func (s *AccountStore) Get(_ context.Context, id int64) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return copyAccount(*account), nil
}

func (s *AccountStore) GetByUsername(_ context.Context, username string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return copyAccount(*s.accounts[id]), nil
}

func (s *AccountStore) Advance(_ context.Context, id int64, fromRound, points int, at time.Time) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if account.IsDisqualified {
		return domain.Account{}, domain.ErrDisqualified
	}
	if account.CurrentRound != fromRound {
		return domain.Account{}, domain.ErrStaleRound
	}
	account.Score += points
	account.CurrentRound++
	account.LastSubmissionTime = &at
	return copyAccount(*account), nil
}

func (s *AccountStore) Disqualify(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.IsDisqualified = true
	return nil
}

// List returns every account ordered by id.
func (s *AccountStore) List(_ context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, copyAccount(*account))
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// copyAccount detaches the timestamp pointer from the stored record.
func copyAccount(account domain.Account) domain.Account {
	if account.LastSubmissionTime != nil {
		ts := *account.LastSubmissionTime
		account.LastSubmissionTime = &ts
	}
	return account
}
