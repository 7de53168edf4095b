package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"debug-challenge/internal/domain"
	"debug-challenge/internal/security"
	"github.com/rs/zerolog"
)

// SessionRepository stores login sessions (in-memory, Redis, etc).
type SessionRepository interface {
	Create(ctx context.Context, accountID int64) (string, error)
	Lookup(ctx context.Context, sessionID string) (int64, error)
	Delete(ctx context.Context, sessionID string) error
}

// TokenIssuer signs the cookie token that carries a session.
type TokenIssuer interface {
	Issue(accountID int64, sessionID string) (string, error)
}

// LeaderboardPublisher is notified when a new account joins the board.
type LeaderboardPublisher interface {
	PublishLeaderboard(ctx context.Context)
}

// Credentials is the register/login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is an authenticated account plus the token for its new session.
type LoginResult struct {
	Account   domain.Account
	SessionID string
	Token     string
}

const maxUsernameLength = 64

// AuthService handles registration, login and session checks.
type AuthService struct {
	accounts  AccountRepository
	sessions  SessionRepository
	tokens    TokenIssuer
	publisher LeaderboardPublisher
	now       func() time.Time
	logger    zerolog.Logger
}

func NewAuthService(accounts AccountRepository, sessions SessionRepository, tokens TokenIssuer, publisher LeaderboardPublisher, logger zerolog.Logger) *AuthService {
	return &AuthService{
		accounts:  accounts,
		sessions:  sessions,
		tokens:    tokens,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates an account on round 1 with no score and logs it in.
func (s *AuthService) Register(ctx context.Context, creds Credentials) (LoginResult, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" || len(username) > maxUsernameLength {
		return LoginResult{}, fmt.Errorf("username and password are required: %w", domain.ErrInvalidInput)
	}

	hash, err := security.HashPassword(creds.Password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	account, err := s.accounts.Create(ctx, domain.Account{
		Username:           username,
		PasswordHash:       hash,
		CurrentRound:       1,
		Score:              0,
		LastSubmissionTime: &now,
	})
	if err != nil {
		return LoginResult{}, err
	}
	s.logger.Info().Int64("account_id", account.ID).Str("username", account.Username).Msg("account registered")

	if s.publisher != nil {
		s.publisher.PublishLeaderboard(ctx)
	}
	return s.startSession(ctx, account)
}

// Login verifies credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return LoginResult{}, fmt.Errorf("username and password are required: %w", domain.ErrInvalidInput)
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("find account: %w", err)
	}
	if !security.CheckPasswordHash(creds.Password, account.PasswordHash) {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	return s.startSession(ctx, account)
}

// Logout revokes a session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a session to its live account.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string, accountID int64) (domain.Account, error) {
	owner, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil {
		return domain.Account{}, err
	}
	if owner != accountID {
		return domain.Account{}, domain.ErrSessionNotFound
	}
	return s.accounts.Get(ctx, accountID)
}

func (s *AuthService) startSession(ctx context.Context, account domain.Account) (LoginResult, error) {
	sessionID, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}
	token, err := s.tokens.Issue(account.ID, sessionID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{Account: account, SessionID: sessionID, Token: token}, nil
}
