package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"debug-challenge/internal/domain"
	"debug-challenge/internal/infra/memory"
	"debug-challenge/internal/security"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPublisher struct {
	calls int
}

func (p *countingPublisher) PublishLeaderboard(context.Context) {
	p.calls++
}

func newAuthFixture(t *testing.T) (*AuthService, *memory.AccountStore, *security.Tokens, *countingPublisher) {
	t.Helper()
	accounts := memory.NewAccountStore()
	tokens := security.NewTokens([]byte("auth-test"), time.Hour)
	publisher := &countingPublisher{}
	return NewAuthService(accounts, memory.NewSessionStore(time.Hour), tokens, publisher, zerolog.Nop()), accounts, tokens, publisher
}

func TestRegisterCreatesRoundOneAccount(t *testing.T) {
	auth, accounts, tokens, publisher := newAuthFixture(t)
	ctx := context.Background()

	result, err := auth.Register(ctx, Credentials{Username: "  alice ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Account.Username)
	assert.Equal(t, 1, result.Account.CurrentRound)
	assert.Equal(t, 0, result.Account.Score)
	assert.False(t, result.Account.IsDisqualified)
	assert.NotNil(t, result.Account.LastSubmissionTime)
	assert.Equal(t, 1, publisher.calls)

	stored, err := accounts.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.True(t, security.CheckPasswordHash("secret", stored.PasswordHash))

	accountID, sessionID, err := tokens.Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Account.ID, accountID)
	assert.Equal(t, result.SessionID, sessionID)

	authed, err := auth.Authenticate(ctx, sessionID, accountID)
	require.NoError(t, err)
	assert.Equal(t, "alice", authed.Username)
}

func TestRegisterValidation(t *testing.T) {
	auth, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	for _, creds := range []Credentials{
		{Username: "", Password: "x"},
		{Username: "   ", Password: "x"},
		{Username: "bob", Password: ""},
		{Username: strings.Repeat("a", maxUsernameLength+1), Password: "x"},
	} {
		_, err := auth.Register(ctx, creds)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "credentials %+v", creds)
	}

	_, err := auth.Register(ctx, Credentials{Username: "bob", Password: "x"})
	require.NoError(t, err)
	_, err = auth.Register(ctx, Credentials{Username: "bob", Password: "y"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	auth, _, _, _ := newAuthFixture(t)
	ctx := context.Background()
	registered, err := auth.Register(ctx, Credentials{Username: "carol", Password: "pw"})
	require.NoError(t, err)

	result, err := auth.Login(ctx, Credentials{Username: "carol", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, result.Account.ID)
	assert.NotEqual(t, registered.SessionID, result.SessionID)

	_, err = auth.Login(ctx, Credentials{Username: "carol", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = auth.Login(ctx, Credentials{Username: "nobody", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = auth.Login(ctx, Credentials{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogoutRevokesOnlyThatSession(t *testing.T) {
	auth, _, _, _ := newAuthFixture(t)
	ctx := context.Background()
	first, err := auth.Register(ctx, Credentials{Username: "dave", Password: "pw"})
	require.NoError(t, err)
	second, err := auth.Login(ctx, Credentials{Username: "dave", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, first.SessionID))
	require.NoError(t, auth.Logout(ctx, ""))

	_, err = auth.Authenticate(ctx, first.SessionID, first.Account.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = auth.Authenticate(ctx, second.SessionID, second.Account.ID)
	assert.NoError(t, err)
}

func TestAuthenticateRejectsForeignSession(t *testing.T) {
	auth, _, _, _ := newAuthFixture(t)
	ctx := context.Background()
	alice, err := auth.Register(ctx, Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	bob, err := auth.Register(ctx, Credentials{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, alice.SessionID, bob.Account.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
