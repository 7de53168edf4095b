package security

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	claimSubject = "sub"
	claimSession = "sid"
)

var (
	errMissingSubject = errors.New("sub claim is missing or not an account id")
	errMissingSession = errors.New("sid claim is missing or not a string")
)

// Tokens signs and verifies the HS256 tokens stored in the session cookie.
type Tokens struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
}

func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
	}
}

// JWTAuth exposes the verifier for router middleware.
func (t *Tokens) JWTAuth() *jwtauth.JWTAuth {
	return t.auth
}

// TTL is how long an issued token stays valid.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token binding the account to a server-side session.
func (t *Tokens) Issue(accountID int64, sessionID string) (string, error) {
	claims := map[string]interface{}{
		claimSubject: strconv.FormatInt(accountID, 10),
		claimSession: sessionID,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, t.ttl)
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

// Parse verifies a token and returns the account and session it carries.
func (t *Tokens) Parse(tokenString string) (int64, string, error) {
	token, err := jwtauth.VerifyToken(t.auth, tokenString)
	if err != nil {
		return 0, "", err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return 0, "", err
	}
	return ClaimsIdentity(claims)
}

// ClaimsIdentity extracts the account id and session id from verified claims.
func ClaimsIdentity(claims jwt.MapClaims) (int64, string, error) {
	accountID, err := AccountIDFromClaims(claims)
	if err != nil {
		return 0, "", err
	}
	sessionID, err := SessionIDFromClaims(claims)
	if err != nil {
		return 0, "", err
	}
	return accountID, sessionID, nil
}

func AccountIDFromClaims(claims jwt.MapClaims) (int64, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errMissingSubject
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, errMissingSubject
	}
	return id, nil
}

func SessionIDFromClaims(claims jwt.MapClaims) (string, error) {
	sid, ok := claims[claimSession].(string)
	if !ok || sid == "" {
		return "", errMissingSession
	}
	return sid, nil
}
