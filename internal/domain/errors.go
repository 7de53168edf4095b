package domain

import "errors"

var (
	// ErrAccountNotFound is returned when no account has the requested id or username.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidInput indicates a malformed or incomplete request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFound is returned when a login session is unknown, expired or revoked.
	ErrSessionNotFound = errors.New("session not found")
	// ErrDisqualified is returned when a disqualified account tries to act.
	ErrDisqualified = errors.New("you have been disqualified")
	// ErrQuestionNotFound indicates there is no question for the round or id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrTimeLimitExceeded is returned when the round clock has run out.
	ErrTimeLimitExceeded = errors.New("time limit exceeded for this round")
	// ErrStaleRound is returned when the account moved on while an answer was being scored.
	ErrStaleRound = errors.New("round already advanced")
)
