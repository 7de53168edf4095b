// Package client talks to the challenge API and drives the player-side timers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"debug-challenge/internal/domain"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client is an HTTP client that keeps the session cookie between calls.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: 15 * time.Second},
	}, nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, username, password string) (domain.Account, error) {
	var account domain.Account
	err := c.do(ctx, http.MethodPost, "/api/register", credentials{username, password}, &account)
	return account, err
}

func (c *Client) Login(ctx context.Context, username, password string) (domain.Account, error) {
	var account domain.Account
	err := c.do(ctx, http.MethodPost, "/api/login", credentials{username, password}, &account)
	return account, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (domain.Account, error) {
	var account domain.Account
	err := c.do(ctx, http.MethodGet, "/api/user", nil, &account)
	return account, err
}

func (c *Client) CurrentQuestion(ctx context.Context) (domain.PublicQuestion, error) {
	var question domain.PublicQuestion
	err := c.do(ctx, http.MethodGet, "/api/question", nil, &question)
	return question, err
}

func (c *Client) Submit(ctx context.Context, questionID int64, answer string) (bool, error) {
	var result domain.AnswerResult
	err := c.do(ctx, http.MethodPost, "/api/submit", domain.AnswerSubmission{QuestionID: questionID, Answer: answer}, &result)
	return result.IsCorrect, err
}

func (c *Client) Disqualify(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/disqualify", nil, nil)
}

func (c *Client) Leaderboard(ctx context.Context) ([]domain.Account, error) {
	var board []domain.Account
	err := c.do(ctx, http.MethodGet, "/api/leaderboard", nil, &board)
	return board, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
