package http

import (
	"context"
	"net/http"
	"time"

	"debug-challenge/internal/domain"
	"debug-challenge/internal/security"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	accountCtxKey contextKey = "account"
	sessionCtxKey contextKey = "session"
)

// requestLogger logs one line per request once the handler has finished.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			event := logger.Info()
			if status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

// tokenFromCookie reads the session token from the configured cookie.
func tokenFromCookie(name string) func(r *http.Request) string {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// authenticator requires a verified token whose session is still live. Failures get a bare 401.
func (s *Server) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		accountID, sessionID, err := security.ClaimsIdentity(claims)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		account, err := s.auth.Authenticate(r.Context(), sessionID, accountID)
		if err != nil {
			respondError(w, s.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), accountCtxKey, account)
		ctx = context.WithValue(ctx, sessionCtxKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accountFromContext(ctx context.Context) (domain.Account, bool) {
	account, ok := ctx.Value(accountCtxKey).(domain.Account)
	return account, ok
}

func sessionFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionCtxKey).(string)
	return sessionID
}
