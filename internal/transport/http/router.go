package http

import (
	"net/http"
	"time"

	"debug-challenge/internal/app"
	"debug-challenge/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Server holds the HTTP handlers of the challenge API.
type Server struct {
	challenge *app.ChallengeService
	auth      *app.AuthService
	tokens    *security.Tokens
	cookie    CookieConfig
	logger    zerolog.Logger
	ws        *WSHandler
}

func NewServer(challenge *app.ChallengeService, auth *app.AuthService, tokens *security.Tokens, cookie CookieConfig, logger zerolog.Logger) *Server {
	if cookie.Name == "" {
		cookie.Name = "jwt"
	}
	logger = logger.With().Str("component", "http").Logger()
	return &Server{
		challenge: challenge,
		auth:      auth,
		tokens:    tokens,
		cookie:    cookie,
		logger:    logger,
		ws:        NewWSHandler(challenge, logger),
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws/leaderboard", s.ws.ServeLeaderboard)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))
		api.Use(jwtauth.Verify(s.tokens.JWTAuth(), tokenFromCookie(s.cookie.Name), jwtauth.TokenFromHeader))

		api.Post("/register", s.register)
		api.Post("/login", s.login)
		api.Post("/logout", s.logout)
		api.Get("/leaderboard", s.leaderboard)

		api.Group(func(authed chi.Router) {
			authed.Use(s.authenticator)
			authed.Get("/user", s.currentUser)
			authed.Get("/question", s.currentQuestion)
			authed.Post("/submit", s.submit)
			authed.Post("/disqualify", s.disqualify)
			authed.Get("/submissions", s.submissions)
		})
	})
	return r
}
