package http

import (
	"encoding/json"
	"net/http"
	"time"

	"debug-challenge/internal/app"
	"debug-challenge/internal/security"
	"github.com/go-chi/jwtauth/v5"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var creds app.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	result, err := s.auth.Register(r.Context(), creds)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	s.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusCreated, result.Account)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds app.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	result, err := s.auth.Login(r.Context(), creds)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	s.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusOK, result.Account)
}

// logout revokes the caller's session if the token is still valid, and always clears the cookie.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if token, claims, err := jwtauth.FromContext(r.Context()); err == nil && token != nil {
		if _, sessionID, err := security.ClaimsIdentity(claims); err == nil {
			if err := s.auth.Logout(r.Context(), sessionID); err != nil {
				respondError(w, s.logger, err)
				return
			}
		}
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     s.cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl := s.tokens.TTL(); ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
