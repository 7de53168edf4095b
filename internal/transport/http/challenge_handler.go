package http

import (
	"encoding/json"
	"net/http"

	"debug-challenge/internal/domain"
)

func (s *Server) currentQuestion(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFromContext(r.Context())
	question, err := s.challenge.CurrentQuestion(r.Context(), account.ID)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, question)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var payload domain.AnswerSubmission
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.QuestionID <= 0 {
		respondMessage(w, http.StatusBadRequest, "questionId is required")
		return
	}

	account, _ := accountFromContext(r.Context())
	result, err := s.challenge.SubmitAnswer(r.Context(), account.ID, payload)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) disqualify(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFromContext(r.Context())
	if err := s.challenge.Disqualify(r.Context(), account.ID); err != nil {
		respondError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.challenge.Leaderboard(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

func (s *Server) submissions(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFromContext(r.Context())
	history, err := s.challenge.Submissions(r.Context(), account.ID)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if history == nil {
		history = []domain.Submission{}
	}
	respondJSON(w, http.StatusOK, history)
}
