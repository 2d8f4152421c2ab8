package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/Clark-Hu/cinescope/internal/auth"
	"github.com/Clark-Hu/cinescope/internal/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	session, err := s.auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondAuthError(w, err)
		return
	}
	s.respondSession(w, r, http.StatusCreated, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondAuthError(w, err)
		return
	}
	s.respondSession(w, r, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	if err := s.auth.Logout(r.Context(), token); err != nil {
		s.respondAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	user, err := s.auth.Authenticate(r.Context(), token)
	if err != nil {
		s.respondAuthError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, status int, session domain.Session) {
	user, err := s.auth.Authenticate(r.Context(), session.Token)
	if err != nil {
		s.respondAuthError(w, err)
		return
	}
	s.respondJSON(w, status, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      userResponse{ID: user.ID, Email: user.Email},
	})
}

func (s *Server) respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email is not a valid address")
	case errors.Is(err, auth.ErrWeakPassword):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "password must be between 8 and 72 characters")
	case errors.Is(err, auth.ErrEmailTaken):
		s.respondError(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidSession):
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
	default:
		s.logger.Printf("auth error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed")
	}
}
