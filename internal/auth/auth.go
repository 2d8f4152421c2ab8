// Package auth issues and checks bearer sessions for registered users.
// Signed-in users get their own favorites namespace on the server.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Clark-Hu/cinescope/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidSession     = errors.New("auth: invalid or expired session")
	ErrWeakPassword       = errors.New("auth: password must be between 8 and 72 bytes")
	ErrInvalidEmail       = errors.New("auth: invalid email address")
	// ErrNotFound is returned by Repository lookups that match nothing.
	ErrNotFound = errors.New("auth: record not found")
)

// Provider authenticates users and manages their sessions.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (domain.Session, error)
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Authenticate(ctx context.Context, token string) (domain.User, error)
	Logout(ctx context.Context, token string) error
}

// Repository persists users and sessions. CreateUser must return
// ErrEmailTaken for a duplicate email; lookups return ErrNotFound.
type Repository interface {
	CreateUser(ctx context.Context, user domain.User) error
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	UserByID(ctx context.Context, id string) (domain.User, error)
	CreateSession(ctx context.Context, session domain.Session) error
	Session(ctx context.Context, token string) (domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
