package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cinescope/internal/auth"
	"github.com/Clark-Hu/cinescope/internal/domain"
)

const uniqueViolation = "23505"

// UsersRepository persists registered users.
type UsersRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a user, mapping a duplicate email to auth.ErrEmailTaken.
func (r *UsersRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
        INSERT INTO users (id, email, password_hash, created_at)
        VALUES ($1, $2, $3, $4)
    `
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail looks a user up by normalized email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

// GetByID looks a user up by id.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *UsersRepository) getOne(ctx context.Context, query, arg string) (domain.User, error) {
	var user domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, auth.ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// SessionsRepository persists bearer sessions.
type SessionsRepository struct {
	pool *pgxpool.Pool
}

// Create stores a new session.
func (r *SessionsRepository) Create(ctx context.Context, session domain.Session) error {
	const query = `
        INSERT INTO sessions (token, user_id, created_at, expires_at)
        VALUES ($1, $2, $3, $4)
    `
	if _, err := r.pool.Exec(ctx, query, session.Token, session.UserID, session.CreatedAt, session.ExpiresAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get returns the session for token or auth.ErrNotFound.
func (r *SessionsRepository) Get(ctx context.Context, token string) (domain.Session, error) {
	const query = `SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = $1`
	var s domain.Session
	if err := r.pool.QueryRow(ctx, query, token).Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, auth.ErrNotFound
		}
		return domain.Session{}, err
	}
	return s, nil
}

// Delete removes a session; unknown tokens are ignored.
func (r *SessionsRepository) Delete(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpired removes sessions that expired at or before now.
func (r *SessionsRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
