package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cinescope/internal/auth"
	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/store"
)

// Repository aggregates all domain-specific repositories.
type Repository struct {
	KV       *KVRepository
	Users    *UsersRepository
	Sessions *SessionsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		KV:       &KVRepository{pool: pool},
		Users:    &UsersRepository{pool: pool},
		Sessions: &SessionsRepository{pool: pool},
	}
}

// Auth adapts the users and sessions repositories to auth.Repository.
func (r *Repository) Auth() auth.Repository {
	return authRepository{users: r.Users, sessions: r.Sessions}
}

type authRepository struct {
	users    *UsersRepository
	sessions *SessionsRepository
}

func (a authRepository) CreateUser(ctx context.Context, user domain.User) error {
	return a.users.Create(ctx, user)
}

func (a authRepository) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return a.users.GetByEmail(ctx, email)
}

func (a authRepository) UserByID(ctx context.Context, id string) (domain.User, error) {
	return a.users.GetByID(ctx, id)
}

func (a authRepository) CreateSession(ctx context.Context, session domain.Session) error {
	return a.sessions.Create(ctx, session)
}

func (a authRepository) Session(ctx context.Context, token string) (domain.Session, error) {
	return a.sessions.Get(ctx, token)
}

func (a authRepository) DeleteSession(ctx context.Context, token string) error {
	return a.sessions.Delete(ctx, token)
}

func (a authRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return a.sessions.DeleteExpired(ctx, now)
}
