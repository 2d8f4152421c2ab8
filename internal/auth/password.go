package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/cinescope/internal/domain"
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour
	minPasswordLen    = 8
	maxPasswordLen    = 72
)

// Options configures a PasswordProvider.
type Options struct {
	// Cost is the bcrypt cost; zero selects bcrypt.DefaultCost.
	Cost       int
	SessionTTL time.Duration
	Logger     *log.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// PasswordProvider is a Provider backed by bcrypt password hashes and
// random session tokens.
type PasswordProvider struct {
	repo   Repository
	cost   int
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

var _ Provider = (*PasswordProvider)(nil)

// NewPasswordProvider validates opts and returns a provider over repo.
func NewPasswordProvider(repo Repository, opts Options) (*PasswordProvider, error) {
	if repo == nil {
		return nil, errors.New("auth: repository is required")
	}
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &PasswordProvider{repo: repo, cost: cost, ttl: ttl, logger: logger, now: now}, nil
}

// SignUp registers a new user and signs them in.
func (p *PasswordProvider) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return domain.Session{}, err
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return domain.Session{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return domain.Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	}
	if err := p.repo.CreateUser(ctx, user); err != nil {
		return domain.Session{}, err
	}
	p.logger.Printf("auth: registered user %s", user.ID)
	return p.issue(ctx, user.ID)
}

// Login checks the password and opens a new session.
func (p *PasswordProvider) Login(ctx context.Context, email, password string) (domain.Session, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}
	user, err := p.repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}
	return p.issue(ctx, user.ID)
}

// Authenticate resolves a session token to its user. Expired sessions are
// deleted on sight.
func (p *PasswordProvider) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrInvalidSession
	}
	session, err := p.repo.Session(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.User{}, ErrInvalidSession
		}
		return domain.User{}, err
	}
	if session.Expired(p.now()) {
		if err := p.repo.DeleteSession(ctx, token); err != nil {
			p.logger.Printf("auth: delete expired session: %v", err)
		}
		return domain.User{}, ErrInvalidSession
	}
	user, err := p.repo.UserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.User{}, ErrInvalidSession
		}
		return domain.User{}, err
	}
	return user, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (p *PasswordProvider) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return p.repo.DeleteSession(ctx, token)
}

// SweepExpired deletes every session past its expiry.
func (p *PasswordProvider) SweepExpired(ctx context.Context) (int64, error) {
	return p.repo.DeleteExpiredSessions(ctx, p.now())
}

func (p *PasswordProvider) issue(ctx context.Context, userID string) (domain.Session, error) {
	now := p.now().UTC()
	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}
	if err := p.repo.CreateSession(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// NormalizeEmail trims and lowercases email and checks it is a bare
// address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
