package auth

import (
	"context"
	"sync"
	"time"

	"github.com/Clark-Hu/cinescope/internal/domain"
)

// MemoryRepository keeps users and sessions in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	users    map[string]domain.User
	byEmail  map[string]string
	sessions map[string]domain.Session
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[string]domain.User),
		byEmail:  make(map[string]string),
		sessions: make(map[string]domain.Session),
	}
}

func (m *MemoryRepository) CreateUser(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return ErrEmailTaken
	}
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *MemoryRepository) UserByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *MemoryRepository) UserByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return user, nil
}

func (m *MemoryRepository) CreateSession(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return nil
}

func (m *MemoryRepository) Session(_ context.Context, token string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok {
		return domain.Session{}, ErrNotFound
	}
	return session, nil
}

func (m *MemoryRepository) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MemoryRepository) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}
