package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/google/uuid"
)

// UserRepository keeps users in process memory. Used for ENV=local without
// a database and as the store behind workflow tests.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User // by id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byEmailLocked(user.Email) != nil {
		return nil, domain.ErrEmailTaken
	}

	now := time.Now().UTC()
	u := cloneUser(user)
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = u
	return cloneUser(u), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.byEmailLocked(email)
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		if other := r.byEmailLocked(*upd.Email); other != nil && other.ID != id {
			return nil, domain.ErrEmailTaken
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *UserRepository) SetResetToken(_ context.Context, email, tokenHash string, expiresAt time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.byEmailLocked(email)
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpiresAt = &expiresAt
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *UserRepository) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.byResetTokenLocked(tokenHash, now)
	if u == nil {
		return nil, domain.ErrResetTokenInvalid
	}
	return cloneUser(u), nil
}

func (r *UserRepository) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.byResetTokenLocked(tokenHash, now)
	if u == nil {
		return nil, domain.ErrResetTokenInvalid
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *UserRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cleared := 0
	for _, u := range r.users {
		if u.ResetTokenExpiresAt != nil && !u.ResetTokenExpiresAt.After(now) {
			u.ResetTokenHash = nil
			u.ResetTokenExpiresAt = nil
			cleared++
		}
	}
	return cleared, nil
}

// Ping lets the memory store stand in for a health.Pinger.
func (r *UserRepository) Ping(context.Context) error { return nil }

func (r *UserRepository) byEmailLocked(email string) *domain.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *UserRepository) byResetTokenLocked(tokenHash string, now time.Time) *domain.User {
	for _, u := range r.users {
		if u.HasResetToken() && *u.ResetTokenHash == tokenHash && u.ResetTokenExpiresAt.After(now) {
			return u
		}
	}
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.ResetTokenHash != nil {
		h := *u.ResetTokenHash
		c.ResetTokenHash = &h
	}
	if u.ResetTokenExpiresAt != nil {
		e := *u.ResetTokenExpiresAt
		c.ResetTokenExpiresAt = &e
	}
	return &c
}
