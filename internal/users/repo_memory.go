package users

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory repository for tests and local development.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRepo(users ...User) *MemoryRepo {
	r := &MemoryRepo{users: make(map[string]User, len(users))}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *MemoryRepo) Put(u User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *MemoryRepo) FindByEmail(_ context.Context, email string) (User, error) {
	email = strings.TrimSpace(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}
