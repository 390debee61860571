// Package user persists user records. The in-memory store backs development
// and unit tests; PostgresStore is the production implementation.
package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/pkg/platform/sentinel"
)

// MemoryStore implements ports.UserStore with a mutex-guarded map.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]models.User)}
}

func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.users {
		if user.Did != "" && existing.Did == user.Did {
			return sentinel.ErrConflict
		}
		if user.UserCode != "" && existing.UserCode == user.UserCode {
			return sentinel.ErrConflict
		}
	}

	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) FindByDid(_ context.Context, did string) (*models.User, error) {
	if did == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findBy(func(u models.User) bool { return u.Did == did })
}

func (s *MemoryStore) FindByCode(_ context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findBy(func(u models.User) bool { return u.UserCode == code })
}

func (s *MemoryStore) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	if phone == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findBy(func(u models.User) bool { return u.Phone == phone })
}

func (s *MemoryStore) Patch(_ context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	if patch.Did != nil {
		user.Did = *patch.Did
	}
	if patch.UserCode != nil {
		user.UserCode = *patch.UserCode
	}
	user.UpdatedAt = time.Now()

	s.users[id] = user
	out := user
	return &out, nil
}

func (s *MemoryStore) findBy(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if match(user) {
			out := user
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
