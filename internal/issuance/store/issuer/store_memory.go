// Package issuer persists issuer records. Only the rotating auth token is
// ever mutated by this service; provisioning happens out-of-band.
package issuer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/pkg/platform/sentinel"
)

// MemoryStore implements ports.IssuerStore with a mutex-guarded map.
type MemoryStore struct {
	mu      sync.RWMutex
	issuers map[uuid.UUID]models.Issuer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{issuers: make(map[uuid.UUID]models.Issuer)}
}

func (s *MemoryStore) Create(_ context.Context, issuer *models.Issuer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.issuers[issuer.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.issuers {
		if existing.Did == issuer.Did {
			return sentinel.ErrConflict
		}
	}

	s.issuers[issuer.ID] = *issuer
	return nil
}

func (s *MemoryStore) FindByDid(_ context.Context, did string) (*models.Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, issuer := range s.issuers {
		if issuer.Did == did {
			out := issuer
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) PatchAuthToken(_ context.Context, id uuid.UUID, authToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuer, ok := s.issuers[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	issuer.AuthToken = authToken
	issuer.UpdatedAt = time.Now()
	s.issuers[id] = issuer
	return nil
}
