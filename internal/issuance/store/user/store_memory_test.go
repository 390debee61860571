package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"issuer-gateway/internal/issuance/models"
	"issuer-gateway/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *MemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryStore()
}

func (s *MemoryStoreSuite) seed() *models.User {
	user := &models.User{
		ID:       uuid.New(),
		UserCode: "CODE99",
		Phone:    "+15550100",
		Ssn:      "123-45-6789",
		Dob:      "1990-01-15",
	}
	s.Require().NoError(s.store.Create(s.ctx, user))
	return user
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	user := s.seed()

	s.Run("by code", func() {
		found, err := s.store.FindByCode(s.ctx, "CODE99")
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("by phone", func() {
		found, err := s.store.FindByPhone(s.ctx, "+15550100")
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("by did when unset", func() {
		_, err := s.store.FindByDid(s.ctx, "")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("miss", func() {
		_, err := s.store.FindByCode(s.ctx, "NOSUCH")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestCreateRejectsDuplicates() {
	s.seed()

	s.Run("duplicate code", func() {
		err := s.store.Create(s.ctx, &models.User{ID: uuid.New(), UserCode: "CODE99"})
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("duplicate did", func() {
		first := &models.User{ID: uuid.New(), Did: "did:example:1", UserCode: "OTHER1"}
		s.Require().NoError(s.store.Create(s.ctx, first))
		err := s.store.Create(s.ctx, &models.User{ID: uuid.New(), Did: "did:example:1", UserCode: "OTHER2"})
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *MemoryStoreSuite) TestPatch() {
	user := s.seed()

	s.Run("set did and clear code", func() {
		did := "did:example:1"
		cleared := ""
		patched, err := s.store.Patch(s.ctx, user.ID, models.UserPatch{Did: &did, UserCode: &cleared})
		s.Require().NoError(err)
		s.Equal(did, patched.Did)
		s.Empty(patched.UserCode)

		found, err := s.store.FindByDid(s.ctx, did)
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("nil fields untouched", func() {
		patched, err := s.store.Patch(s.ctx, user.ID, models.UserPatch{})
		s.Require().NoError(err)
		s.Equal("did:example:1", patched.Did)
	})

	s.Run("unknown id", func() {
		_, err := s.store.Patch(s.ctx, uuid.New(), models.UserPatch{})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestReturnsCopies() {
	user := s.seed()

	found, err := s.store.FindByCode(s.ctx, "CODE99")
	s.Require().NoError(err)
	found.Phone = "mutated"

	again, err := s.store.FindByCode(s.ctx, "CODE99")
	s.Require().NoError(err)
	s.Equal(user.Phone, again.Phone)
}
