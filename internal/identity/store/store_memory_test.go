package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nolatabs/internal/identity/models"
	"nolatabs/pkg/platform/sentinel"
)

type AccountStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *AccountStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestAccountStoreSuite(t *testing.T) {
	suite.Run(t, new(AccountStoreSuite))
}

func (s *AccountStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds account by email", func() {
		account := models.NewAccount("ada@example.com", time.Now())
		s.Require().NoError(s.store.Create(s.ctx, account))

		found, err := s.store.FindByEmail(s.ctx, "ada@example.com")
		s.Require().NoError(err)
		s.Equal(account.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown email", func() {
		_, err := s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *AccountStoreSuite) TestEmailUniqueness() {
	s.Run("rejects duplicate email", func() {
		s.Require().NoError(s.store.Create(s.ctx, models.NewAccount("dup@example.com", time.Now())))

		err := s.store.Create(s.ctx, models.NewAccount("dup@example.com", time.Now()))
		s.ErrorIs(err, sentinel.ErrDuplicateEntry)
	})

	s.Run("uniqueness is case-sensitive", func() {
		s.Require().NoError(s.store.Create(s.ctx, models.NewAccount("Case@example.com", time.Now())))
		s.NoError(s.store.Create(s.ctx, models.NewAccount("case@example.com", time.Now())))
	})
}

func (s *AccountStoreSuite) TestRemove() {
	account := models.NewAccount("gone@example.com", time.Now())
	s.Require().NoError(s.store.Create(s.ctx, account))

	s.store.Remove(s.ctx, account.ID)

	_, err := s.store.FindByEmail(s.ctx, "gone@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
