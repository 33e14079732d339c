package store

import (
	"context"
	"fmt"
	"sync"

	"nolatabs/internal/identity/models"
	"nolatabs/pkg/domain"
	"nolatabs/pkg/platform/sentinel"
)

// InMemory keeps accounts in a map keyed by email.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[string]*models.Account)}
}

func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Email]; ok {
		return fmt.Errorf("create account: %w", sentinel.ErrDuplicateEntry)
	}
	stored := *account
	s.accounts[account.Email] = &stored
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[email]
	if !ok {
		return nil, fmt.Errorf("find account by email: %w", sentinel.ErrNotFound)
	}
	found := *account
	return &found, nil
}

// Remove drops the account with the given id. The in-memory unit of work
// uses it to undo a registration that failed part way.
func (s *InMemory) Remove(_ context.Context, id domain.AccountID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, account := range s.accounts {
		if account.ID == id {
			delete(s.accounts, email)
			return
		}
	}
}
