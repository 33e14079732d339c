package store

import (
	"context"
	"fmt"
	"sync"

	"nolatabs/internal/settings/models"
	"nolatabs/pkg/domain"
	"nolatabs/pkg/platform/sentinel"
)

// InMemory keeps preferences rows in a map. It stores the same flattened
// columns as PostgresStore so parameter retention behaves identically.
type InMemory struct {
	mu   sync.RWMutex
	rows map[domain.AccountID]columns
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[domain.AccountID]columns)}
}

func (s *InMemory) Create(_ context.Context, accountID domain.AccountID, prefs models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[accountID]; ok {
		return fmt.Errorf("create preferences: %w", sentinel.ErrDuplicateEntry)
	}
	s.rows[accountID] = flatten(prefs)
	return nil
}

func (s *InMemory) Update(_ context.Context, accountID domain.AccountID, prefs models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.rows[accountID]
	if !ok {
		return fmt.Errorf("update preferences: %w", sentinel.ErrNotFound)
	}
	s.rows[accountID] = merge(stored, flatten(prefs))
	return nil
}

func (s *InMemory) FindByAccount(_ context.Context, accountID domain.AccountID) (models.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.rows[accountID]
	if !ok {
		return models.Preferences{}, fmt.Errorf("find preferences: %w", sentinel.ErrNotFound)
	}
	return stored.inflate(), nil
}

// Remove drops a row. The in-memory unit of work uses it to undo a
// registration that failed after the row was written.
func (s *InMemory) Remove(_ context.Context, accountID domain.AccountID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, accountID)
}
