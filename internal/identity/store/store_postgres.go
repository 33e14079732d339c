package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"nolatabs/internal/identity/models"
	"nolatabs/internal/platform/postgres"
	"nolatabs/pkg/domain"
	"nolatabs/pkg/platform/tx"
)

// PostgresStore persists accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the account. A taken email surfaces as
// sentinel.ErrDuplicateEntry from the unique constraint; there is no prior
// existence check to race with.
func (s *PostgresStore) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(account.ID),
		account.Email,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return postgres.Classify("create account", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	var account models.Account
	var id uuid.UUID
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, query, email).Scan(
		&id,
		&account.Email,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.Classify("find account by email", err)
	}
	account.ID = domain.AccountID(id)
	return &account, nil
}
