package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"nolatabs/internal/platform/postgres"
	"nolatabs/internal/settings/models"
	"nolatabs/pkg/domain"
	"nolatabs/pkg/platform/sentinel"
	"nolatabs/pkg/platform/tx"
)

// PostgresStore persists one preferences row per account. Statements run on
// the transaction carried by the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed preferences store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, accountID domain.AccountID, prefs models.Preferences) error {
	c := flatten(prefs)
	query := `
		INSERT INTO account_preferences (
			account_id, command_style,
			commit_option, commit_interval_ms, commit_count,
			pull_option, pull_interval_ms,
			push_option, push_interval_ms, push_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(accountID), c.CommandStyle,
		c.CommitOption, c.CommitIntervalMS, c.CommitCount,
		c.PullOption, c.PullIntervalMS,
		c.PushOption, c.PushIntervalMS, c.PushCount,
	)
	if err != nil {
		return postgres.Classify("create preferences", err)
	}
	return nil
}

// Update replaces the row. Parameter columns use COALESCE so a NULL argument
// keeps the stored value; see merge for the rule.
func (s *PostgresStore) Update(ctx context.Context, accountID domain.AccountID, prefs models.Preferences) error {
	c := flatten(prefs)
	query := `
		UPDATE account_preferences SET
			command_style      = $2,
			commit_option      = $3,
			commit_interval_ms = COALESCE($4, commit_interval_ms),
			commit_count       = COALESCE($5, commit_count),
			pull_option        = $6,
			pull_interval_ms   = COALESCE($7, pull_interval_ms),
			push_option        = $8,
			push_interval_ms   = COALESCE($9, push_interval_ms),
			push_count         = COALESCE($10, push_count),
			updated_at         = NOW()
		WHERE account_id = $1
	`
	result, err := tx.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(accountID), c.CommandStyle,
		c.CommitOption, c.CommitIntervalMS, c.CommitCount,
		c.PullOption, c.PullIntervalMS,
		c.PushOption, c.PushIntervalMS, c.PushCount,
	)
	if err != nil {
		return postgres.Classify("update preferences", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return postgres.Classify("update preferences rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("update preferences: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindByAccount(ctx context.Context, accountID domain.AccountID) (models.Preferences, error) {
	query := `
		SELECT command_style,
			commit_option, commit_interval_ms, commit_count,
			pull_option, pull_interval_ms,
			push_option, push_interval_ms, push_count
		FROM account_preferences
		WHERE account_id = $1
	`
	var c columns
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(accountID)).Scan(
		&c.CommandStyle,
		&c.CommitOption, &c.CommitIntervalMS, &c.CommitCount,
		&c.PullOption, &c.PullIntervalMS,
		&c.PushOption, &c.PushIntervalMS, &c.PushCount,
	)
	if err != nil {
		return models.Preferences{}, postgres.Classify("find preferences", err)
	}
	return c.inflate(), nil
}
