//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"nolatabs/internal/platform/config"
	"nolatabs/internal/platform/postgres"
)

// PostgresContainer wraps a testcontainers Postgres instance with the schema
// applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts Postgres and migrates the schema. When
// POSTGRES_TEST_DSN is set the existing database is used instead.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()
	pc := &PostgresContainer{DSN: os.Getenv("POSTGRES_TEST_DSN")}

	if pc.DSN == "" {
		container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("nolatabs_test"),
			tcpostgres.WithUsername("nolatabs"),
			tcpostgres.WithPassword("nolatabs"),
			tcpostgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			t.Fatalf("failed to get postgres connection string: %v", err)
		}
		pc.Container = container
		pc.DSN = dsn
	}

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: pc.DSN, Driver: "pgx", MaxOpenConns: 20, MaxIdleConns: 5})
	if err != nil {
		pc.terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		pc.terminate(ctx)
		t.Fatalf("failed to migrate postgres: %v", err)
	}
	pc.DB = db

	// The container is shared across suites by the Manager; Ryuk removes it.
	return pc
}

// TruncateTables empties the given tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")))
	return err
}

func (p *PostgresContainer) terminate(ctx context.Context) {
	if p.Container != nil {
		_ = p.Container.Terminate(ctx)
	}
}
