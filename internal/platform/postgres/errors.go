package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"nolatabs/pkg/platform/sentinel"
)

const (
	codeUniqueViolation   = "23505"
	codeAdminShutdown     = "57P01"
	codeCannotConnectNow  = "57P03"
	connectionClassPrefix = "08"
)

// Classify wraps a driver error with the storage kind it represents. Errors
// that already carry a kind are returned unchanged apart from the operation
// prefix.
//
// Uniqueness violations are recognised by SQLSTATE so callers never need a
// prior existence check.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if sentinel.Kind(err) != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, kindOf(err), err)
}

func kindOf(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if code, ok := sqlState(err); ok {
		switch {
		case code == codeUniqueViolation:
			return sentinel.ErrDuplicateEntry
		case strings.HasPrefix(code, connectionClassPrefix),
			code == codeAdminShutdown,
			code == codeCannotConnectNow:
			return sentinel.ErrConnection
		default:
			return sentinel.ErrQuery
		}
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return sentinel.ErrConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return sentinel.ErrConnection
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return sentinel.ErrConnection
	}
	return sentinel.ErrQuery
}

// sqlState extracts the SQLSTATE code from either supported driver.
func sqlState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}
