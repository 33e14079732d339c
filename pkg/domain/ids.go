package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "nolatabs/pkg/domain-errors"
)

// AccountID identifies an internal account. It is a distinct type so account
// ids cannot be confused with request ids or other UUIDs at compile time.
type AccountID uuid.UUID

// NewAccountID returns a fresh random id.
func NewAccountID() AccountID {
	return AccountID(uuid.New())
}

// ParseAccountID constructs an AccountID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed, or the
// nil UUID.
func ParseAccountID(s string) (AccountID, error) {
	if strings.TrimSpace(s) == "" {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid account id")
	}
	if u == uuid.Nil {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account id cannot be nil")
	}
	return AccountID(u), nil
}

func (id AccountID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero value.
func (id AccountID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}
