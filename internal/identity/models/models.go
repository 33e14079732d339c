package models

import (
	"strings"
	"time"

	"nolatabs/pkg/domain"
)

// TestAccountSuffix marks addresses that may skip provider verification
// outside production.
const TestAccountSuffix = "@test.account"

// Account is an internal account provisioned from a trusted identity.
type Account struct {
	ID        domain.AccountID
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount builds an account with a fresh id. The email is kept exactly as
// asserted; uniqueness is case-sensitive.
func NewAccount(email string, now time.Time) *Account {
	return &Account{
		ID:        domain.NewAccountID(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Identity is the externally asserted identity carried by the bearer token.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
}

// HasEmail reports whether the assertion named an email address.
func (i Identity) HasEmail() bool {
	return strings.TrimSpace(i.Email) != ""
}
