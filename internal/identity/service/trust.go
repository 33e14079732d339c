package service

import (
	"strings"

	"nolatabs/internal/identity/models"
	"nolatabs/pkg/domain"
)

// IsTrusted decides whether an asserted email is accepted without further
// verification: always when the provider verified it, and for reserved test
// addresses outside production.
func IsTrusted(env domain.Environment, email string, emailVerified bool) bool {
	if emailVerified {
		return true
	}
	return strings.HasSuffix(email, models.TestAccountSuffix) && !env.IsProduction()
}
