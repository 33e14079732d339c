package testutil

import (
	"net/http"

	"nolatabs/pkg/domain"
	"nolatabs/pkg/requestcontext"
)

// WithAccountID adds a resolved account to the request context.
// This simulates what the account middleware does for protected routes.
// If accountID is not a valid UUID, it is not added.
func WithAccountID(req *http.Request, accountID string) *http.Request {
	parsed, err := domain.ParseAccountID(accountID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithAccountID(req.Context(), parsed))
}
