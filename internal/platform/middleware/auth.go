package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"nolatabs/internal/identity/models"
	"nolatabs/pkg/domain"
	"nolatabs/pkg/platform/httputil"
	"nolatabs/pkg/platform/sentinel"
	"nolatabs/pkg/requestcontext"
)

// IdentityVerifier validates a bearer identity assertion.
type IdentityVerifier interface {
	Verify(token string) (models.Identity, error)
}

// AccountResolver applies the trust policy and maps a trusted email to its
// account.
type AccountResolver interface {
	Authorize(identity models.Identity) error
	Resolve(ctx context.Context, email string) (domain.AccountID, error)
}

type contextKeyIdentity struct{}

// GetIdentity retrieves the verified assertion placed by RequireIdentity.
func GetIdentity(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(contextKeyIdentity{}).(models.Identity)
	return identity, ok
}

// WithIdentity injects a verified assertion into a context.
// Useful for handler tests that skip token verification.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity{}, identity)
}

// RequireIdentity rejects requests without a valid bearer assertion with a
// bare 401.
func RequireIdentity(verifier IdentityVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing assertion",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			identity, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid assertion",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

// RequireAccount resolves the caller's account. It must run after
// RequireIdentity. Missing email is 401, an untrusted email 403, an
// unregistered one 404 and a storage failure 500.
func RequireAccount(resolver AccountResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			identity, ok := GetIdentity(ctx)
			if !ok {
				logger.ErrorContext(ctx, "identity missing from context despite identity middleware",
					"request_id", requestID,
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if err := resolver.Authorize(identity); err != nil {
				logger.WarnContext(ctx, "identity rejected", "request_id", requestID, "error", err)
				httputil.WriteError(w, err)
				return
			}

			accountID, err := resolver.Resolve(ctx, identity.Email)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					logger.InfoContext(ctx, "no account for identity", "request_id", requestID)
				} else {
					logger.ErrorContext(ctx, "failed to resolve account", "request_id", requestID, "error", err)
				}
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithEmail(ctx, identity.Email)
			ctx = requestcontext.WithAccountID(ctx, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
