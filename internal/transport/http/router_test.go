package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityHandler "nolatabs/internal/identity/handler"
	identityService "nolatabs/internal/identity/service"
	identityStore "nolatabs/internal/identity/store"
	jwttoken "nolatabs/internal/jwt_token"
	"nolatabs/internal/platform/metrics"
	"nolatabs/internal/settings/codec"
	settingsHandler "nolatabs/internal/settings/handler"
	settingsService "nolatabs/internal/settings/service"
	settingsStore "nolatabs/internal/settings/store"
	"nolatabs/pkg/domain"
	"nolatabs/pkg/platform/middleware/request"
	"nolatabs/pkg/testutil"
)

const (
	secret   = "router-test-secret"
	issuer   = "https://issuer.example.com"
	audience = "nolatabs"
)

func newTestRouter(t *testing.T, env domain.Environment) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())

	accounts := identityStore.NewInMemory()
	prefs := settingsStore.NewInMemory()
	identity := identityService.New(env, accounts, identityService.NewInMemoryTx(accounts, prefs),
		identityService.WithLogger(logger), identityService.WithMetrics(m))
	settings := settingsService.New(prefs,
		settingsService.WithLogger(logger), settingsService.WithMetrics(m))

	return NewRouter(Deps{
		Logger:   logger,
		Metrics:  m,
		Verifier: jwttoken.NewHMACVerifier(secret, issuer, audience),
		Accounts: identity,
		Identity: identityHandler.New(identity, logger),
		Settings: settingsHandler.New(settings, logger, false),
	})
}

func token(t *testing.T, email string, verified bool) string {
	return testutil.SignAssertion(t, secret, testutil.Assertion{
		Subject:       "sub-" + email,
		Email:         email,
		EmailVerified: verified,
		Issuer:        issuer,
		Audience:      audience,
	})
}

func do(router http.Handler, req *http.Request, bearer string) *httptest.ResponseRecorder {
	if bearer != "" {
		testutil.WithBearer(req, bearer)
	}
	return testutil.DoRequest(router, req)
}

func TestPing(t *testing.T) {
	router := newTestRouter(t, domain.EnvironmentProduction)

	rr := do(router, testutil.NewRequest(t, http.MethodGet, "/ping"), "")
	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "Pong!", *testutil.UnmarshalResponse[string](t, rr))
	assert.NotEmpty(t, rr.Header().Get(request.HeaderRequestID))
}

func TestAccountLifecycle(t *testing.T) {
	router := newTestRouter(t, domain.EnvironmentProduction)
	bearer := token(t, "dev@example.com", true)

	testutil.Given(t, "an unregistered verified identity", func(t *testing.T) {
		testutil.When(t, "it calls a protected route", func(t *testing.T) {
			rr := do(router, testutil.NewRequest(t, http.MethodGet, "/auth/me"), bearer)
			testutil.Then(t, "the account is not found", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusNotFound)
				testutil.AssertNoBody(t, rr)
			})
		})
	})

	var accountID string
	testutil.When(t, "the identity registers", func(t *testing.T) {
		rr := do(router, testutil.NewRequest(t, http.MethodPost, "/auth/init"), bearer)
		testutil.AssertStatusOK(t, rr)
		accountID = *testutil.UnmarshalResponse[string](t, rr)
		_, err := domain.ParseAccountID(accountID)
		require.NoError(t, err)
	})

	testutil.Then(t, "registering again conflicts", func(t *testing.T) {
		rr := do(router, testutil.NewRequest(t, http.MethodPost, "/auth/init"), bearer)
		testutil.AssertStatus(t, rr, http.StatusConflict)
		testutil.AssertNoBody(t, rr)
	})

	testutil.Then(t, "me returns the registered account", func(t *testing.T) {
		rr := do(router, testutil.NewRequest(t, http.MethodGet, "/auth/me"), bearer)
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, accountID, *testutil.UnmarshalResponse[string](t, rr))
	})

	testutil.Then(t, "default settings are provisioned", func(t *testing.T) {
		rr := do(router, testutil.NewRequest(t, http.MethodGet, "/account/settings"), bearer)
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, codec.Wire{
			PreferredCommandStyle: "unix",
			AutoCommitBehaviour:   "off",
			AutoPullBehaviour:     "off",
			AutoPushBehaviour:     "off",
		}, *testutil.UnmarshalResponse[codec.Wire](t, rr))
	})

	testutil.Then(t, "an update is read back", func(t *testing.T) {
		update := codec.Wire{
			PreferredCommandStyle:   "plain-english",
			AutoCommitBehaviour:     "timer",
			AutoCommitTimerInterval: 500,
			AutoPullBehaviour:       "on",
			AutoPushBehaviour:       "count",
			AutoPushCountInterval:   100,
		}
		rr := do(router, testutil.NewJSONRequest(t, http.MethodPost, "/account/settings", update), bearer)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertNoBody(t, rr)

		rr = do(router, testutil.NewRequest(t, http.MethodGet, "/account/settings"), bearer)
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, update, *testutil.UnmarshalResponse[codec.Wire](t, rr))
	})

	testutil.Then(t, "malformed JSON is a bad request", func(t *testing.T) {
		rr := do(router, testutil.NewRequestWithBody(t, http.MethodPost, "/account/settings", "{not json"), bearer)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestAuthFailures(t *testing.T) {
	tests := []struct {
		name   string
		env    domain.Environment
		bearer func(t *testing.T) string
		method string
		path   string
		want   int
	}{
		{"no token on init", domain.EnvironmentProduction, func(*testing.T) string { return "" }, http.MethodPost, "/auth/init", http.StatusUnauthorized},
		{"garbage token on settings", domain.EnvironmentProduction, func(*testing.T) string { return "garbage" }, http.MethodGet, "/account/settings", http.StatusUnauthorized},
		{"no email on init", domain.EnvironmentProduction, func(t *testing.T) string { return token(t, "", true) }, http.MethodPost, "/auth/init", http.StatusUnauthorized},
		{"no email on me", domain.EnvironmentProduction, func(t *testing.T) string { return token(t, "", true) }, http.MethodGet, "/auth/me", http.StatusUnauthorized},
		{"unverified on init", domain.EnvironmentProduction, func(t *testing.T) string { return token(t, "a@example.com", false) }, http.MethodPost, "/auth/init", http.StatusForbidden},
		{"unverified on settings", domain.EnvironmentProduction, func(t *testing.T) string { return token(t, "a@example.com", false) }, http.MethodGet, "/account/settings", http.StatusForbidden},
		{"test account in production", domain.EnvironmentProduction, func(t *testing.T) string { return token(t, "ci@test.account", false) }, http.MethodPost, "/auth/init", http.StatusForbidden},
		{"test account in staging", domain.EnvironmentStaging, func(t *testing.T) string { return token(t, "ci@test.account", false) }, http.MethodPost, "/auth/init", http.StatusOK},
		{"expired token", domain.EnvironmentProduction, func(t *testing.T) string {
			return testutil.SignAssertion(t, secret, testutil.Assertion{Email: "a@example.com", EmailVerified: true, Issuer: issuer, Audience: audience, ExpiresIn: -time.Hour})
		}, http.MethodPost, "/auth/init", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.env)
			rr := do(router, testutil.NewRequest(t, tt.method, tt.path), tt.bearer(t))
			testutil.AssertStatus(t, rr, tt.want)
			if tt.want != http.StatusOK {
				testutil.AssertNoBody(t, rr)
			}
		})
	}
}
