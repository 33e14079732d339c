package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	identityHandler "nolatabs/internal/identity/handler"
	"nolatabs/internal/platform/metrics"
	"nolatabs/internal/platform/middleware"
	settingsHandler "nolatabs/internal/settings/handler"
	"nolatabs/pkg/platform/httputil"
	"nolatabs/pkg/platform/middleware/metadata"
	"nolatabs/pkg/platform/middleware/request"
	"nolatabs/pkg/platform/middleware/requesttime"
)

const defaultRequestTimeout = 30 * time.Second

// Deps are the collaborators the router wires together.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Verifier       middleware.IdentityVerifier
	Accounts       middleware.AccountResolver
	Identity       *identityHandler.Handler
	Settings       *settingsHandler.Handler
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints. /ping is open; /auth/init needs a
// verified identity; everything else also needs a registered account.
func NewRouter(d Deps) http.Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.LatencyMiddleware(d.Metrics))
	r.Use(chimw.Timeout(timeout))

	r.Get("/ping", handlePing)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdentity(d.Verifier, d.Logger))
		d.Identity.RegisterInit(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAccount(d.Accounts, d.Logger))
			d.Identity.RegisterAccountRoutes(r)
			d.Settings.Register(r)
		})
	})

	return r
}

func handlePing(w http.ResponseWriter, _ *http.Request) {
	_ = httputil.WriteJSON(w, http.StatusOK, "Pong!")
}
