package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nolatabs/internal/identity/models"
	"nolatabs/internal/platform/middleware"
	"nolatabs/pkg/domain"
	dErrors "nolatabs/pkg/domain-errors"
	"nolatabs/pkg/platform/httputil"
	"nolatabs/pkg/platform/middleware/request"
	"nolatabs/pkg/requestcontext"
)

// Service defines the interface for identity operations.
type Service interface {
	Authorize(identity models.Identity) error
	Register(ctx context.Context, email string) (domain.AccountID, error)
}

// Handler serves the /auth routes.
type Handler struct {
	identity Service
	logger   *slog.Logger
}

func New(identity Service, logger *slog.Logger) *Handler {
	return &Handler{identity: identity, logger: logger}
}

// RegisterInit mounts POST /auth/init on a router that verifies the identity
// assertion but does not require an account.
func (h *Handler) RegisterInit(r chi.Router) {
	r.Post("/auth/init", h.handleInit)
}

// RegisterAccountRoutes mounts the routes that need a resolved account.
func (h *Handler) RegisterAccountRoutes(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
}

// handleInit provisions the account for a trusted identity and returns its id.
func (h *Handler) handleInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(r)

	identity, ok := middleware.GetIdentity(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "identity missing from context despite identity middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeAuthentication, "identity required"))
		return
	}
	if err := h.identity.Authorize(identity); err != nil {
		h.logger.WarnContext(ctx, "registration refused",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	accountID, err := h.identity.Register(ctx, identity.Email)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.write(ctx, w, accountID)
}

// handleMe returns the account resolved by the account middleware.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := requestcontext.AccountID(ctx)
	if accountID.IsNil() {
		h.logger.ErrorContext(ctx, "account missing from context despite account middleware",
			"request_id", request.GetRequestID(r),
			"email", requestcontext.Email(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnknown, "account context error"))
		return
	}
	h.write(ctx, w, accountID)
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, accountID domain.AccountID) {
	if err := httputil.WriteJSON(w, http.StatusOK, accountID.String()); err != nil {
		h.logger.ErrorContext(ctx, "failed to write account response",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
