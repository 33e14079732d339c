package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nolatabs/internal/settings/codec"
	"nolatabs/internal/settings/models"
	"nolatabs/pkg/domain"
	dErrors "nolatabs/pkg/domain-errors"
	"nolatabs/pkg/platform/httputil"
	"nolatabs/pkg/platform/middleware/request"
	"nolatabs/pkg/requestcontext"
)

// Service defines the interface for settings operations.
type Service interface {
	Get(ctx context.Context, accountID domain.AccountID) (models.Preferences, error)
	Update(ctx context.Context, accountID domain.AccountID, prefs models.Preferences) error
}

// Handler serves /account/settings.
type Handler struct {
	settings     Service
	logger       *slog.Logger
	strictDecode bool
}

// New creates a settings Handler. With strictDecode, unknown discriminants
// are rejected with 400 instead of falling back to defaults.
func New(settings Service, logger *slog.Logger, strictDecode bool) *Handler {
	return &Handler{
		settings:     settings,
		logger:       logger,
		strictDecode: strictDecode,
	}
}

// Register mounts the routes on r. r must already resolve the account.
func (h *Handler) Register(r chi.Router) {
	r.Get("/account/settings", h.handleGetSettings)
	r.Post("/account/settings", h.handleUpdateSettings)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := requestcontext.AccountID(ctx)

	prefs, err := h.settings.Get(ctx, accountID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load settings",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, codec.Encode(prefs)); err != nil {
		h.logger.ErrorContext(ctx, "failed to write settings response",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(r)
	accountID := requestcontext.AccountID(ctx)

	var wire codec.Wire
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		h.logger.WarnContext(ctx, "invalid settings request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	prefs := codec.Decode(wire)
	if h.strictDecode {
		var err error
		if prefs, err = codec.DecodeStrict(wire); err != nil {
			h.logger.WarnContext(ctx, "rejected settings request",
				"request_id", requestID,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
	}

	if err := h.settings.Update(ctx, accountID, prefs); err != nil {
		h.logger.WarnContext(ctx, "failed to update settings",
			"request_id", requestID,
			"account_id", accountID.String(),
			"email", requestcontext.Email(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "settings updated",
		"request_id", requestID,
		"email", requestcontext.Email(ctx),
	)
	w.WriteHeader(http.StatusOK)
}
