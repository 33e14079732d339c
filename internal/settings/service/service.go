package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nolatabs/internal/platform/metrics"
	"nolatabs/internal/settings/models"
	"nolatabs/pkg/domain"
	dErrors "nolatabs/pkg/domain-errors"
	"nolatabs/pkg/platform/sentinel"
)

type Store interface {
	FindByAccount(ctx context.Context, accountID domain.AccountID) (models.Preferences, error)
	Update(ctx context.Context, accountID domain.AccountID, prefs models.Preferences) error
}

// Service reads and replaces an account's preferences.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("nolatabs/settings"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored preferences for accountID.
func (s *Service) Get(ctx context.Context, accountID domain.AccountID) (models.Preferences, error) {
	ctx, span := s.tracer.Start(ctx, "settings.Get",
		trace.WithAttributes(attribute.String("account.id", accountID.String())))
	defer span.End()

	prefs, err := s.store.FindByAccount(ctx, accountID)
	if err != nil {
		s.fail(ctx, span, "get", err)
		return models.Preferences{}, dErrors.FromStore(err, "failed to load preferences")
	}
	return prefs, nil
}

// Update replaces the preferences for accountID. Behaviour kinds are always
// replaced; zero parameters leave the stored parameter untouched.
func (s *Service) Update(ctx context.Context, accountID domain.AccountID, prefs models.Preferences) error {
	ctx, span := s.tracer.Start(ctx, "settings.Update",
		trace.WithAttributes(attribute.String("account.id", accountID.String())))
	defer span.End()

	if err := s.store.Update(ctx, accountID, prefs.Normalize()); err != nil {
		s.fail(ctx, span, "update", err)
		return dErrors.FromStore(err, "failed to update preferences")
	}
	if s.metrics != nil {
		s.metrics.IncrementSettingsUpdated()
	}
	return nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) {
	if errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "preferences not found", "operation", op)
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	s.logger.ErrorContext(ctx, "preferences store failure", "operation", op, "error", err)
	if s.metrics != nil {
		kind := "unknown"
		if k := sentinel.Kind(err); k != nil {
			kind = k.Error()
		}
		s.metrics.IncrementStoreFailure("settings_"+op, kind)
	}
}
