package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nolatabs/internal/identity/models"
	"nolatabs/internal/platform/metrics"
	settingsModels "nolatabs/internal/settings/models"
	"nolatabs/pkg/domain"
	dErrors "nolatabs/pkg/domain-errors"
	"nolatabs/pkg/platform/sentinel"
	"nolatabs/pkg/requestcontext"
)

type (
	accountModel = models.Account
	preferences  = settingsModels.Preferences
)

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

type SettingsCreator interface {
	Create(ctx context.Context, accountID domain.AccountID, prefs settingsModels.Preferences) error
}

// Service resolves asserted identities to accounts and provisions new ones.
type Service struct {
	env      domain.Environment
	accounts AccountStore
	tx       AccountStoreTx
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
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

// WithClock overrides the request-scoped time used for account timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a Service for the given environment.
func New(env domain.Environment, accounts AccountStore, tx AccountStoreTx, opts ...Option) *Service {
	s := &Service{
		env:      env,
		accounts: accounts,
		tx:       tx,
		logger:   slog.Default(),
		tracer:   otel.Tracer("nolatabs/identity"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authorize applies the trust policy to an asserted identity. A missing
// email is an authentication failure; an untrusted one an authorization
// failure.
func (s *Service) Authorize(identity models.Identity) error {
	if !identity.HasEmail() {
		return dErrors.New(dErrors.CodeAuthentication, "identity assertion has no email")
	}
	if !IsTrusted(s.env, identity.Email, identity.EmailVerified) {
		return dErrors.New(dErrors.CodeAuthorization, "email is not trusted")
	}
	return nil
}

// Register creates the account and its default preferences in one unit of
// work. The caller must have applied the trust policy. A second registration
// of the same email fails with a repository error wrapping
// sentinel.ErrDuplicateEntry.
func (s *Service) Register(ctx context.Context, email string) (domain.AccountID, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Register")
	defer span.End()

	now := requestcontext.Now(ctx)
	if s.now != nil {
		now = s.now()
	}
	account := models.NewAccount(email, now)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores TxStores) error {
		if err := stores.Accounts.Create(ctx, account); err != nil {
			return err
		}
		return stores.Settings.Create(ctx, account.ID, settingsModels.Default())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "register failed")
		if errors.Is(err, sentinel.ErrDuplicateEntry) {
			s.logger.InfoContext(ctx, "registration rejected, email already registered")
			if s.metrics != nil {
				s.metrics.IncrementRegistrationConflicts()
			}
			return domain.AccountID{}, dErrors.FromStore(err, "email already registered")
		}
		s.logger.ErrorContext(ctx, "failed to register account", "error", err)
		s.recordStoreFailure("register", err)
		return domain.AccountID{}, dErrors.FromStore(err, "failed to register account")
	}

	span.SetAttributes(attribute.String("account.id", account.ID.String()))
	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID.String())
	if s.metrics != nil {
		s.metrics.IncrementAccountsRegistered()
	}
	return account.ID, nil
}

// Resolve looks up the account for email. A missing account is a repository
// error wrapping sentinel.ErrNotFound, distinct from storage failures.
func (s *Service) Resolve(ctx context.Context, email string) (domain.AccountID, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Resolve")
	defer span.End()

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.AccountID{}, dErrors.FromStore(err, "account not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		s.logger.ErrorContext(ctx, "failed to resolve account", "error", err)
		s.recordStoreFailure("resolve", err)
		return domain.AccountID{}, dErrors.FromStore(err, "failed to resolve account")
	}
	span.SetAttributes(attribute.String("account.id", account.ID.String()))
	return account.ID, nil
}

func (s *Service) recordStoreFailure(op string, err error) {
	if s.metrics == nil {
		return
	}
	kind := "unknown"
	if k := sentinel.Kind(err); k != nil {
		kind = k.Error()
	}
	s.metrics.IncrementStoreFailure(op, kind)
}
