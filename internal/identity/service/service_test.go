package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AccountStore,SettingsCreator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nolatabs/internal/identity/models"
	"nolatabs/internal/identity/service/mocks"
	"nolatabs/internal/platform/metrics"
	settingsModels "nolatabs/internal/settings/models"
	"nolatabs/pkg/domain"
	dErrors "nolatabs/pkg/domain-errors"
	"nolatabs/pkg/platform/sentinel"
)

// passthroughTx runs the unit of work against the mocked stores directly.
type passthroughTx struct {
	stores TxStores
}

func (p passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error {
	return fn(ctx, p.stores)
}

type ServiceSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockAccounts *mocks.MockAccountStore
	mockSettings *mocks.MockSettingsCreator
	metrics      *metrics.Metrics
	service      *Service
	now          time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockAccounts = mocks.NewMockAccountStore(s.ctrl)
	s.mockSettings = mocks.NewMockSettingsCreator(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.service = New(
		domain.EnvironmentProduction,
		s.mockAccounts,
		passthroughTx{stores: TxStores{Accounts: s.mockAccounts, Settings: s.mockSettings}},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestAuthorize() {
	s.Run("missing email is an authentication failure", func() {
		err := s.service.Authorize(models.Identity{Subject: "sub"})
		s.True(dErrors.HasCode(err, dErrors.CodeAuthentication))
	})

	s.Run("unverified email is an authorization failure", func() {
		err := s.service.Authorize(models.Identity{Email: "a@example.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeAuthorization))
	})

	s.Run("test account is not trusted in production", func() {
		err := s.service.Authorize(models.Identity{Email: "a@test.account"})
		s.True(dErrors.HasCode(err, dErrors.CodeAuthorization))
	})

	s.Run("verified email is accepted", func() {
		s.NoError(s.service.Authorize(models.Identity{Email: "a@example.com", EmailVerified: true}))
	})
}

func (s *ServiceSuite) TestRegister() {
	ctx := context.Background()

	s.Run("creates account then default preferences", func() {
		var created *models.Account
		gomock.InOrder(
			s.mockAccounts.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, a *models.Account) error {
					created = a
					return nil
				}),
			s.mockSettings.EXPECT().Create(gomock.Any(), gomock.Any(), settingsModels.Default()).Return(nil),
		)

		accountID, err := s.service.Register(ctx, "new@example.com")
		s.Require().NoError(err)
		s.Require().NotNil(created)
		s.Equal(created.ID, accountID)
		s.Equal("new@example.com", created.Email)
		s.Equal(s.now, created.CreatedAt)
		s.False(accountID.IsNil())
	})

	s.Run("duplicate email is a repository conflict", func() {
		s.mockAccounts.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("create account: %w", sentinel.ErrDuplicateEntry))

		_, err := s.service.Register(ctx, "taken@example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeRepository))
		s.ErrorIs(err, sentinel.ErrDuplicateEntry)
	})

	s.Run("preferences failure is reported with its storage kind", func() {
		s.mockAccounts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockSettings.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("create preferences: %w", sentinel.ErrConnection))

		_, err := s.service.Register(ctx, "broken@example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeRepository))
		s.ErrorIs(err, sentinel.ErrConnection)
	})

	s.Run("unclassified failure is unknown", func() {
		s.mockAccounts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("boom"))

		_, err := s.service.Register(ctx, "odd@example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeUnknown))
	})
}

func (s *ServiceSuite) TestResolve() {
	ctx := context.Background()

	s.Run("returns the account id", func() {
		account := &models.Account{ID: domain.AccountID(uuid.New()), Email: "a@example.com"}
		s.mockAccounts.EXPECT().FindByEmail(gomock.Any(), "a@example.com").Return(account, nil)

		accountID, err := s.service.Resolve(ctx, "a@example.com")
		s.Require().NoError(err)
		s.Equal(account.ID, accountID)
	})

	s.Run("missing account is not found", func() {
		s.mockAccounts.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").
			Return(nil, fmt.Errorf("find account by email: %w", sentinel.ErrNotFound))

		_, err := s.service.Resolve(ctx, "ghost@example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeRepository))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("storage failure is distinct from not found", func() {
		s.mockAccounts.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("find account by email: %w", sentinel.ErrQuery))

		_, err := s.service.Resolve(ctx, "a@example.com")
		s.ErrorIs(err, sentinel.ErrQuery)
		s.NotErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestMetrics() {
	ctx := context.Background()
	s.mockAccounts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.mockSettings.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.mockAccounts.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("create account: %w", sentinel.ErrDuplicateEntry))

	_, err := s.service.Register(ctx, "a@example.com")
	s.Require().NoError(err)
	_, err = s.service.Register(ctx, "a@example.com")
	s.Require().Error(err)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.AccountsRegistered))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RegistrationConflicts))
}

func TestIsTrusted(t *testing.T) {
	tests := []struct {
		name     string
		env      domain.Environment
		email    string
		verified bool
		want     bool
	}{
		{"verified in production", domain.EnvironmentProduction, "a@example.com", true, true},
		{"unverified in production", domain.EnvironmentProduction, "a@example.com", false, false},
		{"test account in production", domain.EnvironmentProduction, "a@test.account", false, false},
		{"verified test account in production", domain.EnvironmentProduction, "a@test.account", true, true},
		{"test account in staging", domain.EnvironmentStaging, "a@test.account", false, true},
		{"test account in testing", domain.EnvironmentTesting, "a@test.account", false, true},
		{"test account in development", domain.EnvironmentDevelopment, "a@test.account", false, true},
		{"unverified in development", domain.EnvironmentDevelopment, "a@example.com", false, false},
		{"suffix must be at the end", domain.EnvironmentDevelopment, "a@test.account.example.com", false, false},
		{"suffix is case sensitive", domain.EnvironmentDevelopment, "a@TEST.ACCOUNT", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTrusted(tt.env, tt.email, tt.verified))
		})
	}
}
