package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	identityHandler "nolatabs/internal/identity/handler"
	identityService "nolatabs/internal/identity/service"
	identityStore "nolatabs/internal/identity/store"
	jwttoken "nolatabs/internal/jwt_token"
	"nolatabs/internal/platform/config"
	"nolatabs/internal/platform/httpserver"
	"nolatabs/internal/platform/logger"
	"nolatabs/internal/platform/metrics"
	"nolatabs/internal/platform/postgres"
	settingsHandler "nolatabs/internal/settings/handler"
	settingsService "nolatabs/internal/settings/service"
	settingsStore "nolatabs/internal/settings/store"
	httptransport "nolatabs/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies and owns the server lifecycle. Business
// logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	verifier, err := jwttoken.NewFromConfig(cfg.Identity)
	if err != nil {
		return err
	}

	stores, closeStores, err := buildStores(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStores()

	identity := identityService.New(cfg.Environment, stores.accounts, stores.tx,
		identityService.WithLogger(log),
		identityService.WithMetrics(m),
	)
	settings := settingsService.New(stores.settings,
		settingsService.WithLogger(log),
		settingsService.WithMetrics(m),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  m,
		Verifier: verifier,
		Accounts: identity,
		Identity: identityHandler.New(identity, log),
		Settings: settingsHandler.New(settings, log, cfg.Settings.StrictDecode),
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(ctx, "starting api server",
			"addr", cfg.Addr,
			"environment", cfg.Environment.String(),
		)
		return httpserver.Serve(ctx, httpserver.New(cfg.Addr, router), shutdownTimeout)
	})
	g.Go(func() error {
		log.InfoContext(ctx, "starting metrics server", "addr", cfg.MetricsAddr)
		return httpserver.Serve(ctx, httpserver.New(cfg.MetricsAddr, metricsMux), shutdownTimeout)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

type storeSet struct {
	accounts identityService.AccountStore
	settings settingsService.Store
	tx       identityService.AccountStoreTx
}

// buildStores opens Postgres when a database URL is configured and falls back
// to in-memory stores otherwise.
func buildStores(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (storeSet, func(), error) {
	if cfg.URL == "" {
		log.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
		accounts := identityStore.NewInMemory()
		settings := settingsStore.NewInMemory()
		return storeSet{
			accounts: accounts,
			settings: settings,
			tx:       identityService.NewInMemoryTx(accounts, settings),
		}, func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return storeSet{}, nil, fmt.Errorf("open database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return storeSet{}, nil, fmt.Errorf("migrate database: %w", err)
	}
	log.InfoContext(ctx, "connected to postgres", "driver", cfg.Driver)

	accounts := identityStore.NewPostgres(db)
	settings := settingsStore.NewPostgres(db)
	return storeSet{
		accounts: accounts,
		settings: settings,
		tx:       identityService.NewPostgresTx(db, accounts, settings),
	}, closer(db, log), nil
}

func closer(db *sql.DB, log *slog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}
}
