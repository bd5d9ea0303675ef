package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	ballotengine "clubvote/contexts/club-elections/ballot-engine"
	ballotmetrics "clubvote/contexts/club-elections/ballot-engine/adapters/metrics"
	ballotnotify "clubvote/contexts/club-elections/ballot-engine/adapters/notify"
	postgresadapter "clubvote/contexts/club-elections/ballot-engine/adapters/postgres"
	"clubvote/contexts/club-elections/ballot-engine/adapters/receipts"
	"clubvote/contexts/club-elections/ballot-engine/application/commands"
	workerapp "clubvote/contexts/club-elections/ballot-engine/application/workers"
	"clubvote/internal/platform/config"
	"clubvote/internal/platform/db"
	"clubvote/internal/platform/httpserver"
	"clubvote/internal/platform/messaging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const eventDedupTTL = 7 * 24 * time.Hour

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	bus           *messaging.Bus
	outboxRelay   workerapp.OutboxRelay
	notifications workerapp.NotificationDispatcher
	approvals     workerapp.ApplicationApprovedConsumer
	pollInterval  time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	pg, repo, err := connectLedger(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	telemetry, err := ballotmetrics.NewTelemetry(registry)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	module := ballotengine.NewModule(ballotengine.Dependencies{
		Ledger:    repo,
		Reader:    repo,
		Receipts:  receipts.Issuer{},
		Clock:     postgresadapter.SystemClock{},
		IDGen:     postgresadapter.UUIDGenerator{},
		Telemetry: telemetry,
		Logger:    logger,
	})

	server := httpserver.New(module, registry, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	pg, repo, err := connectLedger(cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(cfg.KafkaBrokers, logger)
	clock := postgresadapter.SystemClock{}
	roster := commands.RosterUseCase{
		Ledger: repo,
		Clock:  clock,
		IDGen:  postgresadapter.UUIDGenerator{},
		Logger: logger,
	}

	return &WorkerApp{
		postgres: pg,
		bus:      bus,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     clock,
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		notifications: workerapp.NotificationDispatcher{
			Subscriber: bus,
			Dedup:      repo,
			Notifier:   ballotnotify.LogNotifier{Logger: logger},
			Clock:      clock,
			DedupTTL:   eventDedupTTL,
			Disabled:   !cfg.EnableBallotNotifications,
			Logger:     logger,
		},
		approvals: workerapp.ApplicationApprovedConsumer{
			Subscriber: bus,
			Dedup:      repo,
			Roster:     roster,
			Clock:      clock,
			DedupTTL:   eventDedupTTL,
			Disabled:   !cfg.EnableBallotAutoPromotion,
			Logger:     logger,
		},
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}, nil
}

func connectLedger(cfg config.Config, logger *slog.Logger) (*db.Postgres, *postgresadapter.Repository, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	repo := postgresadapter.NewRepository(pg.DB, logger, postgresadapter.WithLockTimeout(cfg.LedgerLockTimeout))
	return pg, repo, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Run(ctx)
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run starts the consumers and relays the outbox every poll interval until
// ctx is cancelled. It returns after every subscriber goroutine has exited.
func (w *WorkerApp) Run(ctx context.Context) error {
	defer w.bus.Wait()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(runCtx)

	if err := w.notifications.Start(groupCtx); err != nil {
		return err
	}
	if err := w.approvals.Start(groupCtx); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	group.Go(func() error {
		return relayLoop(groupCtx, w.outboxRelay, w.pollInterval)
	})
	err := group.Wait()
	w.bus.Close()
	return err
}

func relayLoop(ctx context.Context, relay workerapp.OutboxRelay, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := relay.RunOnce(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
