package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	redisv9 "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/arc-self/git-domain/pkg/ack"
	"github.com/arc-self/git-domain/pkg/analyticsrunner"
	"github.com/arc-self/git-domain/pkg/commandhandlers"
	"github.com/arc-self/git-domain/pkg/core/config"
	coremiddleware "github.com/arc-self/git-domain/pkg/core/middleware"
	"github.com/arc-self/git-domain/pkg/core/natsclient"
	"github.com/arc-self/git-domain/pkg/core/telemetry"
	"github.com/arc-self/git-domain/pkg/dispatcher"
	"github.com/arc-self/git-domain/pkg/eventlog"
	"github.com/arc-self/git-domain/pkg/projection"
	"github.com/arc-self/git-domain/pkg/publisher"
	"github.com/arc-self/git-domain/pkg/query"
	"github.com/arc-self/git-domain/pkg/supervision"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.LoadDomainConfig()
	if err := cfg.ApplyVaultOverrides(); err != nil {
		logger.Warn("Vault secrets unavailable, using environment defaults", zap.Error(err))
	}

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint != "" {
		tp, err := telemetry.InitTracer(context.Background(), cfg.ServiceName, otelEndpoint)
		if err != nil {
			logger.Error("failed to init OTel tracer", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}

		mp, err := telemetry.InitMeterProvider(context.Background(), cfg.ServiceName, otelEndpoint)
		if err != nil {
			logger.Error("failed to init OTel meter provider", zap.Error(err))
		} else {
			defer mp.Shutdown(context.Background())
		}
	}

	// ── NATS / JetStream ────────────────────────────────────────────────
	client, err := natsclient.NewClient(cfg.NatsURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer client.Close()

	if err := client.ProvisionStreams(); err != nil {
		logger.Fatal("failed to provision JetStream streams", zap.Error(err))
	}

	pub := publisher.New(client.JS, logger)
	log := eventlog.New(client, pub)

	// ── Redis (read-through cache for the query layer) ─────────────────
	rdb := redisv9.NewClient(&redisv9.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	// ── Projections ──────────────────────────────────────────────────────
	statsProjection := projection.NewRepositoryStatsProjection()
	listProjection := projection.NewRepositoryListProjection()
	historyProjection := projection.NewCommitHistoryProjection()
	branchProjection := projection.NewBranchStatusProjection()
	fileProjection := projection.NewFileChangeProjection()

	engine := projection.New(client, log.GetEventsAfter, cfg.ProjectionGroup)
	engine.Register(statsProjection)
	engine.Register(listProjection)
	engine.Register(historyProjection)
	engine.Register(branchProjection)
	engine.Register(fileProjection)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.StartAll(ctx); err != nil {
		logger.Fatal("failed to start projection engine", zap.Error(err))
	}

	// ── Command dispatcher ──────────────────────────────────────────────
	instanceID := uuid.New().String()
	acker := ack.NewPublisher(client.Conn, instanceID)
	disp := dispatcher.New(client, acker, "git_domain_dispatch", instanceID)
	commandhandlers.New(log).Register(disp)

	if err := disp.Start(ctx); err != nil {
		logger.Fatal("failed to start command dispatcher", zap.Error(err))
	}

	// ── Service supervision: heartbeat + health endpoint ────────────────
	supervisor := supervision.New(client.Conn, supervision.ServiceInfo{
		ID:        instanceID,
		Name:      cfg.ServiceName,
		Version:   cfg.ServiceVersion,
		Endpoints: []string{"git.>"},
		Metadata:  map[string]string{"projection_group": cfg.ProjectionGroup},
	}, logger)
	supervisor.RegisterCheck("nats_connection", supervision.NatsConnectionCheck{Conn: client.Conn})

	statusAdapter := func() map[string]supervision.ProjectionStatus {
		src := engine.StatusAll()
		out := make(map[string]supervision.ProjectionStatus, len(src))
		for name, st := range src {
			out[name] = supervision.ProjectionStatus{Name: st.Name, Position: st.Position, IsRunning: st.IsRunning}
		}
		return out
	}
	latestSeq := func(ctx context.Context) (uint64, error) {
		info, err := log.Info()
		if err != nil {
			return 0, err
		}
		return info.LastSeq, nil
	}
	lagCheck := supervision.NewProjectionLagCheck(statusAdapter, latestSeq, supervision.DefaultLagThresholds(), logger)
	supervisor.RegisterCheck("projection_lag", lagCheck)

	if err := supervisor.Start(ctx); err != nil {
		logger.Fatal("failed to start supervision", zap.Error(err))
	}

	sweep, err := supervision.NewProjectionLagSweep(lagCheck, cfg.LagSweepCron, logger)
	if err != nil {
		logger.Fatal("failed to schedule projection lag sweep", zap.Error(err))
	}
	sweep.Start()
	defer sweep.Stop()

	// ── Periodic batch analytics ─────────────────────────────────────────
	analyticsJob := analyticsrunner.New(log, listProjection, historyProjection, fileProjection, logger)
	if err := analyticsJob.Start(cfg.AnalyticsCron); err != nil {
		logger.Fatal("failed to schedule analytics runner", zap.Error(err))
	}
	defer analyticsJob.Stop()

	// ── HTTP query surface ────────────────────────────────────────────
	e := echo.New()
	e.HideBanner = true
	e.Use(otelecho.Middleware(cfg.ServiceName))
	e.Use(middleware.Recover())
	e.Use(coremiddleware.RequestContext())
	e.Use(coremiddleware.NullToEmptyArray())
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	queryHandler := query.NewHandler(query.Projections{
		Stats:   statsProjection,
		List:    listProjection,
		History: historyProjection,
		Branch:  branchProjection,
		File:    fileProjection,
	}, func() map[string]projection.Status { return engine.StatusAll() }, rdb, logger).
		WithDiscovery(supervision.NewDiscovery(client.Conn)).
		WithEventLog(log)
	queryHandler.Register(e)

	go func() {
		logger.Info("git-domain-service HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failure", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("initiating graceful shutdown")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown error", zap.Error(err))
	}
	logger.Info("git-domain-service shut down cleanly")
}
