// Package main is the entry point for the matchmaking core API server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure matching, trust, and filter workflow logic
// - Application: use case orchestration (Commands/Queries/Event handlers)
// - Infrastructure: PostgreSQL, Redis, push gateway, notification service
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tradepals/match-core/config"
	"github.com/tradepals/match-core/internal/application/command"
	"github.com/tradepals/match-core/internal/application/eventhandler"
	"github.com/tradepals/match-core/internal/application/query"
	"github.com/tradepals/match-core/internal/domain/matching"
	"github.com/tradepals/match-core/internal/domain/notification"
	"github.com/tradepals/match-core/internal/domain/shared"
	"github.com/tradepals/match-core/internal/domain/trust"
	"github.com/tradepals/match-core/internal/infrastructure/messaging"
	"github.com/tradepals/match-core/internal/infrastructure/persistence/postgres"
	"github.com/tradepals/match-core/internal/infrastructure/persistence/redis"
	"github.com/tradepals/match-core/internal/infrastructure/service"
	httpserver "github.com/tradepals/match-core/internal/interface/http"
	"github.com/tradepals/match-core/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupSlog(cfg)
	httpLog := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	log.Info("starting match-core",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.Migrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis...")
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns

	redisCache, err := redis.NewCache(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection...")
		_ = redisCache.Close()
	}()
	log.Info("Redis connection established")

	historyCache := redis.NewMatchHistoryCache(redisCache).
		WithTTLs(cfg.Redis.RecentTTL, cfg.Redis.SkippedTTL)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	profileRepo := postgres.NewProfileRepository(dbConn)
	filterRepo := postgres.NewFilterRequestRepository(dbConn)
	eventRepo := postgres.NewMatchEventRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. DOMAIN SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	idGen := service.NewUUIDGenerator()
	scorer := matching.NewDefaultScorer()

	thresholds := matching.GroupThresholds{
		Solo: cfg.Matching.SoloThreshold,
		Pair: cfg.Matching.PairThreshold,
	}
	groupEngine, err := matching.NewGroupFormationEngine(scorer, thresholds, idGen.NewID)
	if err != nil {
		return fmt.Errorf("failed to build group engine: %w", err)
	}
	rematchEngine := matching.NewRematchEngine(scorer)

	trustStore := trust.NewDefaultStore()
	evaluator := trust.NewEvaluator(trustStore)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. EXTERNAL CLIENTS
	// ─────────────────────────────────────────────────────────────────────────
	var notifier notification.Notifier
	var pushSender notification.PushSender

	if cfg.Notifications.BaseURL != "" {
		notifierCfg := service.NotifierConfig{
			BaseURL: cfg.Notifications.BaseURL,
			APIKey:  cfg.Notifications.APIKey,
			Timeout: cfg.Notifications.RequestTimeout,
			Logger:  log,
		}
		notifier = service.NewNotificationClient(notifierCfg)
	} else {
		log.Info("no notification service configured, logging notifications")
		notifier = service.NewLogNotifier(log)
	}

	if cfg.Push.BaseURL != "" {
		pushCfg := service.DefaultPushConfig(cfg.Push.BaseURL, cfg.Push.APIKey)
		pushCfg.Timeout = cfg.Push.RequestTimeout
		pushCfg.Logger = log
		pushSender = service.NewPushGatewayClient(pushCfg)
	} else {
		log.Info("no push gateway configured, logging pushes")
		pushSender = service.NewLogPushSender(log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	matchGroupsQuery := query.NewMatchGroupsHandler(profileRepo, profileRepo, groupEngine, historyCache, eventRepo, eventBus)
	crossMatchQuery := query.NewCrossMatchHandler(profileRepo, profileRepo, groupEngine, historyCache)
	rematchQuery := query.NewRematchHandler(profileRepo, rematchEngine, historyCache, eventBus)
	filterStatusQuery := query.NewFilterStatusHandler(filterRepo)
	trustScoresQuery := query.NewTrustScoresHandler(profileRepo, evaluator)

	submitFiltersCmd := command.NewSubmitFiltersHandler(profileRepo, filterRepo, evaluator, idGen, eventBus)
	reviewFiltersCmd := command.NewReviewFiltersHandler(filterRepo, profileRepo, cfg.Filters.RejectionReasonLimit, eventBus)
	skipMatchCmd := command.NewSkipMatchHandler(historyCache)
	setTrustCriteriaCmd := command.NewSetTrustCriteriaHandler(trustStore, eventBus)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	matchFormed := eventhandler.NewOnMatchFormedHandler(notifier, pushSender, log)
	filterReviewed := eventhandler.NewOnFilterReviewedHandler(notifier, pushSender, log)

	notifyMatch := cfg.Features.IsEnabled(config.FeatureNotifyMatchFound, nil)
	notifyFilter := cfg.Features.IsEnabled(config.FeatureNotifyFilterReview, nil)

	if notifyMatch {
		_ = eventBus.Subscribe(shared.EventMatchGroupFormed, matchFormed.Handle)
		_ = eventBus.Subscribe(shared.EventRematchProduced, matchFormed.Handle)
	}
	if notifyFilter {
		_ = eventBus.Subscribe(shared.EventFilterSubmitted, filterReviewed.Handle)
		_ = eventBus.Subscribe(shared.EventFilterAutoApproved, filterReviewed.Handle)
		_ = eventBus.Subscribe(shared.EventFilterApproved, filterReviewed.Handle)
		_ = eventBus.Subscribe(shared.EventFilterRejected, filterReviewed.Handle)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpserver.DefaultConfig()
	httpCfg.Host = cfg.Server.Host
	httpCfg.Port = cfg.Server.Port
	httpCfg.ReadTimeout = cfg.Server.ReadTimeout
	httpCfg.WriteTimeout = cfg.Server.WriteTimeout
	httpCfg.IdleTimeout = cfg.Server.IdleTimeout
	httpCfg.RateLimitPerMinute = cfg.Server.RateLimit
	httpCfg.AdminAPIKey = cfg.Server.AdminAPIKey

	server := httpserver.NewServer(httpCfg, httpserver.Dependencies{
		MatchGroupsHandler:  matchGroupsQuery,
		CrossMatchHandler:   crossMatchQuery,
		RematchHandler:      rematchQuery,
		FilterStatusHandler: filterStatusQuery,
		TrustScoresHandler:  trustScoresQuery,

		SubmitFiltersHandler:    submitFiltersCmd,
		ReviewFiltersHandler:    reviewFiltersCmd,
		SkipMatchHandler:        skipMatchCmd,
		SetTrustCriteriaHandler: setTrustCriteriaCmd,

		TrustCriteria: trustStore,
		Features:      cfg.Features,
		Logger:        httpLog,
		Postgres:      dbConn,
		Redis:         redisCache,
	})

	errCh := server.StartAsync()
	log.Info("HTTP server started", "address", server.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 13. WAIT FOR SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}

	log.Info("match-core stopped")
	return nil
}

// setupSlog builds the process-wide slog logger from config.
func setupSlog(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
