package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rollmates/dicematch-backend/api/controllers"
	"github.com/rollmates/dicematch-backend/api/routes"
	"github.com/rollmates/dicematch-backend/internal/events"
	"github.com/rollmates/dicematch-backend/internal/match"
	"github.com/rollmates/dicematch-backend/internal/rolls"
	"github.com/rollmates/dicematch-backend/internal/users"
	"github.com/rollmates/dicematch-backend/pkg/config"
	"github.com/rollmates/dicematch-backend/pkg/db"
	"github.com/rollmates/dicematch-backend/pkg/logger"
	"github.com/rollmates/dicematch-backend/pkg/metrics"
	"github.com/rollmates/dicematch-backend/pkg/migrate"
	"github.com/rollmates/dicematch-backend/pkg/pubsub"
	"github.com/rollmates/dicematch-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewMatchEngineMetrics(registry)

	pingers := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
	}

	var notifier match.Notifier
	var dispatcher *events.Dispatcher
	if cfg.GCP.ProjectID != "" {
		psClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()

		dispatcher = events.NewDispatcher(events.NewTopicPublisher(psClient.MatchPublisher()), logg)
		defer dispatcher.Close()
		notifier = dispatcher
		pingers["pubsub"] = psClient
	}

	userRepo := users.NewRepository(dbClient.DB())
	rollStore := rolls.NewRepository(dbClient.DB())
	matchRepo := match.NewRepository(dbClient.DB())

	ledger := match.NewLedger(rollStore, matchRepo, dbClient.WithTx)
	resolver := match.NewResolver(rollStore, ledger, cfg.Match, engineMetrics, logg)

	userService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	rollService, err := rolls.NewService(rollStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create rolls service", err)
		os.Exit(1)
	}
	matchService, err := match.NewService(rollStore, resolver, matchRepo, userRepo, notifier, engineMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create match service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			Pingers:      pingers,
			UserService:  userService,
			RollService:  rollService,
			MatchService: matchService,
			RateLimiter:  redisClient,
			Metrics:      registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
