package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/CharacterVault/config"
	appmodel "github.com/sifan077/CharacterVault/internal/app/model"
	apprepository "github.com/sifan077/CharacterVault/internal/app/repository"
	appserver "github.com/sifan077/CharacterVault/internal/app/server"
	appservice "github.com/sifan077/CharacterVault/internal/app/service"
	"github.com/sifan077/CharacterVault/internal/infra/database"
	"github.com/sifan077/CharacterVault/internal/infra/logger"
	infraNATS "github.com/sifan077/CharacterVault/internal/infra/nats"
	infraPrometheus "github.com/sifan077/CharacterVault/internal/infra/prometheus"
	infraRedis "github.com/sifan077/CharacterVault/internal/infra/redis"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "charactervault: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.Init(logger.FromEnv(cfg.App.Env, cfg.App.LogLevel, "charactervault"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log.Info("Configuration loaded successfully",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("base_url", cfg.App.BaseURL),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("nats_enabled", cfg.NATS.Enabled),
		zap.Bool("prometheus_enabled", cfg.Prometheus.Enabled),
	)

	db, err := database.Open(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
		log.Info("Database connection closed")
	}()

	if err := database.AutoMigrate(ctx, db.Gorm, &appmodel.CharacterRecord{}); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Connected to record store", zap.String("driver", db.Driver))

	characterRepo := apprepository.NewCharacterRepository(db.Gorm, cfg.App.BaseURL)
	filter := appservice.NewIDFilter(0, 0)

	metrics := infraPrometheus.NewMetrics()
	opts := appservice.Options{
		Filter: filter,
		// A SQLite file has exactly one writer, this process. Any shared
		// store may hold ids this filter has not seen.
		FilterAuthoritative: db.Driver == config.StorageSQLite,
		Created:             metrics.CharactersCreated,
		Logger:              log,
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = infraRedis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		opts.Cache = appservice.NewRedisPageCache(redisClient, cfg.Redis.CacheTTL, log, metrics.PageCache)
		log.Info("Connected to Redis successfully")
	}

	if cfg.NATS.Enabled {
		natsConn, js, err := infraNATS.Connect(cfg.NATS)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer drainNATS(log, natsConn)

		if err := infraNATS.EnsureStream(js, appmodel.CharacterStreamName,
			[]string{appmodel.CharacterCreatedSubject}, appmodel.CharacterStreamMaxBytes); err != nil {
			return fmt.Errorf("ensure stream: %w", err)
		}
		opts.Publisher = appservice.NewJetStreamPublisher(js)

		consumer := appservice.NewEventConsumer(js, log, filter, cfg.NATS.Consumer)
		if err := consumer.Start(); err != nil {
			return fmt.Errorf("start event consumer: %w", err)
		}
		defer func() { _ = consumer.Stop() }()
		log.Info("Connected to NATS successfully",
			zap.String("url", infraNATS.URL(cfg.NATS)),
			zap.String("consumer", consumer.Durable()))
	}

	// Seed after subscribing so creates in between are covered by one or the other.
	if err := filter.Seed(ctx, characterRepo); err != nil {
		return fmt.Errorf("load id filter: %w", err)
	}
	log.Info("Id filter seeded", zap.Bool("authoritative", opts.FilterAuthoritative))

	if cfg.Prometheus.Enabled {
		promServer := infraPrometheus.NewServer(cfg.Prometheus, metrics)
		go func() {
			log.Info("Starting Prometheus metrics server", zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	}

	deps := appserver.Dependencies{
		Config:     cfg,
		Logger:     log,
		Characters: appservice.NewCharacterService(characterRepo, opts),
		Storage:    db,
		Metrics:    metrics,
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}
	server := appserver.New(deps)

	listenErr := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		log.Info("Server running", zap.String("addr", addr), zap.String("collection", cfg.App.BaseURL+"/collection"))
		listenErr <- server.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("fiber server exited: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Fiber shutdown incomplete", zap.Error(err))
	}
	return nil
}

func drainNATS(log *zap.Logger, nc *nats.Conn) {
	if err := nc.Drain(); err != nil {
		log.Warn("Failed to drain NATS connection", zap.Error(err))
	}
}
