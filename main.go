package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/north-cloud/personalization/internal/api"
	"github.com/jonesrussell/north-cloud/personalization/internal/catalog"
	"github.com/jonesrussell/north-cloud/personalization/internal/config"
	"github.com/jonesrussell/north-cloud/personalization/internal/database"
	"github.com/jonesrussell/north-cloud/personalization/internal/handler"
	"github.com/jonesrussell/north-cloud/personalization/internal/logger"
	"github.com/jonesrussell/north-cloud/personalization/internal/metrics"
	"github.com/jonesrussell/north-cloud/personalization/internal/personalization"
	"github.com/jonesrussell/north-cloud/personalization/internal/preferences"
	"github.com/jonesrussell/north-cloud/personalization/internal/session"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	rdb, err := connectRedis(cfg)
	if err != nil {
		log.Error("Failed to connect to redis", logger.Error(err))
		return 1
	}
	defer func() { _ = rdb.Close() }()

	log.Info("Redis connected", logger.String("address", cfg.Redis.Address))

	return runServer(cfg, log, db, rdb)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

func connectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func preferenceStore(cfg *config.Config, db *sqlx.DB) personalization.PreferenceStore {
	if cfg.Personalization.PreferenceSource == config.PreferenceSourceDatabase {
		return preferences.NewPostgres(db, cfg.Personalization.SiteID)
	}
	return preferences.NewStatic(cfg.Personalization.CategoryIDs)
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sqlx.DB, rdb *redis.Client) int {
	recorder := metrics.NewRecorder()
	prefs := preferenceStore(cfg, db)

	resolver := personalization.NewResolver(
		catalog.NewRepository(db),
		prefs,
		log,
		personalization.WithRecorder(recorder),
		personalization.WithProductPage(cfg.Personalization.ProductPage),
	)

	store := session.NewStore(rdb, session.Options{
		KeyPrefix:       cfg.Session.KeyPrefix,
		TTL:             cfg.Session.TTL,
		MaxClicks:       cfg.Session.MaxClicks,
		TrackingEnabled: cfg.Session.Tracking(),
	}, log)

	checks := map[string]handler.Pinger{
		"postgres": db.PingContext,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	deps := api.Dependencies{
		Sessions:    handler.NewSessionHandler(store, resolver, log),
		Preferences: handler.NewPreferencesHandler(prefs, log),
		Health:      handler.NewHealthHandler(cfg.Service.Name, cfg.Service.Version, checks),
		Metrics:     recorder.Handler(),
	}

	// done stops the rate limiter sweeper on shutdown
	done := make(chan struct{})
	defer close(done)

	server := api.NewServer(deps, cfg, log, done)

	log.Info("Personalization service starting",
		logger.Int("port", cfg.Service.Port),
		logger.String("preference_source", cfg.Personalization.PreferenceSource),
		logger.Bool("tracking_enabled", cfg.Session.Tracking()),
	)

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Personalization service exited cleanly")
	return 0
}
