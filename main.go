package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamification-service/config"
	"gamification-service/database"
	"gamification-service/handlers"
	"gamification-service/logging"
	"gamification-service/middleware"
	"gamification-service/services"
	"gamification-service/utils"
	"gamification-service/workers"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// store is what both storage drivers provide.
type store interface {
	services.Store
	workers.DisplayNameStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store
	var db *gorm.DB
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logging.Warn().Msg("⚠️  using in-memory store, progress is lost on restart")
		st = database.NewMemoryStore()
	default:
		if db, err = database.Open(cfg.Database); err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to database")
		}
		st = database.NewPostgresStore(db)
	}

	bundle, err := loadBundle(ctx, cfg.Catalog)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to read catalog bundle")
	}
	if _, err := services.NewSeeder(st, time.Now).Seed(ctx, bundle); err != nil {
		logging.Fatal().Err(err).Msg("failed to seed catalog")
	}
	catalog, err := services.LoadCatalog(ctx, st)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load catalog")
	}

	streaks := services.NewStreakService(st, time.Now)
	rewards := services.NewRewardService(st, st, catalog)
	campaigns := services.NewCampaignService(st, st, catalog, time.Now)
	challenges := services.NewChallengeService(st, st, st, catalog, time.Now)

	scheduler, err := services.NewScheduler(challenges, cfg.Scheduler.ChallengeSweepInterval)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := scheduler.Start(); err != nil {
		logging.Fatal().Err(err).Msg("failed to start scheduler")
	}

	if cfg.Sync.Enabled {
		worker := workers.NewProfileSyncWorker(st, utils.NewServiceClient(30*time.Second), cfg.Sync.ServiceURL,
			cfg.Sync.EndpointPath, cfg.Sync.ServiceToken, cfg.Sync.Interval)
		worker.Start(ctx)
	}

	app := fiber.New(fiber.Config{
		BodyLimit:   cfg.Server.BodyLimit,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID, X-User-ID, X-Service-Token",
		MaxAge:       86400,
	}))
	app.Use(middleware.RequestLogger(cfg.Server.RequestTimeout))

	handlers.SetupRoutes(app, handlers.Services{
		Catalog:    catalog,
		Players:    services.NewPlayerService(st, st),
		Rewards:    rewards,
		Streaks:    streaks,
		Campaigns:  campaigns,
		Challenges: challenges,
		Activity:   services.NewActivityService(streaks, rewards, campaigns, challenges),
	})

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			logging.Error().Err(err).Msg("server error")
		}
	}()

	logging.Info().
		Int("port", cfg.Server.Port).
		Str("store", cfg.Store.Driver).
		Str("catalog", cfg.Catalog.Source).
		Bool("profile_sync", cfg.Sync.Enabled).
		Msg("✅ gamification service running")

	<-ctx.Done()
	logging.Info().Msg("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logging.Error().Err(err).Msg("server shutdown failed")
	}
	if err := scheduler.Shutdown(); err != nil {
		logging.Error().Err(err).Msg("scheduler shutdown failed")
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			logging.Error().Err(err).Msg("database close failed")
		}
	}
}

// loadBundle reads the seed catalog from the configured source. The default
// source is the bundle compiled into the binary.
func loadBundle(ctx context.Context, cc config.CatalogConfig) (*services.Bundle, error) {
	switch cc.Source {
	case config.CatalogSourceFile:
		return services.LoadBundle(ctx, services.FileSource(cc.File))
	case config.CatalogSourceBucket:
		bucket, err := utils.NewCatalogBucket(ctx, utils.R2Config{
			AccountID:       cc.AccountID,
			AccessKeyID:     cc.AccessKeyID,
			AccessKeySecret: cc.AccessKeySecret,
			Bucket:          cc.Bucket,
			Key:             cc.ObjectKey,
		})
		if err != nil {
			return nil, err
		}
		return services.LoadBundle(ctx, bucket)
	}
	return services.DefaultBundle(), nil
}
