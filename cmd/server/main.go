// Command server boots the HTTP API: config, the embedded SQLite store,
// the Scanner, the Metadata Client, the Discography Service, and the asynq
// job queue + cron scheduler that drive both in the background.
package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"crate/internal/config"
	"crate/internal/database"
	"crate/internal/discography"
	"crate/internal/handlers"
	"crate/internal/jobs"
	"crate/internal/metadata"
	"crate/internal/metrics"
	"crate/internal/middleware"
	"crate/internal/scanner"
	"crate/internal/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("version", cfg.Version.AppVersion).Logger()

	dbManager, err := database.NewDatabaseManager(&cfg.Database, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer dbManager.Close()

	if err := database.NewMigrationManager(dbManager.GetGormDB(), &logger).Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	db := dbManager.GetGormDB()

	scan := scanner.New(db, cfg.Library.MountPath, &logger)
	metadataClient := metadata.NewClient(metadata.Config{
		UserAgent: "crate/" + cfg.Version.AppVersion + " (selfhosted)",
	})
	discographySvc := discography.New(db, metadataClient)
	repo := services.NewRepository(db)
	metrics.InitializeMetrics()

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	jobManager := jobs.NewManager(redisOpt, scan, discographySvc, &logger)
	defer jobManager.Close()

	worker := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 1})
	mux := asynq.NewServeMux()
	jobManager.RegisterHandlers(mux)
	if err := worker.Start(mux); err != nil {
		logger.Error().Err(err).Msg("failed to start job worker")
	} else {
		defer worker.Shutdown()
	}

	scheduler := jobs.NewCronScheduler(jobManager, db, &logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start cron scheduler")
	}
	defer scheduler.Stop()

	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer redisClient.Close()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})
	app.Use(middleware.MetricsMiddleware())

	registerRoutes(app, cfg, dbManager, db, redisClient, scan, discographySvc, repo)

	go func() {
		addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := app.Listen(addr); err != nil {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	waitForShutdown(app, &logger)
}

func registerRoutes(
	app *fiber.App,
	cfg *config.AppConfig,
	dbManager *database.DatabaseManager,
	db *gorm.DB,
	redisClient *redis.Client,
	scan *scanner.Scanner,
	discographySvc *discography.Service,
	repo *services.Repository,
) {
	flags := handlers.FeatureFlags{ScanningEnabled: true, DiscographySyncEnabled: true}
	health := handlers.NewHealthHandler(dbManager, redisClient, cfg.Version, flags)
	app.Get("/health", health.HealthCheck)

	settings := handlers.NewSettingsHandler(db)
	app.Get("/api/settings", settings.GetSettings)
	app.Put("/api/settings", settings.UpdateSettings)

	dashboard := handlers.NewDashboardHandler(repo, discographySvc, db)
	app.Get("/api/stats", dashboard.Stats)
	app.Get("/api/dashboard", dashboard.Dashboard)
	app.Post("/api/wishlist", dashboard.AddWishlistItem)

	scanHandler := handlers.NewScanHandler(scan)
	app.Post("/api/scan/start", scanHandler.StartScan)
	app.Post("/api/scan/cancel", scanHandler.CancelScan)
	app.Get("/api/scan/status", scanHandler.ScanStatus)
	app.Get("/api/scan/skipped", scanHandler.ScanSkipped)

	library := handlers.NewLibraryHandler(repo)
	app.Get("/api/library/albums", library.ListAlbums)
	app.Put("/api/library/albums/:id/owned", library.SetAlbumOwned)
	app.Get("/api/library/artists", library.ListArtists)
	app.Get("/api/library/artists/:id", library.GetArtist)
	app.Get("/api/artist/by-slug/:slug", library.GetArtistBySlug)
	app.Get("/api/artist/:id/overview", library.GetArtistOverview)

	expected := handlers.NewExpectedHandler(discographySvc)
	app.Post("/api/expected/artist/:id/sync", expected.Sync)
	app.Get("/api/expected/artist/:id/summary", expected.Summary)
	app.Post("/api/expected/artist/:id/ignore", expected.Ignore)
	app.Post("/api/expected/artist/:id/unignore", expected.Unignore)
	app.Get("/api/expected/artist/:id/settings", expected.GetSettings)
	app.Post("/api/expected/artist/:id/settings", expected.UpdateSettings)
}

func waitForShutdown(app *fiber.App, logger *zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}
}
