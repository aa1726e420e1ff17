package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"treasury-analytics/internal/analytics"
	"treasury-analytics/internal/api"
	"treasury-analytics/internal/cache"
	"treasury-analytics/internal/config"
	"treasury-analytics/internal/logger"
	"treasury-analytics/internal/store"
)

func main() {
	migrateCmd := flag.Bool("migrate", false, "Create the database schema and exit")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed a demo client with transactions (idempotent) and exit")
	demoMode := flag.Bool("demo", false, "Serve from an in-memory store seeded with demo data")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info")
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	if *demoMode {
		mem := store.NewMemoryStore()
		if err := store.SeedDemoData(ctx, mem, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("Seeding demo data failed")
		}
		log.Info().Str("client_id", store.DemoClientID).Msg("Serving in-memory demo data")
		serve(cfg, log, mem, nil)
		return
	}

	db, err := store.Open(ctx, store.Options{
		Driver:      cfg.DBDriver,
		DatabaseURL: cfg.DatabaseURL,
		MaxRetries:  cfg.DBRetries,
		RetryDelay:  cfg.DBRetryWait,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if *migrateCmd {
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		log.Info().Msg("Migration completed successfully")
		return
	}
	if *seedDemoCmd {
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		if err := store.SeedDemoData(ctx, db, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("Seeding demo data failed")
		}
		log.Info().Msg("Demo data seeded")
		return
	}

	serve(cfg, log, db, db)
}

func serve(cfg *config.Config, log zerolog.Logger, st analytics.TransactionStore, db api.Pinger) {
	var dashboards api.DashboardCache
	if cfg.CacheEnabled() {
		c, err := cache.New(context.Background(), cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Redis, continuing without cache")
		} else {
			defer c.Close()
			dashboards = c
		}
	}

	svc := analytics.NewService(st, log, analytics.WithLocation(cfg.Location))

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewHandler(svc, db, dashboards, cfg.Location, log))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
