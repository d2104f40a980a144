package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/srgjo27/rail_ticket/internal/adapter/cache"
	"github.com/srgjo27/rail_ticket/internal/adapter/handler"
	"github.com/srgjo27/rail_ticket/internal/adapter/repository/file"
	"github.com/srgjo27/rail_ticket/internal/adapter/repository/postgres"
	"github.com/srgjo27/rail_ticket/internal/core/ports"
	"github.com/srgjo27/rail_ticket/internal/core/services"
	"github.com/srgjo27/rail_ticket/internal/platform/config"
	"github.com/srgjo27/rail_ticket/internal/platform/database"
)

func main() {
	configPath := pflag.String("config", "", "path to the YAML config file (default $TICKET_CONFIG)")
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	pflag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, gateway, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var seatCache ports.SeatCache
	if cfg.Redis.Enabled {
		logger.Info("connecting to redis", "addr", cfg.Redis.Addr())

		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr(),
			DB:   0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		logger.Info("redis connected")

		seatCache = cache.NewSeatCache(redisClient, cfg.Redis.TTL)
	}

	backend, err := services.Open(ctx, catalog, gateway, seatCache, logger)
	if err != nil {
		return err
	}

	bookingService := services.NewBookingService(backend)
	bookingHandler := handler.NewBookingHandler(
		services.NewAuthService(backend, 0),
		services.NewSearchService(backend),
		bookingService,
		logger,
	)

	go bookingService.RunBackgroundAudit(ctx, cfg.AuditInterval)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      bookingHandler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server exiting")

	return nil
}

// openStorage wires the catalog source and account gateway for the
// configured backend. The returned func releases whatever was opened.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.CatalogSource, ports.AccountGateway, func(), error) {
	if cfg.AccountBackend != config.BackendPostgres {
		return file.CatalogFile{Path: cfg.CatalogPath}, file.NewAccountFile(cfg.AccountsPath, logger), func() {}, nil
	}

	db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	return postgres.NewCatalogRepository(db), postgres.NewAccountRepository(db), closeDB(db, logger), nil
}

func closeDB(db *sql.DB, logger *slog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn("closing database", "error", err)
		}
	}
}
