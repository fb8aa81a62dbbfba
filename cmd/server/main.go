package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"pharmacy-backoffice/internal/adapters/web"
	"pharmacy-backoffice/internal/config"
	"pharmacy-backoffice/internal/core"
	"pharmacy-backoffice/internal/db"
	"pharmacy-backoffice/internal/store/memory"
	"pharmacy-backoffice/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.Load()
	ctx := context.Background()

	var catalog core.CatalogRepository
	var orders core.OrderRepository

	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
		catalog = postgres.NewCatalogStore(pool)
		orders = postgres.NewOrderStore(pool)
		log.Info().Msg("using PostgreSQL store")
	} else {
		catalog = memory.NewCatalogStore()
		orders = memory.NewOrderStore()
		log.Info().Msg("DATABASE_URL not set, using in-memory store")
	}

	orderSvc := core.NewOrderService(catalog, orders, cfg.TaxRate, time.Now)
	alertSvc := core.NewAlertService(catalog, time.Now)

	handler := web.NewHandler(orderSvc, alertSvc, catalog, cfg.AllowedOrigins, log)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
