// Package main is the entry point for the ecocommute companion API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/peatergripin/ecocommute/internal/api"
	"github.com/peatergripin/ecocommute/internal/backend"
	"github.com/peatergripin/ecocommute/internal/config"
	"github.com/peatergripin/ecocommute/internal/environment"
	"github.com/peatergripin/ecocommute/internal/places"
	"github.com/peatergripin/ecocommute/internal/refresh"
	"github.com/peatergripin/ecocommute/internal/transit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trips := backend.NewClient(cfg.BackendURL, cfg.HTTPTimeout)

	envClient := environment.NewClient(cfg.EnvAPIBaseURL, cfg.HTTPTimeout, loc)
	envRunner := refresh.New("environment", cfg.EnvRefresh, func(ctx context.Context) (environment.Snapshot, error) {
		return envClient.Snapshot(ctx, cfg.PSIRegion)
	})

	lta := transit.NewClient(cfg.LTABaseURL, cfg.LTAAccountKey, cfg.HTTPTimeout)
	scan := transit.DefaultScanOptions()
	scan.EarlyStopPages = cfg.RouteEarlyStopPages
	busSvc := transit.NewBusService(lta, scan, cfg.CacheTTL)
	defer busSvc.Close()

	alertSvc := transit.NewAlertService(lta)
	alertRunner := refresh.New("train-alerts", cfg.AlertsRefresh, alertSvc.TrainAlerts)

	placesClient := places.NewClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey, cfg.PlacesRegion, cfg.HTTPTimeout)

	go envRunner.Run(ctx)
	if alertSvc.HasAccountKey() {
		go alertRunner.Run(ctx)
	} else {
		slog.Warn("LTA_ACCOUNT_KEY not set; bus and train features disabled")
	}

	router := api.NewRouter(api.Deps{
		Trips:       trips,
		Environment: envRunner,
		Bus:         busSvc,
		Alerts:      trainAlerts{alertRunner, alertSvc},
		Places:      placesClient,
		Location:    loc,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	fmt.Printf("🌱 ecocommute server starting on port %s\n", cfg.Port)
	fmt.Printf("📍 Environment: %s (%s)\n", cfg.Env, cfg.Timezone)
	fmt.Printf("🔗 http://localhost:%s\n", cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
		envRunner.Stop()
		alertRunner.Stop()
	}
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// trainAlerts pairs the alert refresher with the service that knows
// whether alerts can be fetched at all
type trainAlerts struct {
	*refresh.Runner[[]transit.Cluster]
	svc *transit.AlertService
}

func (a trainAlerts) HasAccountKey() bool {
	return a.svc.HasAccountKey()
}
