package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/ab-dashboard/config"
	"github.com/angeloszaimis/ab-dashboard/internal/handler"
	"github.com/angeloszaimis/ab-dashboard/internal/healthcheck"
	"github.com/angeloszaimis/ab-dashboard/internal/httpserver"
	"github.com/angeloszaimis/ab-dashboard/internal/metrics"
	"github.com/angeloszaimis/ab-dashboard/internal/upstream"
	"github.com/angeloszaimis/ab-dashboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv, err := buildServer(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		log.Info("Dashboard listening",
			slog.String("addr", srv.Addr()),
			slog.String("results_api", cfg.ResultsAPI.URL))
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting dashboard", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// buildServer wires the upstream, metrics, health monitor and routes. The
// background goroutines stop when ctx is cancelled.
func buildServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*httpserver.Server, error) {
	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)
	collector.Start(ctx)

	up := upstream.New(cfg.ResultsAPI.URL, nil)

	monitor := healthcheck.NewMonitor(up, cfg.HealthCheck.Path, cfg.HealthCheckInterval(), collector, log)
	go monitor.Run(ctx)

	dashboardHandler := handler.NewDashboardHandler(log, up, cfg.ResultsAPI.RelayStatus, collector)

	router := setupRouter(dashboardHandler, collector, up.BaseURL(), log)

	return httpserver.New(cfg.Server.Address, router)
}
