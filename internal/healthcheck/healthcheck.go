package healthcheck

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/ab-dashboard/internal/metrics"
	"github.com/angeloszaimis/ab-dashboard/internal/upstream"
)

const probeTimeout = 5 * time.Second

// Monitor periodically probes the Results API health endpoint and records
// the outcome on the upstream. It is informational only: proxying never
// consults it.
type Monitor struct {
	upstream  *upstream.Upstream
	path      string
	interval  time.Duration
	client    *http.Client
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewMonitor creates a Monitor for up. collector may be nil.
func NewMonitor(up *upstream.Upstream, path string, interval time.Duration, collector *metrics.Collector, logger *slog.Logger) *Monitor {
	return &Monitor{
		upstream:  up,
		path:      path,
		interval:  interval,
		client:    &http.Client{Timeout: probeTimeout},
		collector: collector,
		logger:    logger,
	}
}

// Run probes immediately, then once per interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.Probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Health check stopped",
				slog.String("results_api", m.upstream.BaseURL()))
			return

		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe performs a single health check and returns the resulting status.
// Only a 200 counts as healthy.
func (m *Monitor) Probe(ctx context.Context) bool {
	healthy := m.check(ctx)

	if m.upstream.SetHealthy(healthy) {
		if healthy {
			m.logger.Info("Results API is back up",
				slog.String("results_api", m.upstream.BaseURL()))
		} else {
			m.logger.Warn("Results API is down",
				slog.String("results_api", m.upstream.BaseURL()))
		}

		m.collector.Emit(metrics.MetricEvent{
			Type:      metrics.EventHealthChanged,
			Timestamp: time.Now(),
			Healthy:   healthy,
		})
	}

	return healthy
}

func (m *Monitor) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.upstream.HealthURL(m.path), nil)
	if err != nil {
		m.logger.Debug("Failed to build health request", slog.Any("err", err))
		return false
	}

	res, err := m.client.Do(req)
	if err != nil {
		m.logger.Debug("Health probe failed", slog.Any("err", err))
		return false
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK
}
