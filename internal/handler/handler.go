package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/angeloszaimis/ab-dashboard/internal/metrics"
	"github.com/angeloszaimis/ab-dashboard/internal/upstream"
)

// UpstreamStatusHeader carries the Results API status code on proxied responses.
const UpstreamStatusHeader = "X-Upstream-Status"

type DashboardHandler struct {
	logger           *slog.Logger
	upstream         *upstream.Upstream
	relayStatus      bool
	metricsCollector *metrics.Collector
}

type healthResponse struct {
	Status     string         `json:"status"`
	Service    string         `json:"service"`
	ResultsAPI resultsAPIInfo `json:"results_api"`
}

type resultsAPIInfo struct {
	URL          string        `json:"url"`
	Healthy      bool          `json:"healthy"`
	EWMAResponse time.Duration `json:"ewma_response"`
}

// NewDashboardHandler wires the dashboard routes to up. When relayStatus is
// false every completed upstream exchange is answered with 200; otherwise the
// upstream status code is copied. collector may be nil.
func NewDashboardHandler(logger *slog.Logger, up *upstream.Upstream, relayStatus bool, collector *metrics.Collector) *DashboardHandler {
	return &DashboardHandler{
		logger:           logger,
		upstream:         up,
		relayStatus:      relayStatus,
		metricsCollector: collector,
	}
}

// Greeting is the landing message served on /.
func Greeting(baseURL string) string {
	return fmt.Sprintf("AB Experiments Dashboard — connect to Results API at %s", baseURL)
}

func (d *DashboardHandler) Root(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, Greeting(d.upstream.BaseURL()))
}

func (d *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	requestID := RequestID(r.Context())

	start := time.Now()
	res, err := d.upstream.Summary(r.Context(), id)
	duration := time.Since(start)

	if err != nil {
		d.logger.Error("Results API request failed",
			slog.String("request_id", requestID),
			slog.String("experiment_id", id),
			slog.String("url", d.upstream.SummaryURL(id)),
			slog.Any("err", err))

		d.metricsCollector.Emit(metrics.MetricEvent{
			Type:      metrics.EventUpstreamFailed,
			Timestamp: time.Now(),
			Duration:  duration,
		})

		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	d.logger.Debug("Results API responded",
		slog.String("request_id", requestID),
		slog.String("experiment_id", id),
		slog.Int("status", res.StatusCode),
		slog.Int("bytes", len(res.Body)),
		slog.Duration("duration", duration))

	d.metricsCollector.Emit(metrics.MetricEvent{
		Type:       metrics.EventUpstreamCompleted,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: res.StatusCode,
	})

	status := http.StatusOK
	if d.relayStatus {
		status = res.StatusCode
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(UpstreamStatusHeader, strconv.Itoa(res.StatusCode))
	w.WriteHeader(status)
	w.Write(res.Body)
}

func (d *DashboardHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := healthResponse{
		Status:  "ok",
		Service: "dashboard",
		ResultsAPI: resultsAPIInfo{
			URL:          d.upstream.BaseURL(),
			Healthy:      d.upstream.IsHealthy(),
			EWMAResponse: d.upstream.EWMATime(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
