package main

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/angeloszaimis/ab-dashboard/internal/handler"
	"github.com/angeloszaimis/ab-dashboard/internal/metrics"
)

func setupRouter(h *handler.DashboardHandler, metricsCollector *metrics.Collector, upstreamURL string, log *slog.Logger) *httprouter.Router {
	router := httprouter.New()

	router.GET("/", h.Instrument("/", h.Root))
	router.GET("/experiments/:id", h.Instrument("/experiments/:id", h.Summary))
	router.GET("/health", h.Instrument("/health", h.Health))
	router.GET("/metrics", h.Instrument("/metrics", adapt(metricsCollector.Handler(upstreamURL))))

	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log.Error("Handler panicked",
			slog.String("path", r.URL.Path),
			slog.Any("panic", v))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	return router
}

func adapt(h http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h(w, r)
	}
}
