// Results-stub is a stand-in for the Results API used when running the
// dashboard locally. It serves /health and /v1/experiments/{id}/summary with
// a canned aggregated summary.
//
// Usage:
//
//	go run ./scripts/results-stub -port 8004
//
// Requesting the experiment id "missing" answers 404, which is handy for
// checking the dashboard's status relay policy.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
)

const (
	summaryPrefix = "/v1/experiments/"
	summarySuffix = "/summary"
)

type conversion struct {
	ControlCR   float64 `json:"control_cr"`
	TreatmentCR float64 `json:"treatment_cr"`
	PValue      float64 `json:"p_value"`
	Lift        float64 `json:"lift"`
}

type revenue struct {
	PValue float64 `json:"p_value"`
	TStat  float64 `json:"t_stat"`
}

type summary struct {
	ExperimentID string `json:"experiment_id"`
	Summary      struct {
		Conversion conversion `json:"conversion"`
		Revenue    revenue    `json:"revenue"`
	} `json:"summary"`
	Artifacts []string `json:"artifacts"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func main() {
	port := flag.Int("port", 8004, "port to listen on")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "results"})
	})

	mux.HandleFunc(summaryPrefix, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, summaryPrefix)
		id, ok := strings.CutSuffix(rest, summarySuffix)
		if !ok || id == "" || strings.Contains(id, "/") {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
			return
		}

		log.Printf("summary: id=%s from=%s", id, r.RemoteAddr)

		if id == "missing" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}

		var s summary
		s.ExperimentID = id
		s.Summary.Conversion = conversion{ControlCR: 0.4, TreatmentCR: 0.5, PValue: 0.04, Lift: 0.25}
		s.Summary.Revenue = revenue{PValue: 0.06, TStat: 1.89}
		s.Artifacts = []string{}

		writeJSON(w, http.StatusOK, s)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting results stub on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
