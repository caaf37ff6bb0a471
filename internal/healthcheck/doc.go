// Package healthcheck implements periodic health checking of the Results API.
// It tracks availability through the upstream's /health endpoint and reports
// status changes to the logs and the metrics collector.
package healthcheck
