// Package config loads the dashboard configuration from an optional YAML file
// and environment variables. It resolves the Results API base URL
// (RESULTS_API_URL) along with the server, logging, health check and metrics
// settings.
package config
