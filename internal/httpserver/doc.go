// Package httpserver wraps net/http's server with listen-address validation
// and a bounded graceful shutdown.
package httpserver
