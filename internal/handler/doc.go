// Package handler implements the dashboard's HTTP handlers: the landing
// message, the experiment summary passthrough to the Results API and the
// service health report, plus the instrumentation middleware wrapped around
// each route.
package handler
