// Package upstream is the client side of the Results API. It builds summary
// URLs, performs the single GET per lookup and keeps the health and
// response-time state the rest of the service reports on.
package upstream
