// Package httpserver builds the process HTTP server. Per-request deadlines
// live in the middleware chain; only connection-level limits are set here.
package httpserver

import (
	"net/http"
	"time"
)

// Slow-client guards. ReadHeaderTimeout bounds header parsing so an idle
// connection cannot pin a worker before routing even starts.
const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

// New returns the server for the given listen address and root handler.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}
