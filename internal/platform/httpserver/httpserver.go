package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server. Header and idle timeouts guard against slow
// clients holding connections; per-request deadlines come from the router's
// timeout middleware.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
