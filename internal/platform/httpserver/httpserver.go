package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Write and idle timeouts are generous because the
// admin surface streams month projections; the header timeout stays tight to
// shed slowloris connections.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
