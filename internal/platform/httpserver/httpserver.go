package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server tuned for small mobile payloads: location
// reports and dashboard reads are a few hundred bytes each.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
