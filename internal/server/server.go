// Package server exposes the humanizer service over HTTP.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/humanizer/internal/config"
)

// DefaultVersion is reported by GET / unless the build sets another one.
const DefaultVersion = "1.0.0"

// MaxBodyBytes bounds the size of a request body.
const MaxBodyBytes = 1 << 20

type Options struct {
	Version        string
	AllowedOrigins []string
	// RequestTimeout bounds each request when positive.
	RequestTimeout time.Duration
}

// NewHandler routes the API endpoints through the middleware stack:
// CORS, request id, logging, metrics, recover, body limit, timeout, mux.
func NewHandler(service Humanizer, opts Options) http.Handler {
	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rootHandler(version))
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /status", statusHandler(service))
	mux.HandleFunc("POST /humanize", humanizeHandler(service))
	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = mux
	if opts.RequestTimeout > 0 {
		h = timeoutMiddleware(opts.RequestTimeout)(h)
	}
	h = maxBytesMiddleware(MaxBodyBytes)(h)
	h = recoverMiddleware(h)
	h = metricsMiddleware(h)
	h = loggingMiddleware(h)
	h = requestIDMiddleware(h)
	h = corsMiddleware(h, opts.AllowedOrigins)
	return h
}

// New returns an HTTP server accepting HTTP/1.1 and cleartext HTTP/2.
func New(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
	}
}
