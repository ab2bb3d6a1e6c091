// Package api exposes the question answering pipeline over HTTP.
//
// Endpoints:
//
//	POST /api/ask     → answer a question with cited Wikipedia sources
//	GET  /api/stats   → knowledge store size
//	POST /api/course  → generate a course on a topic
//	GET  /health      → liveness probe
//	GET  /ready       → readiness probe (checks the knowledge store)
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/skepee/knowledge-rag/internal/course"
	"github.com/skepee/knowledge-rag/internal/knowledge"
	"github.com/skepee/knowledge-rag/internal/log"
	"github.com/skepee/knowledge-rag/internal/rag"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads to stop Slowloris clients.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous because answering runs the full pipeline,
	// including model calls.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// Answerer is the part of the pipeline the ask and stats endpoints need.
type Answerer interface {
	AnswerQuestion(ctx context.Context, question string) (*rag.Answer, error)
	CacheStats(ctx context.Context) (knowledge.Stats, error)
}

// CourseGenerator generates a course for a topic.
type CourseGenerator interface {
	Generate(ctx context.Context, topic, level string) (*course.Course, error)
}

// Config holds the HTTP-facing knobs.
type Config struct {
	// RateLimit is tokens per second refill for the per-IP limiter on ask.
	RateLimit float64
	// RateBurst is the per-IP token bucket size.
	RateBurst int
	// TrustProxy enables client IP extraction from proxy headers.
	TrustProxy bool
}

// Server is the HTTP server for the REST API.
type Server struct {
	mux     *http.ServeMux
	limiter *rateLimiter
	logger  log.Logger
}

// NewServer creates a server with all routes registered.
func NewServer(system Answerer, courses CourseGenerator, cfg Config, logger log.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:     mux,
		limiter: newRateLimiter(cfg.RateLimit, cfg.RateBurst),
		logger:  logger,
	}

	ask := &askHandler{system: system, logger: logger}
	stats := &statsHandler{system: system, logger: logger}
	courseH := &courseHandler{courses: courses, logger: logger}
	health := &healthHandler{system: system, logger: logger}

	mux.Handle("POST /api/ask", rateLimitMiddleware(s.limiter, cfg.TrustProxy, logger)(http.HandlerFunc(ask.handle)))
	mux.HandleFunc("GET /api/stats", stats.handle)
	mux.HandleFunc("POST /api/course", courseH.handle)
	mux.HandleFunc("GET /health", health.liveness)
	mux.HandleFunc("GET /ready", health.readiness)

	return s
}

// Handler returns the mux with the middleware chain applied.
// Order: recovery → request id → logging → routes.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
	)
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
