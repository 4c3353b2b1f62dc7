// Package http exposes the bookkeeping core as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"trackrise/internal/capture"
	"trackrise/internal/ledger"
	"trackrise/internal/log"
	"trackrise/internal/services"
	"trackrise/internal/syncer"
)

type Server struct {
	http.Server

	transactions *services.TransactionService
	dashboard    *services.Dashboard
	store        *ledger.Store
	coordinator  *capture.Coordinator
	reconciler   *syncer.Reconciler
	rateLimiter  *rateLimiter
	logger       *log.Logger

	started      time.Time
	shutdownOnce sync.Once
}

func NewServer(
	addr string,
	transactions *services.TransactionService,
	dashboard *services.Dashboard,
	store *ledger.Store,
	coordinator *capture.Coordinator,
	reconciler *syncer.Reconciler,
	logger *log.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		transactions: transactions,
		dashboard:    dashboard,
		store:        store,
		coordinator:  coordinator,
		reconciler:   reconciler,
		rateLimiter:  newRateLimiter(),
		logger:       logger.WithComponent(log.ComponentHTTP),
		started:      time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.withMiddleware(s.handleGetTransaction))
	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("GET /api/currencies", s.withMiddleware(s.handleListCurrencies))
	mux.HandleFunc("GET /api/settings", s.withMiddleware(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.withMiddleware(s.handlePutSettings))
	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))

	mux.HandleFunc("POST /api/capture/begin", s.withMiddleware(s.handleCaptureBegin))
	mux.HandleFunc("POST /api/capture/complete", s.withMiddleware(s.handleCaptureComplete))
	mux.HandleFunc("POST /api/capture/cancel", s.withMiddleware(s.handleCaptureCancel))
	mux.HandleFunc("GET /api/capture/state", s.withMiddleware(s.handleCaptureState))

	mux.HandleFunc("POST /api/sync", s.withMiddleware(s.handleSyncNow))

	return s
}

// withMiddleware applies rate limiting and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		if !s.rateLimiter.allow(clientIP) {
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		start := time.Now()
		requestID := generateRequestID()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.logger.Debug("request handled",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Shutdown stops the HTTP server and background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
