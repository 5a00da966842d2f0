// Package api serves the ghost store: document insert, query and live
// stream over HTTP, plus health metrics and stats.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/internal/adapters/http/swagger"
	"github.com/okian/flappyghost/internal/domain/dedupe"
	"github.com/okian/flappyghost/pkg/logger"
)

// maxBodyBytes bounds insert and query request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by the handlers.
type Dependencies interface {
	dedupe.Deduper
	docstore.Store

	// Subscribe streams documents inserted after the call.
	Subscribe(ctx context.Context, collection string) (<-chan docstore.Document, error)
}

// Server wires the ghost store routes.
type Server struct {
	deps  Dependencies
	stats StatsProvider
	log   logger.Logger
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:  deps,
		stats: stats,
		log:   logger.Component("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *httprouter.Router) {
	mux.GET("/healthz", MetricsMiddleware(HandleHealth(), "healthz"))
	mux.GET("/stats", MetricsMiddleware(HandleStats(s.stats), "stats"))
	mux.POST("/v1/collections/:collection/documents", MetricsMiddleware(s.handleInsert, "insert"))
	mux.POST("/v1/collections/:collection/query", MetricsMiddleware(s.handleQuery, "query"))
	mux.GET("/v1/collections/:collection/stream", MetricsMiddleware(s.handleStream, "stream"))
	swagger.Register(mux)
}

// Handler returns a router with every route registered.
func (s *Server) Handler() http.Handler {
	mux := httprouter.New()
	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.log.Error(r.Context(), "handler panic", logger.String("path", r.URL.Path), logger.Any("panic", v))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
	s.Register(mux)
	return mux
}

// InsertResponse acknowledges an insert.
type InsertResponse struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// writeStoreError maps store failures onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, docstore.ErrInvalidQuery), errors.Is(err, docstore.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, docstore.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
