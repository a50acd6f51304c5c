// Package server is the HTTP adapter over the turn-processing contract. Turn
// outcomes, refusals included, are always 200; only transport problems such
// as malformed JSON map to 4xx.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harrison/foresight/internal/models"
)

// maxBodyBytes bounds a turn request body. Decisions are capped at 500
// characters, so this leaves generous room for JSON framing.
const maxBodyBytes = 16 << 10

// Processor runs turns and answers status queries. *orchestrator.Orchestrator
// satisfies it.
type Processor interface {
	ProcessTurn(ctx context.Context, req models.TurnRequest) models.TurnResult
	Status(id string) models.StatusReport
}

// Logger is the subset of the application logger used here.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
}

// Options configures the adapter.
type Options struct {
	// RequestTimeout bounds each request, generation included.
	RequestTimeout time.Duration
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string
	// Provider names the generation provider for /healthz.
	Provider string
}

// Server routes HTTP requests to a Processor.
type Server struct {
	processor Processor
	logger    Logger
	opts      Options
}

// New creates the adapter.
func New(p Processor, logger Logger, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	return &Server{processor: p, logger: logger, opts: opts}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.opts.AllowedOrigins))
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Post("/turn", s.handleTurn)
		api.Get("/sessions/{id}", s.handleStatus)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "provider": s.opts.Provider})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req models.TurnRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		msg := "The request body is not valid JSON."
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "The request body is too large."
		}
		writeRefusal(w, http.StatusBadRequest, msg)
		return
	}
	if req.Type != models.RequestDecision && req.Type != models.RequestQuestion {
		writeRefusal(w, http.StatusBadRequest, fmt.Sprintf("Unknown request type %q.", req.Type))
		return
	}

	result := s.processor.ProcessTurn(r.Context(), req)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.processor.Status(chi.URLParam(r, "id")))
}

// logRequests logs method, path, status and latency. Bodies are never logged.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if s.logger == nil {
			return
		}
		msg := fmt.Sprintf("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.LogWarn(msg)
			return
		}
		s.logger.LogDebug(msg)
	})
}

func writeRefusal(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.Refused(&models.Refusal{
		Reason:  models.RefusalValidationFailed,
		Message: message,
	}))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
