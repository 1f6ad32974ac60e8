// Package server exposes the tool API and the question answerer over HTTP.
//
//	POST /tool   execute a tool call
//	POST /ask    answer a natural-language question
//	GET  /schema tool schema for agent registration
//	GET  /health liveness check
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njchilds90/symsolve"
	"github.com/njchilds90/symsolve/agent"
	"github.com/njchilds90/symsolve/internal/config"
)

// RequestIDHeader carries the per-request id. Incoming values are kept.
const RequestIDHeader = "X-Request-ID"

// Server wires the handlers to an http.Server.
type Server struct {
	cfg    config.ServerConfig
	agent  *agent.Agent
	logger *zap.Logger
	http   *http.Server
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

func New(cfg config.ServerConfig, a *agent.Agent, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, agent: a, logger: logger}
	readHeader, read, write, idle := cfg.Timeouts()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeader,
		ReadTimeout:       read,
		WriteTimeout:      write,
		IdleTimeout:       idle,
	}
	return s
}

// Handler returns the routed handler with request ids and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tool", s.handleTool)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/schema", s.handleSchema)
	mux.HandleFunc("/health", s.handleHealth)
	return s.middleware(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errc
		return nil
	}
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		log := s.logger.With(zap.String("request_id", id), zap.String("path", r.URL.Path))

		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic in handler", zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request served", zap.String("method", r.Method), zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req symsolve.ToolRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, symsolve.HandleToolCall(req))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req AskRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "missing field: question")
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Answer(req.Question))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, symsolve.MCPToolSpec())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// decode reads one JSON value from a size-limited body. On failure it has
// already written the error response.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody())
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, "invalid JSON: trailing data")
		return false
	}
	return true
}

func (s *Server) maxBody() int64 {
	if s.cfg.MaxBodyBytes > 0 {
		return s.cfg.MaxBodyBytes
	}
	return 1 << 20
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
