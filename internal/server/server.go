// Package server exposes the monitoring session over HTTP: a server-sent
// events stream plus JSON control and introspection endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/starlogs/starlogs-go/internal/hub"
	"github.com/starlogs/starlogs-go/internal/session"
	"github.com/starlogs/starlogs-go/pkg/starlogs"
)

// Options configures the HTTP server.
type Options struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server serves the event stream and control endpoints for one session.
type Server struct {
	opts    Options
	session *session.Session
	hub     *hub.Hub
	logger  *zap.Logger
	http    *http.Server
}

// New builds the server and its route table.
func New(opts Options, sess *session.Session, h *hub.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		opts:    opts,
		session: sess,
		hub:     h,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /diagnostics", s.handleDiagnostics)
	mux.HandleFunc("POST /reprocess", s.handleReprocess)
	mux.HandleFunc("POST /api/switch_source", s.handleSwitchSource)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:        opts.ListenAddress,
		Handler:     mux,
		ReadTimeout: opts.ReadTimeout,
		// No WriteTimeout: /events streams indefinitely.
	}
	return s
}

// Handler returns the route table, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed is
// returned after a clean Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.opts.ListenAddress))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests within the configured timeout. Open SSE
// streams end when their clients observe the closed connection.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.opts.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ShutdownTimeout)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}

// handleEvents streams hub messages as server-sent events. The full history
// is replayed first, then live messages, per the hub contract. Optional
// include/exclude query parameters filter classified events by kind; raw
// lines and control messages always pass.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-sub.Ch():
			if !ok {
				// Dropped by the hub for falling behind.
				return
			}
			if msg.Type == hub.TypeEvent && msg.Event != nil && !filter.Allows(msg.Event.Kind) {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Warn("marshaling stream message", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.session.Stats()
	events, lines := s.hub.HistorySizes()
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":          stats,
		"subscribers":    s.hub.SubscriberCount(),
		"history_events": events,
		"history_lines":  lines,
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Diagnostics())
}

func (s *Server) handleReprocess(w http.ResponseWriter, r *http.Request) {
	n, err := s.session.Reprocess()
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
		return
	}
	s.logger.Info("reprocessed log file", zap.Int("lines", n))
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "lines": n})
}

func (s *Server) handleSwitchSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "path is required"})
		return
	}
	if err := s.session.SwitchSource(req.Path); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "path": req.Path})
}

// filterFromQuery builds an event kind filter from include/exclude query
// parameters. Both accept comma-separated kind names and may repeat.
func filterFromQuery(r *http.Request) (*starlogs.Filter, error) {
	parse := func(values []string) ([]starlogs.EventKind, error) {
		var kinds []starlogs.EventKind
		for _, v := range values {
			for _, name := range strings.Split(v, ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				k, ok := starlogs.ParseEventKind(name)
				if !ok {
					return nil, fmt.Errorf("unknown event type %q", name)
				}
				kinds = append(kinds, k)
			}
		}
		return kinds, nil
	}

	include, err := parse(r.URL.Query()["include"])
	if err != nil {
		return nil, err
	}
	exclude, err := parse(r.URL.Query()["exclude"])
	if err != nil {
		return nil, err
	}
	return starlogs.NewFilter(include, exclude), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
