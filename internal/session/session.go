// Package session wires the tail engine, classifier, correlation window and
// fan-out hub into one controllable monitoring pipeline.
package session

import (
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/starlogs/starlogs-go/internal/correlate"
	"github.com/starlogs/starlogs-go/internal/hub"
	"github.com/starlogs/starlogs-go/internal/metrics"
	"github.com/starlogs/starlogs-go/internal/parser"
	"github.com/starlogs/starlogs-go/internal/tailer"
	"github.com/starlogs/starlogs-go/pkg/starlogs/event"
)

// Options configures a Session. Zero values select the defaults of the
// underlying components.
type Options struct {
	PollInterval         time.Duration
	TailLines            int
	CorrelationHorizon   time.Duration
	CorrelationProximity time.Duration
}

// Stats is a snapshot of per-kind event counters for the current source.
type Stats struct {
	LinesProcessed int64            `json:"lines_processed"`
	TotalEvents    int64            `json:"total_events"`
	ByKind         map[string]int64 `json:"events_by_type"`
	StartedAt      time.Time        `json:"started_at"`
	Source         string           `json:"source"`
	Running        bool             `json:"running"`
}

// Session owns one log source at a time. All pipeline work happens on the
// engine's goroutine; control operations are serialized by the session mutex.
type Session struct {
	opts   Options
	hub    *hub.Hub
	window *correlate.Window
	logger *zap.Logger

	mu        sync.Mutex
	engine    *tailer.Engine
	source    string
	startedAt time.Time

	statsMu sync.Mutex
	lines   int64
	total   int64
	byKind  map[string]int64
}

// New creates an idle session publishing into the given hub.
func New(opts Options, h *hub.Hub, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		opts:   opts,
		hub:    h,
		window: correlate.New(opts.CorrelationHorizon, opts.CorrelationProximity, logger),
		logger: logger,
		byKind: make(map[string]int64),
	}
}

// Start begins monitoring the given file. replayAll selects whether the whole
// file or only its tail is emitted before live polling. Starting an already
// running session is an error; use SwitchSource to change files.
func (s *Session) Start(path string, replayAll bool) error {
	if path == "" {
		return errors.New("session: empty log path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil && s.engine.IsRunning() {
		return errors.New("session: already running")
	}

	s.source = path
	s.startedAt = time.Now()
	s.resetStats()
	s.window.Reset()

	s.engine = tailer.New(path, s.opts.PollInterval, s.handleLine, s.logger)
	mode := tailer.TailLast
	if replayAll {
		mode = tailer.ReplayAll
	}
	return s.engine.Start(mode, s.opts.TailLines)
}

// Stop halts monitoring. Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	engine := s.engine
	s.mu.Unlock()
	if engine != nil {
		engine.Stop()
	}
}

// SwitchSource stops the current engine, clears subscriber history and
// correlation state, and starts a fresh engine on the new file with a full
// replay.
func (s *Session) SwitchSource(path string) error {
	if path == "" {
		return errors.New("session: empty log path")
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		s.engine.Stop()
	}

	s.hub.Reset("Switched log source")
	s.window.Reset()
	s.resetStats()
	s.source = path
	s.startedAt = time.Now()

	s.engine = tailer.New(path, s.opts.PollInterval, s.handleLine, s.logger)
	s.logger.Info("switching log source", zap.String("path", path))
	return s.engine.Start(tailer.ReplayAll, 0)
}

// Reprocess clears subscriber history and re-reads the whole current file
// through the pipeline. Live tailing continues from the existing cursor.
// Returns the number of lines replayed.
func (s *Session) Reprocess() (int, error) {
	s.mu.Lock()
	engine := s.engine
	s.mu.Unlock()
	if engine == nil {
		return 0, errors.New("session: not started")
	}

	s.hub.Reset("Reprocessing log file")
	s.window.Reset()
	s.resetStats()
	return engine.Reprocess(), nil
}

// Diagnostics returns the current engine's counters. A zero snapshot with the
// session's source path is returned while no engine exists.
func (s *Session) Diagnostics() tailer.Diagnostics {
	s.mu.Lock()
	engine := s.engine
	source := s.source
	s.mu.Unlock()
	if engine == nil {
		return tailer.Diagnostics{LogPath: source}
	}
	return engine.Diagnostics()
}

// Stats returns a snapshot of the per-kind counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	source := s.source
	startedAt := s.startedAt
	running := s.engine != nil && s.engine.IsRunning()
	s.mu.Unlock()

	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	byKind := make(map[string]int64, len(s.byKind))
	for k, v := range s.byKind {
		byKind[k] = v
	}
	return Stats{
		LinesProcessed: s.lines,
		TotalEvents:    s.total,
		ByKind:         byKind,
		StartedAt:      startedAt,
		Source:         source,
		Running:        running,
	}
}

// Source returns the path currently being monitored.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// IsRunning reports whether the tail engine is polling.
func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil && s.engine.IsRunning()
}

// handleLine is the engine callback. It runs on the engine's goroutine, so
// classification, correlation and publication happen in strict read order.
func (s *Session) handleLine(line string) {
	if line == tailer.ReplayComplete {
		s.hub.Publish(hub.SeparatorMessage())
		return
	}

	s.statsMu.Lock()
	s.lines++
	s.statsMu.Unlock()
	metrics.LinesProcessed.Inc()

	ev, err := parser.Parse(line)
	if err != nil {
		// A line matched an event pattern but carried malformed captures.
		// It still reaches subscribers as a raw line below.
		metrics.EventsDropped.Inc()
		s.logger.Debug("dropping malformed event", zap.Error(err), zap.String("line", line))
		ev = nil
	}

	if ev != nil {
		s.window.Observe(ev)
		s.recordEvent(ev)
		s.hub.Publish(hub.EventMessage(ev))
	}
	s.hub.Publish(hub.LineMessage(line, ev != nil))
}

func (s *Session) recordEvent(ev *event.Event) {
	s.statsMu.Lock()
	s.total++
	s.byKind[string(ev.Kind)]++
	s.statsMu.Unlock()
	metrics.EventsClassified.WithLabelValues(string(ev.Kind)).Inc()
}

func (s *Session) resetStats() {
	s.statsMu.Lock()
	s.lines = 0
	s.total = 0
	s.byKind = make(map[string]int64)
	s.statsMu.Unlock()
}
