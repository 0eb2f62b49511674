// Package tailer provides the polling tail engine for the game log file.
//
// The engine owns the byte cursor into the file. Live tailing runs on a fixed
// interval timer rather than an OS change-notification mechanism: the game
// rewrites its log aggressively and change notification has proven unreliable
// against it, so a small fixed latency is traded for reliability.
package tailer

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ReplayComplete is the in-band control line emitted exactly once after the
// initial file content has been forwarded, letting downstream consumers
// distinguish historical lines from live ones.
const ReplayComplete = "__REPLAY_COMPLETE__"

// Mode selects how much existing content is emitted before live tailing.
type Mode int

const (
	// ReplayAll streams every line of the file from offset 0 before tailing.
	ReplayAll Mode = iota

	// TailLast emits only the last N lines before tailing.
	TailLast
)

const (
	// DefaultInterval is the default poll interval.
	DefaultInterval = 1 * time.Second

	// DefaultTailLines is the default line count for TailLast mode.
	DefaultTailLines = 100

	// stopJoinTimeout bounds how long Stop waits for the poll goroutine.
	// A stop initiated from within the line callback would otherwise
	// deadlock against its own goroutine.
	stopJoinTimeout = 2 * time.Second

	readBufferSize = 64 * 1024
)

// LineFunc receives each forwarded log line, including the ReplayComplete
// control marker.
type LineFunc func(line string)

// Diagnostics is a snapshot of engine counters.
type Diagnostics struct {
	IsRunning      bool          `json:"running"`
	LogPath        string        `json:"log_path"`
	LogExists      bool          `json:"log_exists"`
	RuntimeSeconds float64       `json:"runtime_seconds"`
	PollChecks     int64         `json:"poll_checks"`
	LinesRead      int64         `json:"lines_read"`
	BytesRead      int64         `json:"bytes_read"`
	Cursor         int64         `json:"current_position"`
	FileSize       int64         `json:"file_size"`
}

// Engine tails one log file owned and written by another process.
type Engine struct {
	path     string
	interval time.Duration
	onLine   LineFunc
	logger   *zap.Logger

	cursor atomic.Int64
	polls  atomic.Int64
	lines  atomic.Int64
	bytes  atomic.Int64

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	started time.Time
}

// New creates an engine for the given file. The callback is invoked from the
// poll goroutine (and from Start/Reprocess for replayed content), one line at
// a time, in file order. Zero interval selects the default.
func New(path string, interval time.Duration, onLine LineFunc, logger *zap.Logger) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		path:     path,
		interval: interval,
		onLine:   onLine,
		logger:   logger,
	}
}

// Start emits the initial content for the chosen mode, emits the
// ReplayComplete marker, and begins live polling. Calling Start on a running
// engine is a no-op. The initial replay happens synchronously: when Start
// returns, every historical line has been forwarded.
func (e *Engine) Start(mode Mode, tailLines int) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	e.started = time.Now()
	e.mu.Unlock()

	switch mode {
	case ReplayAll:
		n, end, err := e.replayAll()
		if err != nil {
			e.logger.Warn("replaying log file", zap.Error(err))
		}
		e.cursor.Store(end)
		e.logger.Info("replayed log file",
			zap.String("path", e.path), zap.Int("lines", n))
	case TailLast:
		if tailLines <= 0 {
			tailLines = DefaultTailLines
		}
		if err := e.tailExisting(tailLines); err != nil {
			e.logger.Warn("tailing existing content", zap.Error(err))
		}
		if fi, err := os.Stat(e.path); err == nil {
			e.cursor.Store(fi.Size())
		}
	}
	e.onLine(ReplayComplete)

	go e.loop()

	e.logger.Info("log monitor started",
		zap.String("path", e.path),
		zap.Duration("poll_interval", e.interval))
	return nil
}

// Stop halts polling. Idempotent, and safe to call from within the line
// callback: the join is bounded, so a self-stop proceeds after the timeout
// instead of deadlocking.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	doneCh := e.doneCh
	e.mu.Unlock()

	select {
	case <-doneCh:
	case <-time.After(stopJoinTimeout):
		e.logger.Warn("poll goroutine did not exit in time, proceeding")
	}
}

// IsRunning reports whether the engine is currently polling.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Reprocess re-reads the entire file through the callback and emits the
// ReplayComplete marker again. The live cursor is untouched; lines appended
// during the reprocess are still picked up by the next poll. Returns the
// number of lines forwarded.
func (e *Engine) Reprocess() int {
	n, _, err := e.replayAll()
	if err != nil {
		e.logger.Warn("reprocessing log file", zap.Error(err))
	}
	e.onLine(ReplayComplete)
	return n
}

// Diagnostics returns a snapshot of the engine's counters.
func (e *Engine) Diagnostics() Diagnostics {
	e.mu.Lock()
	running := e.running
	started := e.started
	e.mu.Unlock()

	var runtime float64
	if !started.IsZero() {
		runtime = time.Since(started).Seconds()
	}

	d := Diagnostics{
		IsRunning:      running,
		LogPath:        e.path,
		RuntimeSeconds: runtime,
		PollChecks:     e.polls.Load(),
		LinesRead:      e.lines.Load(),
		BytesRead:      e.bytes.Load(),
		Cursor:         e.cursor.Load(),
	}
	if fi, err := os.Stat(e.path); err == nil {
		d.LogExists = true
		d.FileSize = fi.Size()
	}
	return d
}

func (e *Engine) loop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.poll()
		}
	}
}

// poll performs one tail check: stat, rotation detection, and a read of any
// newly appended bytes. Errors are logged and swallowed; polling continues on
// schedule and unread bytes are picked up by the next successful poll.
func (e *Engine) poll() {
	e.polls.Add(1)

	fi, err := os.Stat(e.path)
	if err != nil {
		if !os.IsNotExist(err) {
			e.logger.Debug("stat failed", zap.Error(err))
		}
		return
	}
	size := fi.Size()
	cursor := e.cursor.Load()

	// A shrinking file means rotation/truncation: start over from the top
	// of the new content.
	if size < cursor {
		e.logger.Info("log rotation detected, resetting cursor",
			zap.Int64("old_cursor", cursor), zap.Int64("size", size))
		cursor = 0
		e.cursor.Store(0)
	}
	if size == cursor {
		return
	}

	// os.Open does not take an exclusive lock (on Windows it opens with
	// full sharing), so the game keeps writing while we read.
	f, err := os.Open(e.path)
	if err != nil {
		e.logger.Debug("open failed", zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.Seek(cursor, io.SeekStart); err != nil {
		e.logger.Debug("seek failed", zap.Error(err))
		return
	}
	buf, err := io.ReadAll(f)
	if err != nil {
		e.logger.Debug("read failed", zap.Error(err))
		// Whatever was read before the error is still consumed.
	}
	if len(buf) == 0 {
		return
	}
	e.cursor.Store(cursor + int64(len(buf)))
	e.bytes.Add(int64(len(buf)))

	count := 0
	for _, line := range strings.Split(string(buf), "\n") {
		line = sanitizeLine(line)
		if line == "" {
			continue
		}
		e.onLine(line)
		count++
	}
	e.lines.Add(int64(count))
}

// replayAll streams the whole file through the callback, returning the line
// count and the byte offset consumed.
func (e *Engine) replayAll() (int, int64, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, readBufferSize)
	var offset int64
	count := 0
	for {
		chunk, err := r.ReadString('\n')
		offset += int64(len(chunk))
		if line := sanitizeLine(chunk); line != "" {
			e.onLine(line)
			count++
		}
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			e.lines.Add(int64(count))
			e.bytes.Add(offset)
			return count, offset, err
		}
	}
}

// tailExisting forwards the last n lines of the file.
func (e *Engine) tailExisting(n int) error {
	lines, err := readLastNLines(e.path, n)
	if err != nil {
		return err
	}
	for _, line := range lines {
		e.onLine(line)
	}
	e.lines.Add(int64(len(lines)))
	return nil
}

// sanitizeLine trims line endings and surrounding whitespace and replaces
// invalid UTF-8 sequences. Returns "" for lines with no content.
func sanitizeLine(line string) string {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return ""
	}
	return strings.ToValidUTF8(line, "�")
}
