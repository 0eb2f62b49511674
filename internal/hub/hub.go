// Package hub fans out classified events and raw log lines to any number of
// live subscribers, replaying a bounded history to subscribers that join late.
//
// Backpressure policy: a subscriber whose queue fills up is dropped, not
// waited for. Slow consumers lose their stream; the ingestion pipeline never
// stalls.
package hub

import (
	"sync"

	"go.uber.org/zap"

	"github.com/starlogs/starlogs-go/internal/metrics"
	"github.com/starlogs/starlogs-go/pkg/starlogs/event"
)

// Message type discriminators on the subscriber wire.
const (
	TypeEvent     = "event"
	TypeLogLine   = "log_line"
	TypeSeparator = "separator"
	TypeClearAll  = "clear_all"
)

// separatorText marks the end of replayed content in the raw feed.
const separatorText = "═══ END OF REPLAY - LIVE LOGGING STARTS HERE ═══"

// Message is one outbound unit to a subscriber.
type Message struct {
	Type     string       `json:"type"`
	Event    *event.Event `json:"event,omitempty"`
	Line     string       `json:"line,omitempty"`
	HasEvent *bool        `json:"has_event,omitempty"`
	Note     string       `json:"message,omitempty"`
}

// EventMessage wraps a classified event.
func EventMessage(ev *event.Event) Message {
	return Message{Type: TypeEvent, Event: ev}
}

// LineMessage wraps a raw log line.
func LineMessage(line string, hasEvent bool) Message {
	return Message{Type: TypeLogLine, Line: line, HasEvent: &hasEvent}
}

// SeparatorMessage marks the replay/live boundary.
func SeparatorMessage() Message {
	return Message{Type: TypeSeparator, Note: separatorText}
}

// ClearMessage tells subscribers to drop everything they have rendered.
func ClearMessage(note string) Message {
	return Message{Type: TypeClearAll, Note: note}
}

const (
	// DefaultMaxEvents caps the classified-event history.
	DefaultMaxEvents = 500

	// DefaultMaxLines caps the raw-line history.
	DefaultMaxLines = 1000

	// DefaultQueueSize is each subscriber's queue capacity. Must exceed
	// the combined history caps so a fresh subscriber can hold the full
	// replay.
	DefaultQueueSize = 2000
)

// Options configures a Hub. The zero value selects all defaults.
type Options struct {
	MaxEvents int
	MaxLines  int
	QueueSize int
}

// Subscriber is one bounded outbound queue.
type Subscriber struct {
	ch        chan Message
	closeOnce sync.Once
}

// Ch returns the subscriber's receive channel. It is closed when the
// subscriber is unsubscribed or dropped.
func (s *Subscriber) Ch() <-chan Message {
	return s.ch
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Hub is the fan-out broadcaster.
type Hub struct {
	maxEvents int
	maxLines  int
	queueSize int
	logger    *zap.Logger

	// mu guards subscribers and both history buffers together so that a
	// snapshot-and-subscribe is atomic with respect to concurrent
	// publishes.
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	events []Message
	lines  []Message
}

// New creates a Hub.
func New(opts Options, logger *zap.Logger) *Hub {
	if opts.MaxEvents <= 0 {
		opts.MaxEvents = DefaultMaxEvents
	}
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		maxEvents: opts.MaxEvents,
		maxLines:  opts.MaxLines,
		queueSize: opts.QueueSize,
		logger:    logger,
		subs:      make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new subscriber whose queue is preloaded with the full
// current history: events first, then raw lines, in insertion order. The
// history copy and the registration happen under one lock, so no concurrently
// published message can be missed or observed before the history.
func (h *Hub) Subscribe() *Subscriber {
	history, sub := h.SnapshotAndSubscribe()
	for _, msg := range history {
		// The queue is sized to hold the full history caps, so these
		// sends cannot block.
		select {
		case sub.ch <- msg:
		default:
		}
	}
	return sub
}

// SnapshotAndSubscribe atomically copies the current history and registers a
// new subscriber that will receive only messages published afterwards.
func (h *Hub) SnapshotAndSubscribe() ([]Message, *Subscriber) {
	sub := &Subscriber{ch: make(chan Message, h.queueSize)}

	h.mu.Lock()
	defer h.mu.Unlock()

	history := make([]Message, 0, len(h.events)+len(h.lines))
	history = append(history, h.events...)
	history = append(history, h.lines...)
	h.subs[sub] = struct{}{}
	metrics.SubscribersActive.Set(float64(len(h.subs)))
	return history, sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		metrics.SubscribersActive.Set(float64(len(h.subs)))
	}
	h.mu.Unlock()
	sub.close()
}

// Publish appends the message to the appropriate history buffer and offers it
// to every subscriber. Subscribers with full queues are dropped immediately.
func (h *Hub) Publish(msg Message) {
	h.mu.Lock()

	switch msg.Type {
	case TypeEvent:
		h.events = append(h.events, msg)
		if len(h.events) > h.maxEvents {
			h.events = h.events[len(h.events)-h.maxEvents:]
		}
	case TypeLogLine, TypeSeparator:
		// The separator lives in the raw feed history only; live
		// subscribers still get it once via the broadcast below.
		h.lines = append(h.lines, msg)
		if len(h.lines) > h.maxLines {
			h.lines = h.lines[len(h.lines)-h.maxLines:]
		}
	}

	var dropped []*Subscriber
	for sub := range h.subs {
		select {
		case sub.ch <- msg:
		default:
			dropped = append(dropped, sub)
		}
	}
	for _, sub := range dropped {
		delete(h.subs, sub)
	}
	if len(dropped) > 0 {
		metrics.SubscribersActive.Set(float64(len(h.subs)))
	}
	h.mu.Unlock()

	for _, sub := range dropped {
		sub.close()
		metrics.SubscribersDropped.Inc()
		h.logger.Warn("dropped slow subscriber")
	}
}

// Reset broadcasts a clear marker and empties both history buffers.
// Subscriber membership is preserved.
func (h *Hub) Reset(note string) {
	h.Publish(ClearMessage(note))
	h.mu.Lock()
	h.events = nil
	h.lines = nil
	h.mu.Unlock()
	metrics.SessionResets.Inc()
}

// SubscriberCount returns the current number of subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// HistorySizes returns the current history buffer lengths (events, lines).
func (h *Hub) HistorySizes() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events), len(h.lines)
}
