package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlogs/starlogs-go/pkg/starlogs/event"
)

func drain(sub *Subscriber) []Message {
	var out []Message
	for {
		select {
		case msg, ok := <-sub.Ch():
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

func killEvent(victim string) *event.Event {
	return &event.Event{Kind: event.PvpKill, Victim: victim, Killer: "Someone"}
}

func TestSubscribe_ReplaysHistoryInOrder(t *testing.T) {
	h := New(Options{}, nil)

	h.Publish(EventMessage(killEvent("First")))
	h.Publish(LineMessage("raw line one", false))
	h.Publish(EventMessage(killEvent("Second")))
	h.Publish(LineMessage("raw line two", true))

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	got := drain(sub)
	require.Len(t, got, 4)

	// Events replay first, then raw lines, each in insertion order.
	assert.Equal(t, TypeEvent, got[0].Type)
	assert.Equal(t, "First", got[0].Event.Victim)
	assert.Equal(t, TypeEvent, got[1].Type)
	assert.Equal(t, "Second", got[1].Event.Victim)
	assert.Equal(t, TypeLogLine, got[2].Type)
	assert.Equal(t, "raw line one", got[2].Line)
	assert.Equal(t, TypeLogLine, got[3].Type)
	assert.Equal(t, "raw line two", got[3].Line)
}

func TestPublish_ReachesLiveSubscribers(t *testing.T) {
	h := New(Options{}, nil)

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	h.Publish(EventMessage(killEvent("Live")))

	got := drain(sub)
	require.Len(t, got, 1)
	assert.Equal(t, "Live", got[0].Event.Victim)
}

func TestHistory_Caps(t *testing.T) {
	h := New(Options{MaxEvents: 3, MaxLines: 2, QueueSize: 10}, nil)

	for i := 0; i < 5; i++ {
		h.Publish(EventMessage(killEvent("victim")))
		h.Publish(LineMessage("line", false))
	}

	events, lines := h.HistorySizes()
	assert.Equal(t, 3, events)
	assert.Equal(t, 2, lines)
}

func TestPublish_DropsSlowSubscriber(t *testing.T) {
	h := New(Options{QueueSize: 2000}, nil)

	slow := h.Subscribe()
	require.Equal(t, 1, h.SubscriberCount())

	// Fill the queue past capacity without consuming.
	for i := 0; i < 2001; i++ {
		h.Publish(LineMessage("flood", false))
	}

	assert.Equal(t, 0, h.SubscriberCount(), "slow subscriber must be dropped")

	// The channel is closed so a consumer observes the drop.
	for range slow.Ch() {
	}
}

func TestPublish_FastSubscriberSurvives(t *testing.T) {
	h := New(Options{MaxEvents: 5, MaxLines: 5, QueueSize: 10}, nil)

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	for i := 0; i < 8; i++ {
		h.Publish(LineMessage("line", false))
		drain(sub)
	}

	assert.Equal(t, 1, h.SubscriberCount())
}

func TestSeparator_LineHistoryOnly(t *testing.T) {
	h := New(Options{}, nil)

	h.Publish(SeparatorMessage())

	events, lines := h.HistorySizes()
	assert.Equal(t, 0, events)
	assert.Equal(t, 1, lines)

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	got := drain(sub)
	require.Len(t, got, 1)
	assert.Equal(t, TypeSeparator, got[0].Type)
	assert.Contains(t, got[0].Note, "END OF REPLAY")
}

func TestReset_ClearsHistoryKeepsMembership(t *testing.T) {
	h := New(Options{}, nil)

	h.Publish(EventMessage(killEvent("Old")))
	h.Publish(LineMessage("old line", false))

	sub := h.Subscribe()
	drain(sub)

	h.Reset("Reprocessing log file")

	// The clear marker reaches existing subscribers but is not retained.
	got := drain(sub)
	require.Len(t, got, 1)
	assert.Equal(t, TypeClearAll, got[0].Type)
	assert.Equal(t, "Reprocessing log file", got[0].Note)

	events, lines := h.HistorySizes()
	assert.Equal(t, 0, events)
	assert.Equal(t, 0, lines)
	assert.Equal(t, 1, h.SubscriberCount())

	// New subscribers see nothing from before the reset.
	fresh := h.Subscribe()
	defer h.Unsubscribe(fresh)
	defer h.Unsubscribe(sub)
	assert.Empty(t, drain(fresh))
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	h := New(Options{}, nil)

	sub := h.Subscribe()
	h.Unsubscribe(sub)
	h.Unsubscribe(sub)

	assert.Equal(t, 0, h.SubscriberCount())

	// Publishing after unsubscribe must not panic on the closed channel.
	h.Publish(LineMessage("after", false))
}

func TestSnapshotAndSubscribe(t *testing.T) {
	h := New(Options{}, nil)

	h.Publish(EventMessage(killEvent("Historical")))

	history, sub := h.SnapshotAndSubscribe()
	defer h.Unsubscribe(sub)

	require.Len(t, history, 1)
	assert.Equal(t, "Historical", history[0].Event.Victim)

	// Messages published after the snapshot arrive on the channel only.
	h.Publish(EventMessage(killEvent("Live")))
	got := drain(sub)
	require.Len(t, got, 1)
	assert.Equal(t, "Live", got[0].Event.Victim)
}

func TestLineMessage_HasEventFlag(t *testing.T) {
	with := LineMessage("matched", true)
	without := LineMessage("unmatched", false)

	require.NotNil(t, with.HasEvent)
	assert.True(t, *with.HasEvent)
	require.NotNil(t, without.HasEvent)
	assert.False(t, *without.HasEvent)
}
