// Package correlate joins vehicle destruction events with the occupant
// deaths that follow them on separate log lines.
//
// The game reports a destroyed vehicle and the deaths of its occupants as
// independent lines a few milliseconds apart. The window keeps each pending
// destruction keyed by vehicle id for a short horizon; an occupant death whose
// damage type marks vehicle destruction and whose zone names that vehicle id
// is folded into the destruction event's crew list. The mutation goes through
// the event's shared crew cell, so every holder of the already-published event
// sees it.
package correlate

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/starlogs/starlogs-go/pkg/starlogs/event"
)

const (
	// DefaultHorizon is how long a destruction entry stays eligible.
	DefaultHorizon = 10 * time.Second

	// DefaultProximity is the maximum timestamp distance between a
	// destruction and an occupant death for them to be joined.
	DefaultProximity = 200 * time.Millisecond
)

// vehicleDestructionDamage marks a death as caused by vehicle destruction.
const vehicleDestructionDamage = "vehicledestruction"

// Occupant deaths carry the destroyed vehicle's entity id as a long trailing
// numeric suffix of the zone string.
var zoneVehicleID = regexp.MustCompile(`_(\d{9,})$`)

type pending struct {
	ev *event.Event
	ts time.Time
}

// Window is the keyed cache of pending vehicle destructions.
type Window struct {
	horizon   time.Duration
	proximity time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	entries map[int64]pending
}

// New creates a correlation window. Zero durations select the defaults.
func New(horizon, proximity time.Duration, logger *zap.Logger) *Window {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	if proximity <= 0 {
		proximity = DefaultProximity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Window{
		horizon:   horizon,
		proximity: proximity,
		logger:    logger,
		entries:   make(map[int64]pending),
	}
}

// Observe inspects a classified event before publication.
//
// Vehicle destructions are registered (replacing any live entry for the same
// vehicle id). Occupant deaths are joined into a matching live entry; whether
// or not a match is found, the death event itself publishes unchanged.
func (w *Window) Observe(ev *event.Event) {
	switch {
	case ev.Kind.IsVehicleDestroy():
		w.insert(ev)
	case ev.Victim != "":
		w.join(ev)
	}
}

func (w *Window) insert(ev *event.Event) {
	if ev.VehicleID == 0 || ev.Timestamp.IsZero() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	// Purge expired entries before the insertion check.
	cutoff := ev.Timestamp.Add(-w.horizon)
	for id, p := range w.entries {
		if p.ts.Before(cutoff) {
			delete(w.entries, id)
		}
	}
	w.entries[ev.VehicleID] = pending{ev: ev, ts: ev.Timestamp}
}

func (w *Window) join(ev *event.Event) {
	if !strings.EqualFold(ev.DamageType, vehicleDestructionDamage) || ev.Timestamp.IsZero() {
		return
	}
	m := zoneVehicleID.FindStringSubmatch(ev.Zone)
	if m == nil {
		return
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return
	}

	w.mu.Lock()
	p, ok := w.entries[id]
	w.mu.Unlock()
	if !ok {
		return
	}

	delta := ev.Timestamp.Sub(p.ts)
	if delta < 0 {
		delta = -delta
	}
	if delta > w.proximity {
		return
	}

	p.ev.Crew.Append(ev.Victim)
	w.logger.Debug("correlated occupant death",
		zap.Int64("vehicle_id", id),
		zap.String("occupant", ev.Victim),
		zap.Duration("delta", delta))
}

// Reset discards all pending entries. Called on session reset.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = make(map[int64]pending)
}
