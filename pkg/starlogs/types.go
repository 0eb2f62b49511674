package starlogs

import "github.com/starlogs/starlogs-go/pkg/starlogs/event"

// Re-export event types for convenience.
// Users can import just "github.com/starlogs/starlogs-go/pkg/starlogs"
// and use starlogs.Event, starlogs.EventKill, etc.

// Event represents a parsed game log event.
type Event = event.Event

// EventKind represents the kind of game log event.
type EventKind = event.Kind

// Event kind constants.
const (
	EventDisconnect         = event.Disconnect
	EventActorStall         = event.ActorStall
	EventKill               = event.Kill
	EventDeath              = event.Death
	EventPveKill            = event.PveKill
	EventPvpKill            = event.PvpKill
	EventFpsPveKill         = event.FpsPveKill
	EventFpsPvpKill         = event.FpsPvpKill
	EventFpsDeath           = event.FpsDeath
	EventSuicide            = event.Suicide
	EventVehicleDestroySoft = event.VehicleDestroySoft
	EventVehicleDestroyFull = event.VehicleDestroyFull
	EventCorpse             = event.Corpse
)

// EventKindNames returns the names of all event kinds, for flag completion
// and validation.
func EventKindNames() []string {
	return event.KindNames()
}

// ParseEventKind resolves a kind name to its constant.
func ParseEventKind(name string) (EventKind, bool) {
	return event.ParseKind(name)
}
