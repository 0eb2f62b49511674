// Package event defines the core Event type for Star Citizen log parsing.
//
// This package is separated from the main starlogs package to avoid import
// cycles between pkg/starlogs and internal/parser.
package event

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
)

// Kind represents the kind of Star Citizen log event.
type Kind string

const (
	// Disconnect indicates a bare disconnect line.
	Disconnect Kind = "disconnect"

	// ActorStall indicates a stall/crash diagnostic for a player.
	ActorStall Kind = "actor_stall"

	// Kill is a generic kill where neither side is a player (NPC vs NPC).
	Kill Kind = "kill"

	// Death indicates a player was killed by an NPC in vehicle combat.
	Death Kind = "death"

	// PveKill indicates a player killed an NPC in vehicle combat.
	PveKill Kind = "pve_kill"

	// PvpKill indicates a player killed another player in vehicle combat.
	PvpKill Kind = "pvp_kill"

	// FpsPveKill indicates a player killed an NPC on foot.
	FpsPveKill Kind = "fps_pve_kill"

	// FpsPvpKill indicates a player killed another player on foot.
	FpsPvpKill Kind = "fps_pvp_kill"

	// FpsDeath indicates a player was killed by an NPC on foot.
	FpsDeath Kind = "fps_death"

	// Suicide indicates killer and victim are the same actor.
	Suicide Kind = "suicide"

	// VehicleDestroySoft indicates a vehicle advanced to the disabled state.
	VehicleDestroySoft Kind = "vehicle_destroy_soft"

	// VehicleDestroyFull indicates a vehicle advanced to the destroyed state.
	VehicleDestroyFull Kind = "vehicle_destroy_full"

	// Corpse indicates a corpse-state confirmation for a player.
	Corpse Kind = "corpse"
)

// allKinds is the canonical list of all event kinds.
// Add new event kinds here when extending the parser.
var allKinds = []Kind{
	Disconnect, ActorStall, Kill, Death, PveKill, PvpKill,
	FpsPveKill, FpsPvpKill, FpsDeath, Suicide,
	VehicleDestroySoft, VehicleDestroyFull, Corpse,
}

// KindNames returns a sorted list of all valid event kind names.
// This is the single source of truth for event kind enumeration.
func KindNames() []string {
	names := make([]string, len(allKinds))
	for i, k := range allKinds {
		names[i] = string(k)
	}
	sort.Strings(names)
	return names
}

// kindByName maps lowercase string names to Kind for efficient lookup.
// Built once from allKinds at package initialization.
var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(allKinds))
	for _, k := range allKinds {
		m[string(k)] = k
	}
	return m
}()

// ParseKind converts a string to Kind if valid.
// It is case-insensitive and trims leading/trailing whitespace.
// Returns the kind and true if found, zero value and false otherwise.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	k, ok := kindByName[name]
	return k, ok
}

// IsKill reports whether the kind counts as a kill in session statistics.
func (k Kind) IsKill() bool {
	switch k {
	case Kill, PveKill, PvpKill, FpsPveKill, FpsPvpKill:
		return true
	}
	return false
}

// IsDeath reports whether the kind counts as a death in session statistics.
func (k Kind) IsDeath() bool {
	return k == Death || k == FpsDeath
}

// IsVehicleDestroy reports whether the kind is a vehicle destruction event.
func (k Kind) IsVehicleDestroy() bool {
	return k == VehicleDestroySoft || k == VehicleDestroyFull
}

// isActorKill reports whether the kind came from an actor-kill line and
// therefore carries participant fields.
func (k Kind) isActorKill() bool {
	return k.IsKill() || k.IsDeath() || k == Suicide
}

// Vec3 is a spatial vector captured from a log line.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CrewCell is a shared, lock-guarded occupant list attached to a vehicle
// destruction event. The correlation window and every hub history entry alias
// the same cell, so an occupant appended after the event was first published
// is visible to all later serializations of that event.
type CrewCell struct {
	mu    sync.Mutex
	names []string
}

// Append adds an occupant name to the cell.
func (c *CrewCell) Append(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names, name)
}

// Names returns a copy of the occupant names.
func (c *CrewCell) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Count returns the number of occupants recorded so far.
func (c *CrewCell) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.names)
}

// Event represents a parsed Star Citizen log event.
//
// Exactly one Kind is set per event. Only the fields relevant to that kind
// are populated; JSON serialization omits the rest.
type Event struct {
	// Kind is the event kind.
	Kind Kind

	// Timestamp is when the event occurred (from the log line).
	// Zero if the line carried no parsable timestamp.
	Timestamp time.Time

	// RawLine is the original log line, trimmed.
	RawLine string

	// Player is the subject of an actor stall or corpse event.
	Player string

	// StallType and StallLength describe an actor stall.
	StallType   string
	StallLength float64

	// Kill participants.
	Victim   string
	VictimID int64
	Killer   string
	KillerID int64

	// Weapon attribution for kill events.
	Weapon      string
	WeaponClass string
	DamageType  string

	// Zone is the raw zone string from the line; Ship is the readable
	// ship/location name derived from it, if recognizable.
	Zone string
	Ship string

	// Direction is the damage direction for kill events.
	Direction *Vec3

	// Derived combat flags for kill events.
	IsPvp bool
	IsPve bool
	IsFps bool

	// Vehicle destruction fields.
	Vehicle    string
	VehicleID  int64
	Driver     string
	DriverID   int64
	Attacker   string
	AttackerID int64
	FromLevel  int
	ToLevel    int
	Position   *Vec3
	Velocity   *Vec3
	Cause      string

	// Crew is the shared occupant cell for vehicle destruction events.
	// Nil for every other kind.
	Crew *CrewCell
}

// eventWire is the JSON shape of an Event. Field names follow the original
// dashboard protocol.
type eventWire struct {
	Kind        Kind     `json:"type"`
	Timestamp   string   `json:"timestamp,omitempty"`
	RawLine     string   `json:"raw_line,omitempty"`
	Player      string   `json:"player,omitempty"`
	StallType   string   `json:"stall_type,omitempty"`
	StallLength float64  `json:"length,omitempty"`
	Victim      string   `json:"victim,omitempty"`
	VictimID    int64    `json:"victim_id,omitempty"`
	Killer      string   `json:"killer,omitempty"`
	KillerID    int64    `json:"killer_id,omitempty"`
	Weapon      string   `json:"weapon,omitempty"`
	WeaponClass string   `json:"weapon_class,omitempty"`
	DamageType  string   `json:"damage_type,omitempty"`
	Zone        string   `json:"zone,omitempty"`
	Ship        string   `json:"ship,omitempty"`
	Direction   *Vec3    `json:"direction,omitempty"`
	IsPvp       *bool    `json:"is_pvp,omitempty"`
	IsPve       *bool    `json:"is_pve,omitempty"`
	IsFps       *bool    `json:"is_fps,omitempty"`
	Vehicle     string   `json:"vehicle,omitempty"`
	VehicleID   int64    `json:"vehicle_id,omitempty"`
	Driver      string   `json:"driver,omitempty"`
	DriverID    int64    `json:"driver_id,omitempty"`
	Attacker    string   `json:"attacker,omitempty"`
	AttackerID  int64    `json:"attacker_id,omitempty"`
	FromLevel   *int     `json:"from_level,omitempty"`
	ToLevel     *int     `json:"to_level,omitempty"`
	Position    *Vec3    `json:"position,omitempty"`
	Velocity    *Vec3    `json:"velocity,omitempty"`
	Cause       string   `json:"cause,omitempty"`
	Crew        []string `json:"crew,omitempty"`
	CrewCount   *int     `json:"crew_count,omitempty"`
}

// MarshalJSON serializes the event, reading the crew cell under its lock so a
// concurrent correlation update is either fully visible or not at all.
func (e *Event) MarshalJSON() ([]byte, error) {
	w := eventWire{
		Kind:        e.Kind,
		RawLine:     e.RawLine,
		Player:      e.Player,
		StallType:   e.StallType,
		StallLength: e.StallLength,
		Victim:      e.Victim,
		VictimID:    e.VictimID,
		Killer:      e.Killer,
		KillerID:    e.KillerID,
		Weapon:      e.Weapon,
		WeaponClass: e.WeaponClass,
		DamageType:  e.DamageType,
		Zone:        e.Zone,
		Ship:        e.Ship,
		Direction:   e.Direction,
		Vehicle:     e.Vehicle,
		VehicleID:   e.VehicleID,
		Driver:      e.Driver,
		DriverID:    e.DriverID,
		Attacker:    e.Attacker,
		AttackerID:  e.AttackerID,
		Position:    e.Position,
		Velocity:    e.Velocity,
		Cause:       e.Cause,
	}
	if !e.Timestamp.IsZero() {
		w.Timestamp = e.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	if e.Kind.isActorKill() {
		pvp, pve, fps := e.IsPvp, e.IsPve, e.IsFps
		w.IsPvp, w.IsPve, w.IsFps = &pvp, &pve, &fps
	}
	if e.Kind.IsVehicleDestroy() {
		from, to := e.FromLevel, e.ToLevel
		w.FromLevel, w.ToLevel = &from, &to
		count := 0
		if e.Crew != nil {
			w.Crew = e.Crew.Names()
			count = len(w.Crew)
		}
		w.CrewCount = &count
	}
	return json.Marshal(w)
}
