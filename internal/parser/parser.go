// Package parser classifies raw Star Citizen log lines into structured events.
//
// Parsing is pure: one line in, at most one event out, no I/O and no shared
// state. Pattern evaluation order is significant and fixed; once a pattern
// matches, later patterns are never consulted.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starlogs/starlogs-go/pkg/starlogs/event"
)

// Timestamp pattern: <2025-10-15T07:31:19.238Z>
var timestampPattern = regexp.MustCompile(`<(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z)>`)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Corpse-state confirmation line.
var corpsePattern = regexp.MustCompile(`(?i)<\[ActorState\] Corpse>.*?Player\s+'([^']+)'`)

// Actor stall diagnostic, the primary crash/disconnect indicator.
// Matches: <Actor stall> Actor stall detected, Player: Name, Type: downstream, Length: 3.746040
var actorStallPattern = regexp.MustCompile(
	`(?i)<Actor stall>.*?Actor stall detected,\s*Player:\s*(\w+),\s*Type:\s*(\w+),\s*Length:\s*(\d+(?:\.\d+)?)`)

// Vehicle destroy-level advance.
// Matches: <Vehicle Destruction> CVehicle::OnAdvanceDestroyLevel: Vehicle 'AEGS_Gladius_123...' [123...]
// in zone '...' [pos x: .., y: .., z: .. vel x: .., y: .., z: ..] driven by 'Name' [id]
// advanced from destroy level 0 to 1 caused by 'Name' [id] with 'Combat'
var vehicleDestroyPattern = regexp.MustCompile(
	`(?i)<Vehicle Destruction>.*?CVehicle::OnAdvanceDestroyLevel: ` +
		`Vehicle '([^']+)' \[(\d+)\] in zone '([^']+)' ` +
		`\[pos x: ([-\d.]+), y: ([-\d.]+), z: ([-\d.]+) vel x: ([-\d.]+), y: ([-\d.]+), z: ([-\d.]+)\] ` +
		`driven by '([^']*)' \[(\d+)\] advanced from destroy level (\d+) to (\d+) ` +
		`caused by '([^']*)' \[(\d+)\] with '([^']*)'`)

// Actor kill line.
// Matches: <Actor Death> CActor::Kill: 'victim' [id] in zone '...' killed by 'killer' [id]
// using 'weapon' [Class x] with damage type 'x' from direction x: .., y: .., z: ..
var killPattern = regexp.MustCompile(
	`(?i)<Actor Death> CActor::Kill: '([^']+)' \[(\d+)\] in zone '([^']+)' ` +
		`killed by '([^']+)' \[(\d+)\] using '([^']+)' \[Class ([^\]]+)\] ` +
		`with damage type '([^']+)' from direction x: ([-\d.]+), y: ([-\d.]+), z: ([-\d.]+)`)

// Bare disconnect line, optionally timestamp-prefixed.
var (
	disconnectPattern     = regexp.MustCompile(`(?i)^\s*disconnect\s*$`)
	disconnectWithTsPatte = regexp.MustCompile(`(?i)<.*?>\s*disconnect\s*$`)
)

// Destroy levels a vehicle advances through.
const (
	destroyLevelDisabled  = 1
	destroyLevelDestroyed = 2
)

// Damage type marking on-foot combat.
const fpsDamageType = "bullet"

// npcIndicators are substrings identifying NPC entity names.
var npcIndicators = []string{
	"PU_Pilots",
	"PU_",
	"AI_CRIM",
	"AI_",
	"_NPC_",
	"Criminal-Pilot",
	"Security-",
	"Pirate-",
	"-Pilot_Light_",
	"-Pilot_Medium_",
	"-Pilot_Heavy_",
}

// ExtractTimestamp scans a line for the bracketed ISO-8601 timestamp.
// Returns the zero time if no parsable timestamp is present.
func ExtractTimestamp(line string) time.Time {
	m := timestampPattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}
	}
	ts, err := time.Parse(timestampLayout, m[1])
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Parse classifies a single log line.
//
// Return values:
//   - (*Event, nil): successfully classified event
//   - (nil, nil): line doesn't match any known event pattern (not an error)
//   - (nil, error): line matched a pattern but a numeric capture is malformed;
//     the event is dropped rather than half-published
func Parse(line string) (*event.Event, error) {
	ts := ExtractTimestamp(line)
	trimmed := strings.TrimSpace(line)

	if m := corpsePattern.FindStringSubmatch(line); m != nil {
		return &event.Event{
			Kind:      event.Corpse,
			Timestamp: ts,
			RawLine:   trimmed,
			Player:    m[1],
		}, nil
	}

	if m := actorStallPattern.FindStringSubmatch(line); m != nil {
		length, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return nil, fmt.Errorf("actor stall length %q: %w", m[3], err)
		}
		return &event.Event{
			Kind:        event.ActorStall,
			Timestamp:   ts,
			RawLine:     trimmed,
			Player:      m[1],
			StallType:   m[2],
			StallLength: length,
		}, nil
	}

	if m := vehicleDestroyPattern.FindStringSubmatch(line); m != nil {
		return parseVehicleDestroy(trimmed, ts, m)
	}

	if m := killPattern.FindStringSubmatch(line); m != nil {
		return parseKill(trimmed, ts, m)
	}

	if disconnectPattern.MatchString(line) || disconnectWithTsPatte.MatchString(line) {
		return &event.Event{
			Kind:      event.Disconnect,
			Timestamp: ts,
			RawLine:   trimmed,
		}, nil
	}

	return nil, nil
}

func parseVehicleDestroy(line string, ts time.Time, m []string) (*event.Event, error) {
	vehicleID, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("vehicle id %q: %w", m[2], err)
	}
	pos, err := parseVec3(m[4], m[5], m[6])
	if err != nil {
		return nil, fmt.Errorf("vehicle position: %w", err)
	}
	vel, err := parseVec3(m[7], m[8], m[9])
	if err != nil {
		return nil, fmt.Errorf("vehicle velocity: %w", err)
	}
	driverID, err := strconv.ParseInt(m[11], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("driver id %q: %w", m[11], err)
	}
	fromLevel, err := strconv.Atoi(m[12])
	if err != nil {
		return nil, fmt.Errorf("destroy level %q: %w", m[12], err)
	}
	toLevel, err := strconv.Atoi(m[13])
	if err != nil {
		return nil, fmt.Errorf("destroy level %q: %w", m[13], err)
	}
	attackerID, err := strconv.ParseInt(m[15], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("attacker id %q: %w", m[15], err)
	}

	var kind event.Kind
	switch toLevel {
	case destroyLevelDisabled:
		kind = event.VehicleDestroySoft
	case destroyLevelDestroyed:
		kind = event.VehicleDestroyFull
	default:
		// Levels outside the known progression are not events.
		return nil, nil
	}

	return &event.Event{
		Kind:       kind,
		Timestamp:  ts,
		RawLine:    line,
		Vehicle:    m[1],
		VehicleID:  vehicleID,
		Zone:       m[3],
		Ship:       ShipFromZone(m[1]),
		Position:   pos,
		Velocity:   vel,
		Driver:     m[10],
		DriverID:   driverID,
		FromLevel:  fromLevel,
		ToLevel:    toLevel,
		Attacker:   m[14],
		AttackerID: attackerID,
		Cause:      m[16],
		Crew:       &event.CrewCell{},
	}, nil
}

func parseKill(line string, ts time.Time, m []string) (*event.Event, error) {
	victim, zone, killer := m[1], m[3], m[4]
	victimID, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("victim id %q: %w", m[2], err)
	}
	killerID, err := strconv.ParseInt(m[5], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("killer id %q: %w", m[5], err)
	}
	dir, err := parseVec3(m[9], m[10], m[11])
	if err != nil {
		return nil, fmt.Errorf("kill direction: %w", err)
	}

	damageType := m[8]
	isFps := strings.EqualFold(damageType, fpsDamageType)
	npcVictim := IsNPC(victim)
	npcKiller := IsNPC(killer)

	var kind event.Kind
	switch {
	case victim == killer && victimID == killerID:
		kind = event.Suicide
	case isFps:
		switch {
		case npcKiller && !npcVictim:
			kind = event.FpsDeath
		case !npcKiller && npcVictim:
			kind = event.FpsPveKill
		case !npcKiller && !npcVictim:
			kind = event.FpsPvpKill
		default:
			kind = event.Kill
		}
	default:
		switch {
		case npcKiller && !npcVictim:
			kind = event.Death
		case !npcKiller && npcVictim:
			kind = event.PveKill
		case !npcKiller && !npcVictim:
			kind = event.PvpKill
		default:
			kind = event.Kill
		}
	}

	return &event.Event{
		Kind:        kind,
		Timestamp:   ts,
		RawLine:     line,
		Victim:      victim,
		VictimID:    victimID,
		Killer:      killer,
		KillerID:    killerID,
		Weapon:      m[6],
		WeaponClass: m[7],
		DamageType:  damageType,
		Zone:        zone,
		Ship:        ShipFromZone(zone),
		Direction:   dir,
		IsPvp:       kind != event.Suicide && !npcVictim && !npcKiller,
		IsPve:       !npcKiller && npcVictim,
		IsFps:       isFps,
	}, nil
}

func parseVec3(x, y, z string) (*event.Vec3, error) {
	fx, err := strconv.ParseFloat(x, 64)
	if err != nil {
		return nil, fmt.Errorf("x %q: %w", x, err)
	}
	fy, err := strconv.ParseFloat(y, 64)
	if err != nil {
		return nil, fmt.Errorf("y %q: %w", y, err)
	}
	fz, err := strconv.ParseFloat(z, 64)
	if err != nil {
		return nil, fmt.Errorf("z %q: %w", z, err)
	}
	return &event.Vec3{X: fx, Y: fy, Z: fz}, nil
}

// IsNPC reports whether an entity name matches any NPC naming convention.
func IsNPC(name string) bool {
	for _, indicator := range npcIndicators {
		if strings.Contains(name, indicator) {
			return true
		}
	}
	return false
}
