package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/starlogs/starlogs-go/pkg/starlogs"
)

// ValidFormats lists the supported output formats.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputEvent writes an event in the given format.
func OutputEvent(format string, ev starlogs.Event, w io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(ev, w)
	case "pretty":
		return OutputPretty(ev, w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// OutputJSON writes the event as a single JSON line.
func OutputJSON(ev starlogs.Event, w io.Writer) error {
	return json.NewEncoder(w).Encode(&ev)
}

// OutputPretty writes a human-readable one-line summary.
func OutputPretty(ev starlogs.Event, w io.Writer) error {
	ts := ""
	if !ev.Timestamp.IsZero() {
		ts = ev.Timestamp.Format("15:04:05") + " "
	}

	var desc string
	switch {
	case ev.Kind == starlogs.EventCorpse:
		desc = fmt.Sprintf("† Corpse: %s", ev.Player)
	case ev.Kind == starlogs.EventActorStall:
		desc = fmt.Sprintf("~ %s stalled (%s, %.1fs)", ev.Player, ev.StallType, ev.StallLength)
	case ev.Kind == starlogs.EventDisconnect:
		desc = "! Disconnected"
	case ev.Kind == starlogs.EventSuicide:
		desc = fmt.Sprintf("x %s committed suicide", ev.Victim)
	case ev.Kind.IsVehicleDestroy():
		state := "soft death"
		if ev.Kind == starlogs.EventVehicleDestroyFull {
			state = "destroyed"
		}
		name := ev.Ship
		if name == "" {
			name = ev.Vehicle
		}
		desc = fmt.Sprintf("* %s %s by %s", name, state, ev.Attacker)
		if crew := crewNames(ev); len(crew) > 0 {
			desc += fmt.Sprintf(" (crew: %s)", strings.Join(crew, ", "))
		}
	case ev.Kind.IsKill() || ev.Kind.IsDeath():
		desc = fmt.Sprintf("x %s killed %s", ev.Killer, ev.Victim)
		if ev.Weapon != "" {
			desc += fmt.Sprintf(" with %s", ev.Weapon)
		}
		if ev.Ship != "" {
			desc += fmt.Sprintf(" [%s]", ev.Ship)
		}
	default:
		desc = string(ev.Kind)
	}

	_, err := fmt.Fprintf(w, "%s%s\n", ts, desc)
	return err
}

func crewNames(ev starlogs.Event) []string {
	if ev.Crew == nil {
		return nil
	}
	return ev.Crew.Names()
}
