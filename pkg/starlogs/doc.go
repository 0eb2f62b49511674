// Package starlogs provides parsing of Star Citizen game log files.
//
// This package allows you to:
//   - Parse Game.log lines into structured combat and vehicle events
//   - Scan whole log files lazily with type and time filters
//   - Build tools like kill feeds, session statistics, etc.
//
// # Basic Usage
//
// To parse a single log line:
//
//	event, err := starlogs.ParseLine(line)
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	} else if event != nil {
//	    fmt.Printf("%s: %s killed %s\n", event.Kind, event.Killer, event.Victim)
//	}
//
// To scan a whole file:
//
//	for ev, err := range starlogs.ParseFile(ctx, "Game.log") {
//	    if err != nil {
//	        log.Printf("error: %v", err)
//	        break
//	    }
//	    fmt.Printf("event: %+v\n", ev)
//	}
//
// Live monitoring with history fan-out is provided by the starlogs server
// binary rather than this package.
//
// # Disclaimer
//
// This is an unofficial tool and is not affiliated with Cloud Imperium Games.
package starlogs
