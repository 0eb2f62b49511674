package starlogs

import (
	"bufio"
	"context"
	"errors"
	"iter"
	"os"

	"github.com/starlogs/starlogs-go/internal/parser"
)

// ParseLine parses a single game log line into an Event.
//
// Return values:
//   - (*Event, nil): Successfully parsed event
//   - (nil, nil): Line doesn't match any known event pattern (not an error)
//   - (nil, error): Line partially matches but is malformed
//
// Example:
//
//	event, err := starlogs.ParseLine(line)
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	} else if event != nil {
//	    fmt.Printf("%s killed %s\n", event.Killer, event.Victim)
//	}
//	// event == nil && err == nil means line is not a recognized event
func ParseLine(line string) (*Event, error) {
	return parser.Parse(line)
}

// ParseFile parses a game log file and returns an iterator over events.
// The file is opened lazily on first iteration, so the returned iterator
// is cheap to create but must be consumed to release resources.
//
// The iterator yields (Event, error) pairs. When an error occurs:
//   - File open errors: yields (Event{}, error) once and stops
//   - Parse errors: skips the line by default, or stops if WithParseStopOnError is set
//   - Context cancellation: yields (Event{}, ctx.Err()) and stops
//
// Example:
//
//	for ev, err := range starlogs.ParseFile(ctx, "Game.log") {
//	    if err != nil {
//	        log.Printf("error: %v", err)
//	        break
//	    }
//	    fmt.Printf("event: %+v\n", ev)
//	}
func ParseFile(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[Event, error] {
	// Validate path upfront
	if path == "" {
		return func(yield func(Event, error) bool) {
			yield(Event{}, errors.New("starlogs: path required"))
		}
	}

	cfg := applyParseOptions(opts)

	return func(yield func(Event, error) bool) {
		// Lazy file open
		file, err := os.Open(path)
		if err != nil {
			yield(Event{}, err)
			return
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		// Increase buffer size for long lines
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 512*1024)

		for scanner.Scan() {
			// Context cancellation check
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}

			line := scanner.Text()
			ev, err := parser.Parse(line)
			if err != nil {
				if cfg.stopOnError {
					yield(Event{}, &ParseError{Line: line, Err: err})
					return
				}
				// Skip malformed lines by default
				continue
			}
			if ev == nil {
				continue // Not a recognized event
			}

			// Apply event kind filter
			if !cfg.filter.Allows(ev.Kind) {
				continue
			}

			// Apply time range filter
			if !cfg.since.IsZero() && ev.Timestamp.Before(cfg.since) {
				continue
			}
			if !cfg.until.IsZero() && !ev.Timestamp.Before(cfg.until) {
				continue
			}

			if !yield(*ev, nil) {
				return // Consumer requested stop (break)
			}
		}

		// Check for scanner errors
		if err := scanner.Err(); err != nil {
			yield(Event{}, err)
		}
	}
}

// ParseFileAll is a convenience function that parses a log file and collects
// all events into a slice. Stops on first error and returns events collected
// so far.
//
// For large files, consider using ParseFile directly to avoid loading all
// events into memory at once.
func ParseFileAll(ctx context.Context, path string, opts ...ParseOption) ([]Event, error) {
	seq := ParseFile(ctx, path, opts...)
	events := make([]Event, 0, 256)

	for ev, err := range seq {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}
