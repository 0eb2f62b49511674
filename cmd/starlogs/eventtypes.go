package main

import (
	"fmt"
	"strings"

	"github.com/starlogs/starlogs-go/pkg/starlogs"
)

// ValidEventTypeNames returns the valid event type names for flag help,
// validation, and completion.
func ValidEventTypeNames() []string {
	return starlogs.EventKindNames()
}

// NormalizeEventTypes converts CLI string values to starlogs.EventKind slice.
// It handles case-insensitivity, whitespace trimming, and duplicate removal.
func NormalizeEventTypes(values []string) ([]starlogs.EventKind, error) {
	if len(values) == 0 {
		return nil, nil
	}

	result := make([]starlogs.EventKind, 0, len(values))
	seen := make(map[starlogs.EventKind]struct{})

	for _, raw := range values {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			return nil, fmt.Errorf("empty event type provided (input: %q); valid types: %s", raw, strings.Join(ValidEventTypeNames(), ", "))
		}

		k, ok := starlogs.ParseEventKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown event type %q (valid: %s)", raw, strings.Join(ValidEventTypeNames(), ", "))
		}

		if _, dup := seen[k]; dup {
			continue // ignore duplicates silently
		}
		seen[k] = struct{}{}
		result = append(result, k)
	}

	return result, nil
}

// RejectOverlap returns an error if any event type is in both includes and
// excludes.
func RejectOverlap(includes, excludes []starlogs.EventKind) error {
	ex := make(map[starlogs.EventKind]struct{}, len(excludes))
	for _, k := range excludes {
		ex[k] = struct{}{}
	}
	for _, k := range includes {
		if _, ok := ex[k]; ok {
			return fmt.Errorf("event type %q cannot be both included and excluded", k)
		}
	}
	return nil
}
