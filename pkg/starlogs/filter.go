package starlogs

// Filter holds pre-compiled include/exclude sets for efficient event
// filtering. It is created once and consulted per event.
type Filter struct {
	include map[EventKind]struct{}
	exclude map[EventKind]struct{}
}

// NewFilter creates a Filter from include and exclude slices.
// Returns nil if both slices are empty (no filtering needed).
func NewFilter(include, exclude []EventKind) *Filter {
	if len(include) == 0 && len(exclude) == 0 {
		return nil
	}

	f := &Filter{}

	if len(include) > 0 {
		f.include = make(map[EventKind]struct{}, len(include))
		for _, k := range include {
			f.include[k] = struct{}{}
		}
	}

	if len(exclude) > 0 {
		f.exclude = make(map[EventKind]struct{}, len(exclude))
		for _, k := range exclude {
			f.exclude[k] = struct{}{}
		}
	}

	return f
}

// Allows returns true if the given event kind passes the filter.
// If include is non-empty, only kinds in include are allowed.
// Kinds in exclude are always rejected (exclude takes precedence).
func (f *Filter) Allows(k EventKind) bool {
	if f == nil {
		return true
	}

	if len(f.include) > 0 {
		if _, ok := f.include[k]; !ok {
			return false
		}
	}

	if len(f.exclude) > 0 {
		if _, ok := f.exclude[k]; ok {
			return false
		}
	}

	return true
}
