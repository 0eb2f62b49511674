package starlogs

import "time"

// ParseOption configures ParseFile behavior using the functional options
// pattern.
type ParseOption func(*parseConfig)

// parseConfig holds internal configuration for parsing.
type parseConfig struct {
	filter      *Filter
	since       time.Time
	until       time.Time
	stopOnError bool
}

func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := &parseConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithParseIncludeKinds filters events to only include the specified kinds.
// If called multiple times, only the last call takes effect.
func WithParseIncludeKinds(kinds ...EventKind) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &Filter{}
		}
		c.filter.include = make(map[EventKind]struct{}, len(kinds))
		for _, k := range kinds {
			c.filter.include[k] = struct{}{}
		}
	}
}

// WithParseExcludeKinds filters out events of the specified kinds.
// Exclude takes precedence over include.
func WithParseExcludeKinds(kinds ...EventKind) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &Filter{}
		}
		c.filter.exclude = make(map[EventKind]struct{}, len(kinds))
		for _, k := range kinds {
			c.filter.exclude[k] = struct{}{}
		}
	}
}

// WithParseFilter sets both include and exclude kind filters.
func WithParseFilter(filter *Filter) ParseOption {
	return func(c *parseConfig) {
		c.filter = filter
	}
}

// WithParseTimeRange filters events to only include those within the time
// range. since is inclusive, until is exclusive.
// Zero values are ignored (no filtering for that boundary).
func WithParseTimeRange(since, until time.Time) ParseOption {
	return func(c *parseConfig) {
		c.since = since
		c.until = until
	}
}

// WithParseSince filters events to only include those at or after the given
// time.
func WithParseSince(since time.Time) ParseOption {
	return func(c *parseConfig) {
		c.since = since
	}
}

// WithParseUntil filters events to only include those before the given time.
func WithParseUntil(until time.Time) ParseOption {
	return func(c *parseConfig) {
		c.until = until
	}
}

// WithParseStopOnError stops parsing on the first error instead of skipping.
// Default: false (skip malformed lines and continue).
func WithParseStopOnError(stop bool) ParseOption {
	return func(c *parseConfig) {
		c.stopOnError = stop
	}
}
