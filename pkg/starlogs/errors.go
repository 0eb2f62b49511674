package starlogs

import "fmt"

// ParseError is returned when a log line matches an event pattern but
// carries malformed data. The original line is preserved for diagnostics.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("starlogs: parsing %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
