// Package analyzer produces an offline report for a complete log file.
package analyzer

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/starlogs/starlogs-go/internal/parser"
	"github.com/starlogs/starlogs-go/pkg/starlogs"
)

// Report is the result of a whole-file analysis.
type Report struct {
	File       string             `json:"file"`
	Events     []starlogs.Event   `json:"events"`
	Stats      Stats              `json:"stats"`
	SystemInfo *parser.SystemInfo `json:"system_info,omitempty"`
}

// Stats aggregates the per-kind event counts for the file.
type Stats struct {
	TotalEvents int            `json:"total_events"`
	ByKind      map[string]int `json:"events_by_type"`
	FirstEvent  *time.Time     `json:"first_event,omitempty"`
	LastEvent   *time.Time     `json:"last_event,omitempty"`
}

// Analyze reads the whole file once for header system information, then
// streams it through the parser collecting events and statistics.
func Analyze(ctx context.Context, path string, opts ...starlogs.ParseOption) (*Report, error) {
	header, err := readHeader(path, parser.HeaderLineCount)
	if err != nil {
		return nil, err
	}

	report := &Report{
		File:       path,
		SystemInfo: parser.ExtractSystemInfo(header),
		Stats:      Stats{ByKind: make(map[string]int)},
	}

	for ev, err := range starlogs.ParseFile(ctx, path, opts...) {
		if err != nil {
			return report, err
		}
		report.Events = append(report.Events, ev)
		report.Stats.TotalEvents++
		report.Stats.ByKind[string(ev.Kind)]++
		if !ev.Timestamp.IsZero() {
			ts := ev.Timestamp
			if report.Stats.FirstEvent == nil {
				report.Stats.FirstEvent = &ts
			}
			report.Stats.LastEvent = &ts
		}
	}
	return report, nil
}

// readHeader returns up to n leading lines of the file.
func readHeader(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 512*1024)

	lines := make([]string, 0, n)
	for len(lines) < n && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
