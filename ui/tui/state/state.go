package state

import (
	"time"

	"perflab/internal/budget"
	"perflab/internal/host"
	"perflab/internal/sysstats"
	"perflab/internal/telemetry"
)

type Page int

const (
	PageMenu      Page = iota
	PageList           // "Virtual List"
	PageTelemetry      // "Render Telemetry"
	PageConsole        // "Pass Console"
)

// HistoryLen is how many passes the charts keep.
const HistoryLen = 60

// AppState holds the latest frame and everything measured about it.
type AppState struct {
	Frame          host.Frame
	Checks         []budget.CheckResult
	Summary        *telemetry.Summary
	Sample         *sysstats.Sample
	LastUpdate     time.Time
	Err            error
	NodeHistory    []float64
	ComputeHistory []float64 // microseconds
	ConsoleLogs    []string
	Selected       int
	CurrentPage    Page
}

// PushPass appends one pass to the chart histories.
func (s *AppState) PushPass(p host.Pass) {
	s.NodeHistory = appendBounded(s.NodeHistory, float64(p.Materialized), HistoryLen)
	s.ComputeHistory = appendBounded(s.ComputeHistory, float64(p.Compute.Microseconds()), HistoryLen)
}

// Log appends a console line, keeping at most max lines.
func (s *AppState) Log(line string, max int) {
	s.ConsoleLogs = append(s.ConsoleLogs, line)
	if max > 0 && len(s.ConsoleLogs) > max {
		s.ConsoleLogs = s.ConsoleLogs[len(s.ConsoleLogs)-max:]
	}
}

func appendBounded(h []float64, v float64, n int) []float64 {
	h = append(h, v)
	if len(h) > n {
		h = h[len(h)-n:]
	}
	return h
}
