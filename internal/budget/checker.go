package budget

import (
	"time"

	"perflab/internal/config"
	"perflab/internal/host"
)

const (
	StatusHealthy  = "OK"
	StatusWarning  = "WARN"
	StatusCritical = "CRIT"
)

// Check names, also used as keys by the report builder.
const (
	CheckMaterialized = "Materialized Nodes"
	CheckCompute      = "Compute Time"
	CheckFrameRate    = "FPS Ceiling"
	CheckWindowRatio  = "Window Ratio"
)

type CheckResult struct {
	Name   string
	Value  float64
	Unit   string
	Status string
}

func getStatus(value float64, t config.Thresholds) string {
	if value > t.Critical {
		return StatusCritical
	}
	if value > t.Warning {
		return StatusWarning
	}
	return StatusHealthy
}

// getStatusBelow is getStatus for metrics where smaller is worse.
func getStatusBelow(value float64, t config.Thresholds) string {
	if value < t.Critical {
		return StatusCritical
	}
	if value < t.Warning {
		return StatusWarning
	}
	return StatusHealthy
}

// Evaluate judges one render pass against the frame budget.
func Evaluate(p host.Pass, cfg config.Budget) []CheckResult {
	var result []CheckResult

	// Nodes the host has to keep mounted
	result = append(result, CheckResult{
		Name:   CheckMaterialized,
		Value:  float64(p.Materialized),
		Status: getStatus(float64(p.Materialized), cfg.MaterializedNodes),
	})

	// Time spent computing and materializing the window
	ms := float64(p.Compute) / float64(time.Millisecond)
	result = append(result, CheckResult{
		Name:   CheckCompute,
		Value:  ms,
		Unit:   "ms",
		Status: getStatus(ms, cfg.ComputeMillis),
	})

	// Best frame rate this pass allows; an instant pass is capped at 1000.
	fps := 1000.0
	if ms > 1 {
		fps = 1000 / ms
	}
	result = append(result, CheckResult{
		Name:   CheckFrameRate,
		Value:  fps,
		Unit:   "fps",
		Status: getStatusBelow(fps, cfg.FrameRate),
	})

	// Share of the collection that is live
	ratio := 0.0
	if p.ItemCount > 0 {
		ratio = float64(p.Materialized) / float64(p.ItemCount) * 100
	}
	result = append(result, CheckResult{
		Name:   CheckWindowRatio,
		Value:  ratio,
		Unit:   "%",
		Status: getStatus(ratio, cfg.WindowRatio),
	})

	return result
}

// Worst returns the most severe status in results.
func Worst(results []CheckResult) string {
	worst := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusCritical:
			return StatusCritical
		case StatusWarning:
			worst = StatusWarning
		}
	}
	return worst
}
