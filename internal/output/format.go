package output

import (
	"fmt"
	"strings"

	"perflab/internal/budget"
	"perflab/internal/host"
	"perflab/internal/sysstats"
	"perflab/internal/telemetry"
)

// Section constants to avoid hardcoded strings
const (
	SectionWindow    = "window"
	SectionBudget    = "budget"
	SectionTelemetry = "telemetry"
	SectionProcess   = "process"
)

// UI/view-model types (no printing here)
type Item struct {
	Key    string
	Label  string
	Value  float64
	Unit   string
	Status string
	Note   string
}

type Section struct {
	ID    string
	Title string
	Items []Item
}

type Report struct {
	Sections []Section
	Mode     string // "windowed" or "render all"
	Worst    string // most severe budget status
}

// BuildReport converts a frame, its budget checks and the optional
// telemetry and process readings into UI-ready sections.
func BuildReport(f host.Frame, checks []budget.CheckResult, summary *telemetry.Summary, sample *sysstats.Sample) Report {
	mode := "render all"
	if f.Virtualized {
		mode = "windowed"
	}

	win := Section{ID: SectionWindow, Title: "Window"}
	win.Items = append(win.Items,
		Item{Key: "range", Label: "Range", Note: f.Range.String()},
		Item{Key: "materialized", Label: "Materialized", Value: float64(len(f.Instruction.Items))},
		Item{Key: "item_count", Label: "Items", Value: float64(f.ItemCount)},
		Item{Key: "scroll_offset", Label: "Scroll Offset", Value: f.Viewport.ScrollOffset, Unit: "u"},
		Item{Key: "viewport_extent", Label: "Viewport", Value: f.Viewport.ViewportExtent, Unit: "u"},
		Item{Key: "total_extent", Label: "Total Extent", Value: f.Instruction.TotalExtent, Unit: "u"},
		Item{Key: "mode", Label: "Mode", Note: mode},
	)

	bud := Section{ID: SectionBudget, Title: "Frame Budget"}
	for _, r := range checks {
		bud.Items = append(bud.Items, Item{
			Key:    keyFor(r.Name),
			Label:  r.Name,
			Value:  r.Value,
			Unit:   r.Unit,
			Status: r.Status,
		})
	}

	sections := []Section{win, bud}

	if summary != nil {
		sections = append(sections, Section{
			ID:    SectionTelemetry,
			Title: "Telemetry",
			Items: []Item{
				{Key: "passes", Label: "Passes", Value: float64(summary.Passes)},
				{Key: "avg_materialized", Label: "Avg Materialized", Value: summary.AvgMaterialized},
				{Key: "max_materialized", Label: "Max Materialized", Value: float64(summary.MaxMaterialized)},
				{Key: "avg_compute", Label: "Avg Compute", Value: summary.AvgComputeUS, Unit: "us"},
				{Key: "p95_compute", Label: "P95 Compute", Value: summary.P95ComputeUS, Unit: "us"},
				{Key: "virtualized_pct", Label: "Windowed Passes", Value: summary.VirtualizedPct, Unit: "%"},
			},
		})
	}

	if sample != nil {
		sections = append(sections, Section{
			ID:    SectionProcess,
			Title: "Process",
			Items: []Item{
				{Key: "rss", Label: "RSS", Value: sample.RSSMB, Unit: "MB"},
				{Key: "cpu", Label: "CPU", Value: sample.CPUPercent, Unit: "%"},
				{Key: "threads", Label: "Threads", Value: float64(sample.Threads)},
				{Key: "system_ram", Label: "System RAM", Value: sample.SystemRAMPercent, Unit: "%"},
			},
		})
	}

	return Report{
		Sections: sections,
		Mode:     mode,
		Worst:    budget.Worst(checks),
	}
}

func keyFor(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func (v Report) SectionByID(id string) *Section {
	for i := range v.Sections {
		if v.Sections[i].ID == id {
			return &v.Sections[i]
		}
	}
	return nil
}

func (s Section) ItemByKey(key string) *Item {
	for i := range s.Items {
		if s.Items[i].Key == key {
			return &s.Items[i]
		}
	}
	return nil
}

// FormatValue renders an item value the way every surface shows it.
func FormatValue(it Item) string {
	switch {
	case it.Note != "":
		return it.Note
	case it.Unit != "":
		return fmt.Sprintf("%.1f%s", it.Value, it.Unit)
	case it.Value == float64(int64(it.Value)):
		return fmt.Sprintf("%d", int64(it.Value))
	default:
		return fmt.Sprintf("%.1f", it.Value)
	}
}
