package host

import (
	"time"

	"perflab/internal/window"
)

// Frame is the result of one render pass, owned by the caller until the
// next recomputation replaces it.
type Frame struct {
	Seq         uint64
	At          time.Time
	Viewport    window.Viewport
	Range       window.VisibleRange
	Instruction window.RenderInstruction
	Removed     []window.VisibleRange // indices the host should unmount
	Added       []window.VisibleRange // indices the host should mount
	Compute     time.Duration
	Virtualized bool
	ItemCount   int
	ItemExtent  float64
}

// Pass is the flat telemetry record of a Frame.
type Pass struct {
	Seq            uint64        `json:"seq"`
	RecordedAt     time.Time     `json:"recorded_at"`
	Virtualized    bool          `json:"virtualized"`
	ScrollOffset   float64       `json:"scroll_offset"`
	ViewportExtent float64       `json:"viewport_extent"`
	StartIndex     int           `json:"start_index"`
	EndIndex       int           `json:"end_index"`
	Materialized   int           `json:"materialized"`
	ItemCount      int           `json:"item_count"`
	TotalExtent    float64       `json:"total_extent"`
	Mounted        int           `json:"mounted"`
	Unmounted      int           `json:"unmounted"`
	Compute        time.Duration `json:"compute_ns"`
}

func (f Frame) Pass() Pass {
	return Pass{
		Seq:            f.Seq,
		RecordedAt:     f.At,
		Virtualized:    f.Virtualized,
		ScrollOffset:   f.Viewport.ScrollOffset,
		ViewportExtent: f.Viewport.ViewportExtent,
		StartIndex:     f.Range.Start,
		EndIndex:       f.Range.End,
		Materialized:   len(f.Instruction.Items),
		ItemCount:      f.ItemCount,
		TotalExtent:    f.Instruction.TotalExtent,
		Mounted:        window.Count(f.Added),
		Unmounted:      window.Count(f.Removed),
		Compute:        f.Compute,
	}
}

// Ready reports whether f came from a real pass.
func (f Frame) Ready() bool { return f.Seq > 0 }
