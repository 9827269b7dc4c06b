package window

import (
	"fmt"
	"math"
)

// Viewport is the visible part of the scroll container.
type Viewport struct {
	ScrollOffset   float64
	ViewportExtent float64
}

// Validate rejects viewports that can only come from a host bug. Nothing is
// clamped: a negative offset is reported, not silently treated as zero.
func (v Viewport) Validate() error {
	if math.IsNaN(v.ScrollOffset) || math.IsInf(v.ScrollOffset, 0) || v.ScrollOffset < 0 {
		return &FieldError{Kind: ErrInvalidViewport, Field: "scrollOffset", Message: fmt.Sprintf("must be a finite number >= 0, got %v", v.ScrollOffset)}
	}
	if math.IsNaN(v.ViewportExtent) || math.IsInf(v.ViewportExtent, 0) || v.ViewportExtent <= 0 {
		return &FieldError{Kind: ErrInvalidViewport, Field: "viewportExtent", Message: fmt.Sprintf("must be a positive finite number, got %v", v.ViewportExtent)}
	}
	return nil
}

// VisibleRange is the half-open index interval [Start, End).
type VisibleRange struct {
	Start int
	End   int
}

func (r VisibleRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r VisibleRange) Empty() bool { return r.Len() == 0 }

func (r VisibleRange) Contains(index int) bool {
	return index >= r.Start && index < r.End
}

func (r VisibleRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// clampTo restricts r to [0, g.ItemCount()] keeping Start <= End.
func (r VisibleRange) clampTo(g Geometry) VisibleRange {
	n := g.ItemCount()
	r.Start = min(max(r.Start, 0), n)
	r.End = min(max(r.End, r.Start), n)
	return r
}

// FullRange covers every item of g.
func FullRange(g Geometry) VisibleRange {
	return VisibleRange{Start: 0, End: g.ItemCount()}
}

// ComputeVisibleRange returns the items that intersect the viewport, widened
// by overscan items on each side and clamped to the collection.
//
// An item starting exactly at the scroll offset is the first visible item.
// Offsets past the end of the list are not special-cased; near the tail the
// range may be narrower than the viewport would hold.
func ComputeVisibleRange(vp Viewport, g Geometry, overscan int) (VisibleRange, error) {
	if err := vp.Validate(); err != nil {
		return VisibleRange{}, err
	}
	if overscan < 0 {
		return VisibleRange{}, &FieldError{Kind: ErrInvalidOverscan, Field: "overscan", Message: fmt.Sprintf("must not be negative, got %d", overscan)}
	}

	n := g.ItemCount()
	if n == 0 {
		return VisibleRange{}, nil
	}

	rawStart := g.IndexAtOffset(vp.ScrollOffset)

	// Counts are capped at n before converting so huge viewports cannot
	// overflow int.
	visibleCount := int(math.Min(math.Ceil(vp.ViewportExtent/g.ItemExtent()), float64(n)))
	rawEnd := rawStart + visibleCount

	// A misaligned offset can leave a sliver of one more item at the
	// bottom edge.
	trailing := math.Ceil((vp.ScrollOffset + vp.ViewportExtent) / g.ItemExtent())
	if trailing > float64(rawEnd) {
		rawEnd = int(math.Min(trailing, float64(n)))
	}

	start := rawStart - min(overscan, rawStart)
	end := rawEnd
	if end < n {
		end += min(overscan, n-end)
	}

	return VisibleRange{Start: start, End: end}.clampTo(g), nil
}
