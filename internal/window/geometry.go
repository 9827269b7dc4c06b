// Package window computes which slice of a large fixed-height list has to be
// materialized for a given scroll position.
//
// Three pieces cooperate:
//   - Geometry holds the per-item extent and the item count.
//   - ComputeVisibleRange maps a Viewport onto a half-open VisibleRange.
//   - Materialize turns a VisibleRange into positioned item descriptors plus
//     the total scrollable extent, so a host can paint only the window while
//     its scroll track still covers the whole collection.
//
// Every function here is pure. Geometry is immutable and safe to share
// between goroutines.
package window

import (
	"fmt"
	"math"
)

// MaxExactExtent is the largest total extent that float64 represents
// without losing integer precision (2^53).
const MaxExactExtent = 1 << 53

// Geometry is the invariant shape of a list: every item is ItemExtent tall
// and there are ItemCount of them. Build it with NewGeometry.
type Geometry struct {
	itemExtent float64
	itemCount  int
}

// NewGeometry validates and returns a Geometry.
//
// The product itemExtent*itemCount must be exactly representable as a
// float64 and no larger than MaxExactExtent, so offsets derived from it
// never drift.
func NewGeometry(itemExtent float64, itemCount int) (Geometry, error) {
	if math.IsNaN(itemExtent) || math.IsInf(itemExtent, 0) || itemExtent <= 0 {
		return Geometry{}, &FieldError{Kind: ErrInvalidGeometry, Field: "itemExtent", Message: fmt.Sprintf("must be a positive finite number, got %v", itemExtent)}
	}
	if itemCount < 0 {
		return Geometry{}, &FieldError{Kind: ErrInvalidGeometry, Field: "itemCount", Message: fmt.Sprintf("must not be negative, got %d", itemCount)}
	}
	if uint64(itemCount) > MaxExactExtent {
		return Geometry{}, &FieldError{Kind: ErrInvalidGeometry, Field: "itemCount", Message: "exceeds 2^53"}
	}

	count := float64(itemCount)
	total := itemExtent * count
	// FMA yields the exact residual of the product; zero means no rounding.
	if total > MaxExactExtent || math.FMA(itemExtent, count, -total) != 0 {
		return Geometry{}, &FieldError{Kind: ErrInvalidGeometry, Field: "totalExtent", Message: fmt.Sprintf("%v x %d is not exactly representable", itemExtent, itemCount)}
	}

	return Geometry{itemExtent: itemExtent, itemCount: itemCount}, nil
}

// MustGeometry is NewGeometry for package-level literals and tests.
func MustGeometry(itemExtent float64, itemCount int) Geometry {
	g, err := NewGeometry(itemExtent, itemCount)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Geometry) ItemExtent() float64 { return g.itemExtent }
func (g Geometry) ItemCount() int       { return g.itemCount }

// TotalExtent is the size the scroll track must report so the scrollbar
// behaves as if every item were rendered.
func (g Geometry) TotalExtent() float64 {
	return g.itemExtent * float64(g.itemCount)
}

// IndexAtOffset returns the index of the item covering offset, clamped to
// [0, ItemCount-1]. An empty geometry always yields 0.
func (g Geometry) IndexAtOffset(offset float64) int {
	if g.itemCount == 0 || g.itemExtent <= 0 || offset <= 0 || math.IsNaN(offset) {
		return 0
	}
	idx := math.Floor(offset / g.itemExtent)
	if idx >= float64(g.itemCount-1) {
		return g.itemCount - 1
	}
	return int(idx)
}

// OffsetOf returns the leading edge of item index. It does not clamp.
func (g Geometry) OffsetOf(index int) float64 {
	return float64(index) * g.itemExtent
}

// MaxScroll returns the largest meaningful scroll offset for a viewport of
// the given extent.
func (g Geometry) MaxScroll(viewportExtent float64) float64 {
	maxScroll := g.TotalExtent() - viewportExtent
	if maxScroll < 0 {
		return 0
	}
	return maxScroll
}

// ScrollToIndex returns the scroll offset that brings item index fully into
// a viewport of the given extent, moving as little as possible. The current
// offset is returned unchanged when the item is already visible or the index
// is out of range.
func (g Geometry) ScrollToIndex(index int, current, viewportExtent float64) float64 {
	if index < 0 || index >= g.itemCount {
		return current
	}

	top := g.OffsetOf(index)
	bottom := top + g.itemExtent

	if top < current {
		return top
	}
	if bottom > current+viewportExtent {
		target := bottom - viewportExtent
		// Viewports shorter than one item keep the item's top edge visible.
		if target > top {
			return top
		}
		return target
	}
	return current
}

func (g Geometry) String() string {
	return fmt.Sprintf("%d items x %g", g.itemCount, g.itemExtent)
}
