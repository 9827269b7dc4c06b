package window

// PositionedItem places one item absolutely within the scroll track.
type PositionedItem struct {
	Index  int     `json:"index"`
	Offset float64 `json:"offset"`
}

// RenderInstruction is what a host paints for one pass: the live items in
// ascending index order and the extent of the whole track.
type RenderInstruction struct {
	Items       []PositionedItem `json:"items"`
	TotalExtent float64          `json:"total_extent"`
}

// Materialize lists the items of r with their offsets. The range is clamped
// to g first. TotalExtent does not depend on r.
func Materialize(r VisibleRange, g Geometry) RenderInstruction {
	return RenderInstruction{
		Items:       AppendItems(nil, r, g),
		TotalExtent: g.TotalExtent(),
	}
}

// AppendItems appends the positioned items of r to dst and returns the
// extended slice, so a host can reuse one buffer across frames.
func AppendItems(dst []PositionedItem, r VisibleRange, g Geometry) []PositionedItem {
	r = r.clampTo(g)
	dst = growItems(dst, r.Len())
	for i := r.Start; i < r.End; i++ {
		dst = append(dst, PositionedItem{Index: i, Offset: g.OffsetOf(i)})
	}
	return dst
}

func growItems(dst []PositionedItem, n int) []PositionedItem {
	if cap(dst)-len(dst) >= n {
		return dst
	}
	grown := make([]PositionedItem, len(dst), len(dst)+n)
	copy(grown, dst)
	return grown
}
