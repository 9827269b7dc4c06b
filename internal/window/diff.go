package window

// Diff reports which indices left the window (removed) and which entered it
// (added) between two passes. Each side has at most two ranges, in ascending
// order; empty ranges are omitted.
func Diff(prev, next VisibleRange) (removed, added []VisibleRange) {
	return subtract(prev, next), subtract(next, prev)
}

// subtract returns a \ b.
func subtract(a, b VisibleRange) []VisibleRange {
	if a.Empty() {
		return nil
	}
	if b.Empty() || b.End <= a.Start || b.Start >= a.End {
		return []VisibleRange{a}
	}

	var out []VisibleRange
	if b.Start > a.Start {
		out = append(out, VisibleRange{Start: a.Start, End: b.Start})
	}
	if b.End < a.End {
		out = append(out, VisibleRange{Start: b.End, End: a.End})
	}
	return out
}

// Count sums the lengths of ranges.
func Count(ranges []VisibleRange) int {
	n := 0
	for _, r := range ranges {
		n += r.Len()
	}
	return n
}
