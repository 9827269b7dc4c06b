package components

import (
	"strings"

	"perflab/ui/tui/styles"
)

// Scrollbar is a one column scroll track sized from a list's total extent.
type Scrollbar struct {
	Height   int
	Total    float64
	Viewport float64
	Offset   float64
}

// Thumb returns the first row and the length of the thumb.
func (s Scrollbar) Thumb() (top, size int) {
	if s.Height <= 0 {
		return 0, 0
	}
	if s.Total <= s.Viewport || s.Total <= 0 {
		return 0, s.Height
	}

	size = int(float64(s.Height) * s.Viewport / s.Total)
	if size < 1 {
		size = 1
	}
	top = int(s.Offset / s.Total * float64(s.Height))
	if top > s.Height-size {
		top = s.Height - size
	}
	if top < 0 {
		top = 0
	}
	return top, size
}

func (s Scrollbar) View() string {
	top, size := s.Thumb()
	rows := make([]string, s.Height)
	for i := range rows {
		if i >= top && i < top+size {
			rows[i] = styles.ThumbStyle.Render("█")
		} else {
			rows[i] = styles.TrackStyle.Render("│")
		}
	}
	return strings.Join(rows, "\n")
}
