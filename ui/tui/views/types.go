package views

import (
	"perflab/internal/window"
	"perflab/ui/tui/state"
)

// ViewProps contains UI-specific properties provided by the Controller.
type ViewProps struct {
	Width, Height  int
	MouseX, MouseY int

	// Component States
	MenuCursor  int
	AnimCursor  float64
	SpinnerView string
	ChartView   string
	SparkView   string
	HelpView    string
	ScrollY     int

	// Virtual list
	Source       window.Source
	ScrollOffset float64 // animated offset actually painted
	Rows         int
}

// View defines the contract for any renderable page in the TUI.
type View interface {
	Render(s state.AppState, props ViewProps) string
}
