package views

import (
	"perflab/ui/tui/state"
)

func RenderMenu(width, height, cursor int, animCursor float64, mouseX, mouseY int) string {
	v := MenuView{}
	return v.Render(state.AppState{}, ViewProps{
		Width:      width,
		Height:     height,
		MenuCursor: cursor,
		AnimCursor: animCursor,
		MouseX:     mouseX,
		MouseY:     mouseY,
	})
}

func RenderList(s state.AppState, props ViewProps) string {
	return ListView{}.Render(s, props)
}

func RenderTelemetry(s state.AppState, spinnerView, chartView, sparkView string) string {
	v := TelemetryView{}
	return v.Render(s, ViewProps{
		SpinnerView: spinnerView,
		ChartView:   chartView,
		SparkView:   sparkView,
	})
}

func RenderRawConsole(s state.AppState, width, height, scrollY int) string {
	v := ConsoleView{}
	return v.Render(s, ViewProps{
		Width:   width,
		Height:  height,
		ScrollY: scrollY,
	})
}
