package tui

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"perflab/internal/config"
	"perflab/internal/host"
	"perflab/internal/sysstats"
	"perflab/internal/telemetry"
	"perflab/ui/tui/state"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

// MockStore for testing
type MockStore struct {
	Stats telemetry.Summary
	Err   error
}

func (m MockStore) Summary(ctx context.Context) (telemetry.Summary, error) {
	return m.Stats, m.Err
}

type MockSampler struct{}

func (MockSampler) Sample(ctx context.Context) (sysstats.Sample, error) {
	return sysstats.Sample{RSSMB: 12.5, Threads: 8}, nil
}

func newModel(t *testing.T) MainModel {
	t.Helper()
	cfg := config.DefaultConfig()
	session, err := host.NewSession(cfg.List)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return InitialModel(session, cfg, Deps{Store: MockStore{}, Sampler: MockSampler{}})
}

func press(t *testing.T, m *MainModel, msg tea.KeyMsg) *MainModel {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(*MainModel)
}

func runes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMenuNavigation(t *testing.T) {
	model := newModel(t)

	if model.menuCursor != 0 {
		t.Errorf("Expected initial menu cursor 0, got %d", model.menuCursor)
	}
	if model.state.CurrentPage != state.PageMenu {
		t.Errorf("Expected initial page PageMenu, got %v", model.state.CurrentPage)
	}

	m := press(t, &model, tea.KeyMsg{Type: tea.KeyDown})
	if m.menuCursor != 1 {
		t.Errorf("Expected menu cursor 1 after Down key, got %d", m.menuCursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.menuCursor != 2 {
		t.Errorf("Expected menu cursor to stop at 2, got %d", m.menuCursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.menuCursor != 1 {
		t.Errorf("Expected menu cursor 1 after Up key, got %d", m.menuCursor)
	}
}

func TestMenuAnimationLogic(t *testing.T) {
	model := newModel(t)
	model.menuCursor = 1

	if model.animCursor != 0 {
		t.Errorf("Expected initial animCursor 0, got %f", model.animCursor)
	}

	// The spring should move animCursor towards menuCursor (1.0)
	animateMsg := AnimateMsg(time.Now())
	updatedModel, _ := model.Update(animateMsg)
	m := updatedModel.(*MainModel)

	if m.animCursor <= 0 {
		t.Errorf("Expected animCursor to increase after animation frame, got %f", m.animCursor)
	}
	if m.animCursor >= 1.0 {
		t.Errorf("Expected animCursor to not reach target immediately, got %f", m.animCursor)
	}

	updatedModel, _ = m.Update(animateMsg)
	m = updatedModel.(*MainModel)
	prevCursor := m.animCursor

	updatedModel, _ = m.Update(animateMsg)
	m = updatedModel.(*MainModel)

	if m.animCursor <= prevCursor {
		t.Errorf("Expected animCursor to continue increasing, got %f (prev %f)", m.animCursor, prevCursor)
	}
}

func TestPageTransition(t *testing.T) {
	tests := []struct {
		cursor int
		page   state.Page
	}{
		{0, state.PageList},
		{1, state.PageTelemetry},
		{2, state.PageConsole},
	}

	for _, tt := range tests {
		model := newModel(t)
		model.menuCursor = tt.cursor
		m := press(t, &model, tea.KeyMsg{Type: tea.KeyEnter})
		if m.state.CurrentPage != tt.page {
			t.Errorf("cursor %d: expected page %v, got %v", tt.cursor, tt.page, m.state.CurrentPage)
		}

		m = press(t, m, runes('b'))
		if m.state.CurrentPage != state.PageMenu {
			t.Errorf("Expected page to change back to PageMenu, got %v", m.state.CurrentPage)
		}
	}
}

func TestWindowResizeSetsViewport(t *testing.T) {
	model := newModel(t)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 25})
	m := updated.(*MainModel)

	if m.rows != 20 {
		t.Fatalf("Expected 20 list rows, got %d", m.rows)
	}
	if got := m.session.Viewport().ViewportExtent; got != 700 {
		t.Errorf("Expected viewport extent 700, got %f", got)
	}
}

func animateUntilSettled(t *testing.T, m *MainModel) *MainModel {
	t.Helper()
	for i := 0; i < 1000; i++ {
		updated, _ := m.Update(AnimateMsg(time.Now()))
		m = updated.(*MainModel)
		if m.scrollPos == m.scrollTarget && m.scrollVel == 0 {
			// one more tick to paint the settled offset
			updated, _ = m.Update(AnimateMsg(time.Now()))
			return updated.(*MainModel)
		}
	}
	t.Fatalf("scroll did not settle: pos %f target %f", m.scrollPos, m.scrollTarget)
	return m
}

func TestListScrollsToSelection(t *testing.T) {
	model := newModel(t)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 15})
	m := updated.(*MainModel)
	m.navigateTo(0)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	if m.state.Selected != 9999 {
		t.Fatalf("Expected selection 9999, got %d", m.state.Selected)
	}
	// 10 rows of 35 units: the last item ends at 350000
	if m.scrollTarget != 349650 {
		t.Fatalf("Expected scroll target 349650, got %f", m.scrollTarget)
	}

	m = animateUntilSettled(t, m)
	if m.state.Frame.Range.End != 10000 {
		t.Errorf("Expected range to reach the end, got %v", m.state.Frame.Range)
	}
	if !m.state.Frame.Range.Contains(9999) {
		t.Errorf("Expected last item to be materialized, got %v", m.state.Frame.Range)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyHome})
	if m.state.Selected != 0 || m.scrollTarget != 0 {
		t.Errorf("Expected Home to select 0 at offset 0, got %d at %f", m.state.Selected, m.scrollTarget)
	}

	// Moving down inside the viewport does not scroll
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.state.Selected != 1 || m.scrollTarget != 0 {
		t.Errorf("Expected selection 1 without scrolling, got %d at %f", m.state.Selected, m.scrollTarget)
	}
}

func TestVirtualizationToggle(t *testing.T) {
	model := newModel(t)
	m := &model
	m.navigateTo(0)

	m = press(t, m, runes('v'))
	updated, _ := m.Update(AnimateMsg(time.Now()))
	m = updated.(*MainModel)

	if m.state.Frame.Virtualized {
		t.Fatal("Expected render-all frame after toggling")
	}
	if n := len(m.state.Frame.Instruction.Items); n != 10000 {
		t.Errorf("Expected 10000 materialized items, got %d", n)
	}

	m = press(t, m, runes('v'))
	updated, _ = m.Update(AnimateMsg(time.Now()))
	m = updated.(*MainModel)

	if !m.state.Frame.Virtualized {
		t.Fatal("Expected windowed frame after toggling back")
	}
	if n := len(m.state.Frame.Instruction.Items); n > 20 {
		t.Errorf("Expected a small window, got %d items", n)
	}
}

func TestVirtualizationToggleResetsScroll(t *testing.T) {
	model := newModel(t)
	m := &model
	m.navigateTo(0)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	m = animateUntilSettled(t, m)
	if m.scrollPos == 0 {
		t.Fatal("Expected the list to be scrolled before toggling")
	}

	m = press(t, m, runes('v'))
	if m.scrollTarget != 0 || m.scrollPos != 0 || m.state.Selected != 0 {
		t.Fatalf("Expected toggle to return to the top, got target %f pos %f selected %d",
			m.scrollTarget, m.scrollPos, m.state.Selected)
	}

	updated, _ := m.Update(AnimateMsg(time.Now()))
	m = updated.(*MainModel)
	if m.state.Frame.Viewport.ScrollOffset != 0 {
		t.Errorf("Expected frame at offset 0, got %f", m.state.Frame.Viewport.ScrollOffset)
	}

	m = press(t, m, runes('v'))
	updated, _ = m.Update(AnimateMsg(time.Now()))
	m = updated.(*MainModel)
	if m.state.Frame.Range.Start != 0 {
		t.Errorf("Expected windowed frame from the top, got %v", m.state.Frame.Range)
	}
}

func TestPaintCoalesces(t *testing.T) {
	model := newModel(t)
	m := &model

	for i := 0; i < 5; i++ {
		updated, _ := m.Update(AnimateMsg(time.Now()))
		m = updated.(*MainModel)
	}

	if len(m.state.ConsoleLogs) != 1 {
		t.Errorf("Expected a single pass for an idle list, got %d", len(m.state.ConsoleLogs))
	}
	if len(m.state.NodeHistory) != 1 || m.state.NodeHistory[0] != 12 {
		t.Errorf("Unexpected node history %v", m.state.NodeHistory)
	}
	if len(m.state.Checks) != 4 {
		t.Errorf("Expected 4 budget checks, got %d", len(m.state.Checks))
	}
}

func TestFetchStatsCmd(t *testing.T) {
	msg := fetchStatsCmd(Deps{
		Store:   MockStore{Stats: telemetry.Summary{Passes: 7}},
		Sampler: MockSampler{},
	})()

	loaded, ok := msg.(StatsLoadedMsg)
	if !ok {
		t.Fatalf("Expected StatsLoadedMsg, got %T", msg)
	}
	if loaded.Err != nil {
		t.Fatalf("Expected no error, got %v", loaded.Err)
	}
	if loaded.Summary == nil || loaded.Summary.Passes != 7 {
		t.Errorf("Unexpected summary %+v", loaded.Summary)
	}
	if loaded.Sample == nil || loaded.Sample.RSSMB != 12.5 {
		t.Errorf("Unexpected sample %+v", loaded.Sample)
	}

	msg = fetchStatsCmd(Deps{Store: MockStore{Err: errors.New("closed")}})()
	loaded = msg.(StatsLoadedMsg)
	if loaded.Err == nil || loaded.Summary != nil {
		t.Errorf("Expected store error to be reported, got %+v", loaded)
	}

	model := newModel(t)
	updated, _ := model.Update(StatsLoadedMsg{Summary: &telemetry.Summary{Passes: 3}})
	m := updated.(*MainModel)
	if m.state.Summary == nil || m.state.Summary.Passes != 3 {
		t.Errorf("Expected summary to be stored, got %+v", m.state.Summary)
	}
}

func TestViewsRender(t *testing.T) {
	model := newModel(t)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m := updated.(*MainModel)
	updated, _ = m.Update(AnimateMsg(time.Now()))
	m = updated.(*MainModel)

	pages := []struct {
		page state.Page
		want string
	}{
		{state.PageMenu, "LIST WINDOWING"},
		{state.PageList, "Item #1"},
		{state.PageTelemetry, "Frame Budget"},
		{state.PageConsole, "Render Pass Console"},
	}
	for _, p := range pages {
		m.state.CurrentPage = p.page
		if out := m.View(); !strings.Contains(out, p.want) {
			t.Errorf("page %v: expected %q in view", p.page, p.want)
		}
	}

	m.quitting = true
	if m.View() != "Bye!\n" {
		t.Error("Expected goodbye view after quitting")
	}
}
