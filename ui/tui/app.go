package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	"perflab/internal/budget"
	"perflab/internal/config"
	"perflab/internal/host"
	"perflab/internal/logging"
	"perflab/internal/sysstats"
	"perflab/internal/telemetry"
	"perflab/internal/window"
	"perflab/ui/tui/components"
	"perflab/ui/tui/state"
	"perflab/ui/tui/views"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// StatsStore is the part of the telemetry store the TUI reads.
type StatsStore interface {
	Summary(ctx context.Context) (telemetry.Summary, error)
}

// Deps are the optional collaborators of the TUI. Nil fields switch the
// matching panel off.
type Deps struct {
	Store   StatsStore
	Sampler sysstats.Sampler
	Source  window.Source
}

// MainModel is the Bubble Tea Model acting as the Controller
type MainModel struct {
	session *host.Session
	cfg     config.Config
	deps    Deps
	keys    keyMap
	help    help.Model
	state   state.AppState
	spinner spinner.Model
	nodes   *components.NodesChart
	compute *components.ComputeSparkline

	menuCursor int
	animCursor float64
	velocity   float64 // Physics velocity
	spring     harmonica.Spring

	// Smooth scrolling: keys move scrollTarget, the spring moves scrollPos.
	scrollTarget float64
	scrollPos    float64
	scrollVel    float64
	scrollSpring harmonica.Spring
	rows         int

	consoleScrollY int
	mouseX         int
	mouseY         int
	quitting       bool
	width          int
	height         int
}

// Messages
type TickMsg time.Time
type AnimateMsg time.Time
type StatsLoadedMsg struct {
	Summary *telemetry.Summary
	Sample  *sysstats.Sample
	Err     error
}

func InitialModel(session *host.Session, cfg config.Config, deps Deps) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	if deps.Source == nil {
		deps.Source = window.IndexedSource{N: session.Geometry().ItemCount()}
	}

	rows := int(cfg.List.ViewportExtent / cfg.List.ItemExtent)
	if rows < 1 {
		rows = 1
	}

	return MainModel{
		session: session,
		cfg:     cfg,
		deps:    deps,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: s,
		nodes:   components.NewNodesChart(30, 10),
		compute: components.NewComputeSparkline(30, 10),
		// Frequency 12 and damping 0.9 settle quickly without overshoot.
		spring:       harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9),
		scrollSpring: harmonica.NewSpring(harmonica.FPS(60), 10.0, 1.0),
		rows:         rows,
		state: state.AppState{
			CurrentPage: state.PageMenu,
		},
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(
		m.spinner.Tick,
		fetchStatsCmd(m.deps),
		m.tickCmd(),
		m.animateCmd(),
	)
}

// Commands
func (m *MainModel) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.SampleInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *MainModel) animateCmd() tea.Cmd {
	return tea.Tick(m.cfg.FrameInterval, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

func fetchStatsCmd(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var msg StatsLoadedMsg
		if d.Store != nil {
			summary, err := d.Store.Summary(ctx)
			if err != nil {
				msg.Err = err
			} else {
				msg.Summary = &summary
			}
		}
		if d.Sampler != nil {
			sample, err := d.Sampler.Sample(ctx)
			if err != nil && msg.Err == nil {
				msg.Err = err
			} else if err == nil {
				msg.Sample = &sample
			}
		}
		return msg
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AnimateMsg:
		return m.handleAnimateMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case TickMsg:
		return m, tea.Batch(fetchStatsCmd(m.deps), m.tickCmd())

	case StatsLoadedMsg:
		return m.handleStatsLoadedMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.menuCursor > 0 {
				m.menuCursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.menuCursor < len(views.MenuOptions)-1 {
				m.menuCursor++
			}
		case key.Matches(msg, m.keys.Select):
			m.navigateTo(m.menuCursor)
		}
		return m, nil

	case state.PageList:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.selectIndex(m.state.Selected - 1)
		case key.Matches(msg, m.keys.Down):
			m.selectIndex(m.state.Selected + 1)
		case key.Matches(msg, m.keys.PageUp):
			m.selectIndex(m.state.Selected - m.rows)
		case key.Matches(msg, m.keys.PageDown):
			m.selectIndex(m.state.Selected + m.rows)
		case key.Matches(msg, m.keys.Home):
			m.selectIndex(0)
		case key.Matches(msg, m.keys.End):
			m.selectIndex(m.session.Geometry().ItemCount() - 1)
		case key.Matches(msg, m.keys.Virtualize):
			on := !m.session.Virtualized()
			m.session.SetVirtualized(on)
			// Either mode starts again from the top.
			m.state.Selected = 0
			m.scrollTarget, m.scrollPos, m.scrollVel = 0, 0, 0
			if err := m.session.Scroll(0); err != nil {
				m.state.Err = err
			}
			logging.Infof("virtualization enabled=%t", on)
		}

	case state.PageConsole:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.consoleScrollY > 0 {
				m.consoleScrollY--
			}
		case key.Matches(msg, m.keys.Down):
			m.consoleScrollY++
		}
	}

	if key.Matches(msg, m.keys.Back) {
		m.state.CurrentPage = state.PageMenu
		m.consoleScrollY = 0
		return m, nil
	}

	return m, nil
}

func (m *MainModel) navigateTo(cursor int) {
	switch cursor {
	case 0:
		m.state.CurrentPage = state.PageList
	case 1:
		m.state.CurrentPage = state.PageTelemetry
	case 2:
		m.state.CurrentPage = state.PageConsole
	}
}

// selectIndex moves the selection and scrolls just enough to show it.
func (m *MainModel) selectIndex(i int) {
	g := m.session.Geometry()
	n := g.ItemCount()
	if n == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	m.state.Selected = i
	m.scrollTarget = g.ScrollToIndex(i, m.scrollTarget, m.session.Viewport().ViewportExtent)
}

// scrollBy moves the scroll target without touching the selection.
func (m *MainModel) scrollBy(delta float64) {
	g := m.session.Geometry()
	maxScroll := g.MaxScroll(m.session.Viewport().ViewportExtent)
	m.scrollTarget = math.Min(math.Max(m.scrollTarget+delta, 0), maxScroll)
}

func (m *MainModel) handleAnimateMsg(msg AnimateMsg) (tea.Model, tea.Cmd) {
	m.animCursor, m.velocity = m.spring.Update(m.animCursor, m.velocity, float64(m.menuCursor))

	if m.state.CurrentPage == state.PageList {
		m.stepScroll()
	}
	m.paint()
	return m, m.animateCmd()
}

// stepScroll advances the scroll spring one frame and feeds the session.
func (m *MainModel) stepScroll() {
	if m.scrollPos == m.scrollTarget && m.scrollVel == 0 {
		return
	}
	m.scrollPos, m.scrollVel = m.scrollSpring.Update(m.scrollPos, m.scrollVel, m.scrollTarget)
	if math.Abs(m.scrollPos-m.scrollTarget) < 0.5 && math.Abs(m.scrollVel) < 0.5 {
		m.scrollPos = m.scrollTarget
		m.scrollVel = 0
	}

	maxScroll := m.session.Geometry().MaxScroll(m.session.Viewport().ViewportExtent)
	m.scrollPos = math.Min(math.Max(m.scrollPos, 0), maxScroll)

	if err := m.session.Scroll(m.scrollPos); err != nil {
		m.state.Err = err
	}
}

// paint takes at most one frame from the session. Scroll and resize events
// since the last paint are coalesced into it.
func (m *MainModel) paint() {
	f, fresh, err := m.session.Frame()
	if err != nil {
		m.state.Err = err
		logging.Errorf("render pass failed: %v", err)
		return
	}
	if !fresh {
		return
	}

	pass := f.Pass()
	m.state.Frame = f
	m.state.Err = nil
	m.state.Checks = budget.Evaluate(pass, m.cfg.Budget)
	m.state.PushPass(pass)
	m.nodes.History = m.state.NodeHistory
	m.compute.History = m.state.ComputeHistory

	m.state.Log(fmt.Sprintf("[%s] #%-5d %-10s nodes=%-5d +%d -%d %s [%s]",
		f.At.Format("15:04:05.000"),
		f.Seq,
		f.Range,
		pass.Materialized,
		pass.Mounted,
		pass.Unmounted,
		f.Compute,
		budget.Worst(m.state.Checks),
	), m.cfg.ConsoleLines)
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width

	rows := msg.Height - views.ListChromeRows
	if rows < 1 {
		rows = 1
	}
	m.rows = rows
	if err := m.session.Resize(float64(rows) * m.session.Geometry().ItemExtent()); err != nil {
		m.state.Err = err
	}
	m.scrollBy(0)

	newW := msg.Width/2 - 6
	if newW > 10 {
		m.nodes.Resize(newW, 10)
		m.compute.Resize(newW, 10)
	}
	return m, nil
}

func (m *MainModel) handleStatsLoadedMsg(msg StatsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logging.Warnf("stats refresh failed: %v", msg.Err)
	}
	if msg.Summary != nil {
		m.state.Summary = msg.Summary
	}
	if msg.Sample != nil {
		m.state.Sample = msg.Sample
	}
	m.state.LastUpdate = time.Now()
	return m, nil
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y

	switch m.state.CurrentPage {
	case state.PageMenu:
		if msg.Action == tea.MouseActionRelease {
			for i := range views.MenuOptions {
				if zone.Get(views.MenuZoneID(i)).InBounds(msg) {
					m.menuCursor = i
					m.navigateTo(i)
					return m, nil
				}
			}
		}

	case state.PageList:
		extent := m.session.Geometry().ItemExtent()
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			m.scrollBy(-3 * extent)
		case msg.Button == tea.MouseButtonWheelDown:
			m.scrollBy(3 * extent)
		case msg.Action == tea.MouseActionRelease:
			first := int(m.scrollPos / extent)
			for i := first; i < first+m.rows; i++ {
				if zone.Get(views.ItemZoneID(i)).InBounds(msg) {
					m.state.Selected = i
					return m, nil
				}
			}
		}
	}
	return m, nil
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		return views.RenderMenu(m.width, m.height, m.menuCursor, m.animCursor, m.mouseX, m.mouseY)
	case state.PageList:
		return views.RenderList(m.state, views.ViewProps{
			Width:        m.width,
			Height:       m.height,
			Source:       m.deps.Source,
			ScrollOffset: m.scrollPos,
			Rows:         m.rows,
			HelpView:     m.help.View(m.keys),
		})
	case state.PageTelemetry:
		return views.RenderTelemetry(m.state, m.spinner.View(), m.nodes.View(), m.compute.View())
	case state.PageConsole:
		return views.RenderRawConsole(m.state, m.width, m.height, m.consoleScrollY)
	default:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Render("Unknown page\n\nPress 'b' to go back"),
		)
	}
}

func Start(session *host.Session, cfg config.Config, deps Deps) error {
	m := InitialModel(session, cfg, deps)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
