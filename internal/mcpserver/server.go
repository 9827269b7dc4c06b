package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"perflab/internal/budget"
	"perflab/internal/config"
	"perflab/internal/host"
	"perflab/internal/logging"
	"perflab/internal/telemetry"
	"perflab/internal/window"
)

// PassStore is the read side of the telemetry repo.
type PassStore interface {
	Summary(ctx context.Context) (telemetry.Summary, error)
	Recent(ctx context.Context, limit int) ([]host.Pass, error)
}

// Server exposes the window calculator as MCP tools.
type Server struct {
	mcpServer *mcp.Server
	list      config.List
	budget    config.Budget
	store     PassStore
	sink      host.Sink
	maxItems  int
	seq       atomic.Uint64
}

// ErrTooManyItems is returned when a materialize_window call would build
// more items than the configured per-call limit.
var ErrTooManyItems = errors.New("too many items to materialize")

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
}

// NewServer creates a new MCP server. app.List supplies the defaults for every
// argument a caller leaves out. store and sink may be nil, in which case
// get_render_stats fails and materialized windows are not recorded.
func NewServer(cfg Config, app config.Config, store PassStore, sink host.Sink) *Server {
	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		list:      app.List,
		budget:    app.Budget,
		store:     store,
		sink:      sink,
		maxItems:  app.List.MaxMaterialized,
	}
	if s.maxItems <= 0 {
		s.maxItems = config.DefaultConfig().List.MaxMaterialized
	}
	s.registerTools()
	return s
}

// WindowArgs is shared by compute_visible_range and materialize_window.
type WindowArgs struct {
	ScrollOffset   float64  `json:"scroll_offset" jsonschema:"scroll position in layout units, >= 0"`
	ViewportExtent *float64 `json:"viewport_extent,omitempty" jsonschema:"visible extent in layout units, > 0; defaults to the configured viewport"`
	ItemExtent     *float64 `json:"item_extent,omitempty" jsonschema:"extent of one item, > 0; defaults to the configured item extent"`
	ItemCount      *int     `json:"item_count,omitempty" jsonschema:"number of items; defaults to the configured count"`
	Overscan       *int     `json:"overscan,omitempty" jsonschema:"extra items on each side; defaults to the configured overscan"`
	Virtualized    *bool    `json:"virtualized,omitempty" jsonschema:"false materializes the whole collection (materialize_window only)"`
}

// RangeResult defines the output for compute_visible_range.
type RangeResult struct {
	Start       int     `json:"start" jsonschema:"first index to render"`
	End         int     `json:"end" jsonschema:"one past the last index to render"`
	Count       int     `json:"count" jsonschema:"number of items in the window"`
	TotalExtent float64 `json:"total_extent" jsonschema:"extent of the whole collection"`
}

// MaterializeResult defines the output for materialize_window.
type MaterializeResult struct {
	Start       int                     `json:"start"`
	End         int                     `json:"end"`
	Items       []window.PositionedItem `json:"items" jsonschema:"items to render with their layout offsets"`
	TotalExtent float64                 `json:"total_extent"`
	Checks      []CheckItem             `json:"checks" jsonschema:"frame budget verdicts for this pass"`
}

type CheckItem struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit,omitempty"`
	Status string  `json:"status"`
}

// RenderStatsArgs defines the input for get_render_stats.
type RenderStatsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of recent passes to return (default 10, max 100)"`
}

// RenderStatsResult wraps the telemetry summary and recent passes.
type RenderStatsResult struct {
	Summary telemetry.Summary `json:"summary"`
	Recent  []host.Pass       `json:"recent"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "compute_visible_range",
		Description: "Compute the half-open index range [start, end) of a fixed-extent list that must be rendered for a scroll offset and viewport, including overscan.",
	}, s.handleComputeVisibleRange)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "materialize_window",
		Description: "Compute the visible window and return every item to render with its layout offset, the total extent for the scroll container, and frame budget checks for the pass.",
	}, s.handleMaterializeWindow)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_render_stats",
		Description: "Summarize recorded render passes from the telemetry store: pass count, materialized nodes, compute time percentiles and the most recent passes.",
	}, s.handleGetRenderStats)
}

// resolve fills unset arguments from the configured list and validates them.
func (s *Server) resolve(args WindowArgs) (window.Viewport, window.Geometry, int, error) {
	list := s.list
	if args.ItemExtent != nil {
		list.ItemExtent = *args.ItemExtent
	}
	if args.ItemCount != nil {
		list.ItemCount = *args.ItemCount
	}
	if args.Overscan != nil {
		list.Overscan = *args.Overscan
	}
	if args.ViewportExtent != nil {
		list.ViewportExtent = *args.ViewportExtent
	}

	g, err := list.Geometry()
	if err != nil {
		return window.Viewport{}, window.Geometry{}, 0, err
	}
	vp := window.Viewport{ScrollOffset: args.ScrollOffset, ViewportExtent: list.ViewportExtent}
	if err := vp.Validate(); err != nil {
		return window.Viewport{}, window.Geometry{}, 0, err
	}
	return vp, g, list.Overscan, nil
}

func (s *Server) handleComputeVisibleRange(_ context.Context, _ *mcp.CallToolRequest, args WindowArgs) (*mcp.CallToolResult, RangeResult, error) {
	vp, g, overscan, err := s.resolve(args)
	if err != nil {
		return nil, RangeResult{}, err
	}

	r, err := window.ComputeVisibleRange(vp, g, overscan)
	if err != nil {
		return nil, RangeResult{}, err
	}

	return nil, RangeResult{
		Start:       r.Start,
		End:         r.End,
		Count:       r.Len(),
		TotalExtent: g.TotalExtent(),
	}, nil
}

func (s *Server) handleMaterializeWindow(_ context.Context, _ *mcp.CallToolRequest, args WindowArgs) (*mcp.CallToolResult, MaterializeResult, error) {
	vp, g, overscan, err := s.resolve(args)
	if err != nil {
		return nil, MaterializeResult{}, err
	}
	list := s.list
	list.ItemExtent = g.ItemExtent()
	list.ItemCount = g.ItemCount()
	list.Overscan = overscan
	list.ViewportExtent = vp.ViewportExtent
	if args.Virtualized != nil {
		list.Virtualized = *args.Virtualized
	}

	// Size the window before anything is allocated for it.
	r := window.FullRange(g)
	if list.Virtualized {
		if r, err = window.ComputeVisibleRange(vp, g, overscan); err != nil {
			return nil, MaterializeResult{}, err
		}
	}
	if r.Len() > s.maxItems {
		return nil, MaterializeResult{}, fmt.Errorf("%w: %s holds %d items, limit is %d", ErrTooManyItems, r, r.Len(), s.maxItems)
	}

	// A throwaway session gives the same frame and timing a host would see.
	session, err := host.NewSession(list)
	if err != nil {
		return nil, MaterializeResult{}, err
	}
	if err := session.Scroll(vp.ScrollOffset); err != nil {
		return nil, MaterializeResult{}, err
	}
	f, _, err := session.Frame()
	if err != nil {
		return nil, MaterializeResult{}, err
	}

	pass := f.Pass()
	pass.Seq = s.seq.Add(1)
	if s.sink != nil {
		s.sink.Record(pass)
	}

	checks := budget.Evaluate(pass, s.budget)
	out := MaterializeResult{
		Start:       f.Range.Start,
		End:         f.Range.End,
		Items:       f.Instruction.Items,
		TotalExtent: f.Instruction.TotalExtent,
		Checks:      make([]CheckItem, 0, len(checks)),
	}
	if out.Items == nil {
		out.Items = []window.PositionedItem{}
	}
	for _, c := range checks {
		out.Checks = append(out.Checks, CheckItem{Name: c.Name, Value: c.Value, Unit: c.Unit, Status: c.Status})
	}
	return nil, out, nil
}

func (s *Server) handleGetRenderStats(ctx context.Context, _ *mcp.CallToolRequest, args RenderStatsArgs) (*mcp.CallToolResult, RenderStatsResult, error) {
	if s.store == nil {
		return nil, RenderStatsResult{}, fmt.Errorf("telemetry is disabled")
	}

	limit := args.Limit
	if limit == 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	summary, err := s.store.Summary(ctx)
	if err != nil {
		return nil, RenderStatsResult{}, fmt.Errorf("failed to summarize passes: %w", err)
	}
	recent, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, RenderStatsResult{}, fmt.Errorf("failed to query passes: %w", err)
	}
	if recent == nil {
		recent = []host.Pass{}
	}

	return nil, RenderStatsResult{Summary: summary, Recent: recent}, nil
}

// Start starts the MCP server using stdio transport.
func (s *Server) Start(ctx context.Context) error {
	logging.Infof("starting perflab MCP server on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session on t. Used with in-memory transports.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}
