package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"perflab/internal/budget"
	"perflab/internal/config"
	"perflab/internal/host"
	"perflab/internal/telemetry"
	"perflab/internal/window"
)

// MockPassStore implements PassStore for testing
type MockPassStore struct {
	Stats     telemetry.Summary
	Passes    []host.Pass
	Err       error
	LastLimit int
}

func (m *MockPassStore) Summary(ctx context.Context) (telemetry.Summary, error) {
	if m.Err != nil {
		return telemetry.Summary{}, m.Err
	}
	return m.Stats, nil
}

func (m *MockPassStore) Recent(ctx context.Context, limit int) ([]host.Pass, error) {
	m.LastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Passes, nil
}

type captureSink struct {
	mu     sync.Mutex
	passes []host.Pass
}

func (c *captureSink) Record(p host.Pass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passes = append(c.passes, p)
}

func newTestServer(store PassStore, sink host.Sink) *Server {
	return NewServer(Config{ServerName: "perflab-test", ServerVersion: "test"}, config.DefaultConfig(), store, sink)
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func TestHandleComputeVisibleRange_Scenarios(t *testing.T) {
	s := newTestServer(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		offset float64
		start  int
		end    int
	}{
		{"top", 0, 0, 12},
		{"mid list", 350, 8, 22},
		{"end of list", 349680, 9988, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result, err := s.handleComputeVisibleRange(ctx, nil, WindowArgs{ScrollOffset: tt.offset})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if result.Start != tt.start || result.End != tt.end {
				t.Errorf("Expected [%d, %d), got [%d, %d)", tt.start, tt.end, result.Start, result.End)
			}
			if result.Count != tt.end-tt.start {
				t.Errorf("Expected count %d, got %d", tt.end-tt.start, result.Count)
			}
			if result.TotalExtent != 350000 {
				t.Errorf("Expected total extent 350000, got %f", result.TotalExtent)
			}
		})
	}
}

func TestHandleComputeVisibleRange_Overrides(t *testing.T) {
	s := newTestServer(nil, nil)
	ctx := context.Background()

	_, result, err := s.handleComputeVisibleRange(ctx, nil, WindowArgs{
		ScrollOffset:   100,
		ViewportExtent: floatPtr(50),
		ItemExtent:     floatPtr(10),
		ItemCount:      intPtr(20),
		Overscan:       intPtr(0),
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Start != 10 || result.End != 15 {
		t.Errorf("Expected [10, 15), got [%d, %d)", result.Start, result.End)
	}
	if result.TotalExtent != 200 {
		t.Errorf("Expected total extent 200, got %f", result.TotalExtent)
	}

	_, result, err = s.handleComputeVisibleRange(ctx, nil, WindowArgs{ScrollOffset: 0, ItemCount: intPtr(0)})
	if err != nil {
		t.Fatalf("Expected no error for empty list, got: %v", err)
	}
	if result.Start != 0 || result.End != 0 {
		t.Errorf("Expected empty range, got [%d, %d)", result.Start, result.End)
	}
}

func TestHandleComputeVisibleRange_Errors(t *testing.T) {
	s := newTestServer(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		args WindowArgs
		kind error
	}{
		{"negative offset", WindowArgs{ScrollOffset: -1}, window.ErrInvalidViewport},
		{"negative extent", WindowArgs{ViewportExtent: floatPtr(-5)}, window.ErrInvalidViewport},
		{"zero extent", WindowArgs{ViewportExtent: floatPtr(0)}, window.ErrInvalidViewport},
		{"negative overscan", WindowArgs{Overscan: intPtr(-1)}, window.ErrInvalidOverscan},
		{"negative item extent", WindowArgs{ItemExtent: floatPtr(-35)}, window.ErrInvalidGeometry},
		{"zero item extent", WindowArgs{ItemExtent: floatPtr(0)}, window.ErrInvalidGeometry},
		{"negative count", WindowArgs{ItemCount: intPtr(-1)}, window.ErrInvalidGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleComputeVisibleRange(ctx, nil, tt.args)
			if !errors.Is(err, tt.kind) {
				t.Errorf("Expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestHandleMaterializeWindow(t *testing.T) {
	sink := &captureSink{}
	s := newTestServer(nil, sink)
	ctx := context.Background()

	_, result, err := s.handleMaterializeWindow(ctx, nil, WindowArgs{ScrollOffset: 350})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(result.Items) != 14 {
		t.Fatalf("Expected 14 items, got %d", len(result.Items))
	}
	if result.Items[0].Index != 8 || result.Items[0].Offset != 280 {
		t.Errorf("Unexpected first item: %+v", result.Items[0])
	}
	if result.Items[13].Index != 21 || result.Items[13].Offset != 735 {
		t.Errorf("Unexpected last item: %+v", result.Items[13])
	}
	if len(result.Checks) != 4 {
		t.Errorf("Expected 4 budget checks, got %d", len(result.Checks))
	}
	for _, c := range result.Checks {
		if c.Status != budget.StatusHealthy {
			t.Errorf("Expected %s to be healthy, got %s", c.Name, c.Status)
		}
	}

	if len(sink.passes) != 1 || sink.passes[0].Seq != 1 {
		t.Fatalf("Expected one recorded pass with seq 1, got %+v", sink.passes)
	}
	if sink.passes[0].Materialized != 14 {
		t.Errorf("Expected 14 materialized, got %d", sink.passes[0].Materialized)
	}
}

func TestHandleMaterializeWindow_RenderAll(t *testing.T) {
	s := newTestServer(nil, nil)
	off := false

	_, result, err := s.handleMaterializeWindow(context.Background(), nil, WindowArgs{
		ScrollOffset: 350,
		ItemCount:    intPtr(50),
		Virtualized:  &off,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Start != 0 || result.End != 50 || len(result.Items) != 50 {
		t.Errorf("Expected the whole collection, got [%d, %d) with %d items", result.Start, result.End, len(result.Items))
	}
}

func TestHandleMaterializeWindow_Errors(t *testing.T) {
	s := newTestServer(nil, nil)
	off := false

	tests := []struct {
		name string
		args WindowArgs
		kind error
	}{
		{"zero extent", WindowArgs{ViewportExtent: floatPtr(0)}, window.ErrInvalidViewport},
		{"zero extent render all", WindowArgs{ViewportExtent: floatPtr(0), Virtualized: &off}, window.ErrInvalidViewport},
		{"zero item extent", WindowArgs{ItemExtent: floatPtr(0)}, window.ErrInvalidGeometry},
		{"negative offset render all", WindowArgs{ScrollOffset: -1, Virtualized: &off}, window.ErrInvalidViewport},
		{"render all over limit", WindowArgs{ItemCount: intPtr(1_000_000_000), Virtualized: &off}, ErrTooManyItems},
		{"viewport over limit", WindowArgs{ItemCount: intPtr(1_000_000_000), ViewportExtent: floatPtr(1e12)}, ErrTooManyItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleMaterializeWindow(context.Background(), nil, tt.args)
			if !errors.Is(err, tt.kind) {
				t.Errorf("Expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestHandleMaterializeWindow_ConfiguredLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.List.MaxMaterialized = 20
	sink := &captureSink{}
	s := NewServer(Config{ServerName: "perflab-test", ServerVersion: "test"}, cfg, nil, sink)
	off := false

	_, _, err := s.handleMaterializeWindow(context.Background(), nil, WindowArgs{ItemCount: intPtr(21), Virtualized: &off})
	if !errors.Is(err, ErrTooManyItems) {
		t.Fatalf("Expected %v, got %v", ErrTooManyItems, err)
	}
	if len(sink.passes) != 0 {
		t.Errorf("Expected no pass recorded for a rejected call, got %d", len(sink.passes))
	}

	_, result, err := s.handleMaterializeWindow(context.Background(), nil, WindowArgs{ItemCount: intPtr(20), Virtualized: &off})
	if err != nil {
		t.Fatalf("Expected no error at the limit, got: %v", err)
	}
	if len(result.Items) != 20 {
		t.Errorf("Expected 20 items, got %d", len(result.Items))
	}

	// A windowed call over a long list stays under the limit.
	_, result, err = s.handleMaterializeWindow(context.Background(), nil, WindowArgs{ScrollOffset: 350})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.Items) != 14 {
		t.Errorf("Expected 14 items, got %d", len(result.Items))
	}
}

func TestHandleMaterializeWindow_EmptyList(t *testing.T) {
	s := newTestServer(nil, nil)

	_, result, err := s.handleMaterializeWindow(context.Background(), nil, WindowArgs{ItemCount: intPtr(0)})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Items == nil || len(result.Items) != 0 {
		t.Errorf("Expected empty non-nil items, got %#v", result.Items)
	}
	if result.TotalExtent != 0 {
		t.Errorf("Expected zero total extent, got %f", result.TotalExtent)
	}
}

func TestHandleGetRenderStats(t *testing.T) {
	store := &MockPassStore{
		Stats:  telemetry.Summary{Passes: 2, AvgMaterialized: 14},
		Passes: []host.Pass{{Seq: 2}, {Seq: 1}},
	}
	s := newTestServer(store, nil)

	_, result, err := s.handleGetRenderStats(context.Background(), nil, RenderStatsArgs{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Summary.Passes != 2 {
		t.Errorf("Expected 2 passes, got %d", result.Summary.Passes)
	}
	if len(result.Recent) != 2 || result.Recent[0].Seq != 2 {
		t.Errorf("Unexpected recent passes: %+v", result.Recent)
	}
	if store.LastLimit != 10 {
		t.Errorf("Expected default limit 10, got %d", store.LastLimit)
	}
}

func TestHandleGetRenderStats_LimitLogic(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"default limit", 0, 10},
		{"custom limit", 50, 50},
		{"max limit cap", 500, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockPassStore{}
			s := newTestServer(store, nil)
			if _, _, err := s.handleGetRenderStats(context.Background(), nil, RenderStatsArgs{Limit: tt.input}); err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if store.LastLimit != tt.expected {
				t.Errorf("Expected limit %d, got %d", tt.expected, store.LastLimit)
			}
		})
	}
}

func TestHandleGetRenderStats_Errors(t *testing.T) {
	s := newTestServer(nil, nil)
	if _, _, err := s.handleGetRenderStats(context.Background(), nil, RenderStatsArgs{}); err == nil {
		t.Error("Expected error when telemetry is disabled")
	}

	s = newTestServer(&MockPassStore{Err: errors.New("db closed")}, nil)
	if _, _, err := s.handleGetRenderStats(context.Background(), nil, RenderStatsArgs{}); err == nil {
		t.Error("Expected error when store fails")
	}
}

func TestServer_InMemorySession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newTestServer(&MockPassStore{}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := s.Connect(ctx, serverTransport)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "perflab-test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	defer cs.Close()

	tools, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"compute_visible_range", "materialize_window", "get_render_stats"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "compute_visible_range",
		Arguments: map[string]any{"scroll_offset": 350},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool reported error: %+v", res.Content)
	}

	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var rr RangeResult
	if err := json.Unmarshal(raw, &rr); err != nil {
		t.Fatalf("unmarshal range result: %v", err)
	}
	if rr.Start != 8 || rr.End != 22 {
		t.Errorf("Expected [8, 22), got [%d, %d)", rr.Start, rr.End)
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "compute_visible_range",
		Arguments: map[string]any{"scroll_offset": -1},
	})
	if err == nil && !res.IsError {
		t.Error("Expected a negative offset to fail")
	}

	for _, args := range []map[string]any{
		{"scroll_offset": 0, "viewport_extent": 0},
		{"scroll_offset": 0, "item_extent": 0},
	} {
		for _, tool := range []string{"compute_visible_range", "materialize_window"} {
			res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: args})
			if err == nil && !res.IsError {
				t.Errorf("Expected %s with %v to fail", tool, args)
			}
		}
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "materialize_window",
		Arguments: map[string]any{"item_count": 1_000_000_000, "virtualized": false},
	})
	if err == nil && !res.IsError {
		t.Error("Expected an oversized materialize to fail")
	}
}
