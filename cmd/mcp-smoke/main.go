package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	fmt.Println("🧪 Testing perflab MCP Server and Tool Calling")
	fmt.Println("==============================================")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serverPath := findServerBinary()
	if serverPath == "" {
		log.Fatal("❌ perflab binary not found. Run: go build -o perflab . (or set PERFLAB_BIN)")
	}
	fmt.Println("✅ Test 1: perflab binary found")

	// In-memory telemetry keeps the smoke run free of side effects.
	cmd := exec.Command(serverPath, "mcp", "--telemetry-dsn", "")
	cmd.Stderr = os.Stderr
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "perflab-smoke",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MCP server: %v", err)
	}
	defer session.Close()
	fmt.Println("✅ Test 2: Connected to MCP server")

	fmt.Println("\n✓ Test 3: Listing available tools")
	listResult, err := session.ListTools(ctx, nil)
	if err != nil {
		log.Fatalf("❌ Failed to list tools: %v", err)
	}
	fmt.Printf("  Found %d tools:\n", len(listResult.Tools))
	for _, tool := range listResult.Tools {
		fmt.Printf("  - %s\n", tool.Name)
	}

	failed := 0
	check := func(name string, want map[string]float64, args map[string]any) map[string]any {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
		if err != nil {
			fmt.Printf("  ❌ %s failed: %v\n", name, err)
			failed++
			return nil
		}
		if res.IsError {
			fmt.Printf("  ❌ %s returned an error result\n", name)
			failed++
			return nil
		}
		got := structured(res)
		for k, v := range want {
			if n, ok := got[k].(float64); !ok || n != v {
				fmt.Printf("  ❌ %s: %s = %v, want %v\n", name, k, got[k], v)
				failed++
				return got
			}
		}
		fmt.Printf("  ✅ %s %v\n", name, args)
		return got
	}

	fmt.Println("\n✓ Test 4: compute_visible_range scenarios")
	check("compute_visible_range", map[string]float64{"start": 0, "end": 12, "total_extent": 350000}, map[string]any{"scroll_offset": 0})
	check("compute_visible_range", map[string]float64{"start": 8, "end": 22}, map[string]any{"scroll_offset": 350})
	check("compute_visible_range", map[string]float64{"start": 9988, "end": 10000}, map[string]any{"scroll_offset": 349680})

	fmt.Println("\n✓ Test 5: materialize_window")
	if got := check("materialize_window", map[string]float64{"start": 8, "end": 22}, map[string]any{"scroll_offset": 350}); got != nil {
		if items, ok := got["items"].([]any); ok {
			fmt.Printf("  ✅ Received %d positioned items\n", len(items))
		}
	}

	fmt.Println("\n✓ Test 6: rejected input")
	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "compute_visible_range",
		Arguments: map[string]any{"scroll_offset": -1},
	})
	if err == nil && !res.IsError {
		fmt.Println("  ❌ negative scroll offset was accepted")
		failed++
	} else {
		fmt.Println("  ✅ negative scroll offset rejected")
	}

	fmt.Println("\n✓ Test 7: get_render_stats")
	check("get_render_stats", nil, map[string]any{"limit": 5})

	fmt.Println("\n==============================================")
	if failed > 0 {
		fmt.Printf("❌ %d checks failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("✅ All MCP tool calling tests complete!")
}

func structured(res *mcp.CallToolResult) map[string]any {
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		return nil
	}
	var out map[string]any
	_ = json.Unmarshal(data, &out)
	return out
}

func findServerBinary() string {
	if p := os.Getenv("PERFLAB_BIN"); p != "" {
		return p
	}
	candidates := []string{
		"./perflab",
		"../../perflab",
	}
	for _, p := range candidates {
		if abs, err := filepath.Abs(p); err == nil {
			if _, err := os.Stat(abs); err == nil {
				return abs
			}
		}
	}
	return ""
}
