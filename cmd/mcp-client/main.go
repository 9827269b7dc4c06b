package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client ./perflab mcp")
		os.Exit(2)
	}

	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "perflab-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to perflab MCP Server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools                         - List available tools")
	fmt.Println("  /range <offset> [viewport]     - Compute the visible range")
	fmt.Println("  /materialize <offset> [all]    - Materialize the window (all = render everything)")
	fmt.Println("  /stats [limit]                 - Summarize recorded render passes")
	fmt.Println("  /exit                          - Exit the client")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		parts := strings.Fields(input)

		switch parts[0] {
		case "/exit":
			fmt.Println("Goodbye!")
			return

		case "/tools":
			listTools(ctx, session)

		case "/range":
			toolArgs, ok := windowArgs(parts)
			if !ok {
				continue
			}
			if len(parts) > 2 {
				extent, err := strconv.ParseFloat(parts[2], 64)
				if err != nil {
					fmt.Printf("invalid viewport %q\n", parts[2])
					continue
				}
				toolArgs["viewport_extent"] = extent
			}
			callTool(ctx, session, "compute_visible_range", toolArgs)

		case "/materialize":
			toolArgs, ok := windowArgs(parts)
			if !ok {
				continue
			}
			if len(parts) > 2 && parts[2] == "all" {
				toolArgs["virtualized"] = false
			}
			callTool(ctx, session, "materialize_window", toolArgs)

		case "/stats":
			toolArgs := map[string]any{}
			if len(parts) > 1 {
				limit, err := strconv.Atoi(parts[1])
				if err != nil {
					fmt.Printf("invalid limit %q\n", parts[1])
					continue
				}
				toolArgs["limit"] = limit
			}
			callTool(ctx, session, "get_render_stats", toolArgs)

		default:
			fmt.Printf("unknown command %q\n", parts[0])
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

func windowArgs(parts []string) (map[string]any, bool) {
	if len(parts) < 2 {
		fmt.Printf("usage: %s <offset>\n", parts[0])
		return nil, false
	}
	offset, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		fmt.Printf("invalid offset %q\n", parts[1])
		return nil, false
	}
	return map[string]any{"scroll_offset": offset}, true
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}

	printResult(result)
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("❌ Error: ")
	} else {
		fmt.Printf("✅ Result: ")
	}

	if !result.IsError && result.StructuredContent != nil {
		if data, err := json.MarshalIndent(result.StructuredContent, "", "  "); err == nil {
			fmt.Println(string(data))
			fmt.Println()
			return
		}
	}

	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
