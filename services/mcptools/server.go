package mcptools

import (
	"encoding/json"
	"fmt"
	"log"

	"letterhead/services/pagination"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the pagination engine as MCP tools so agents can lay out letters.
type Server struct {
	mcp      *server.MCPServer
	measurer pagination.Measurer
	geometry pagination.PageGeometry
}

// New creates the MCP server. The measurer backs split_and_measure and the
// geometry is used whenever a tool call omits one.
func New(measurer pagination.Measurer, geometry pagination.PageGeometry, version string) *Server {
	s := &Server{
		measurer: measurer,
		geometry: geometry,
	}
	s.mcp = server.NewMCPServer(
		"letterhead-mcp",
		version,
		server.WithToolCapabilities(false),
	)
	s.registerLayoutTools()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// decodeArg reads an argument given either as a JSON string or as structured JSON.
// Missing arguments leave target untouched and report false.
func decodeArg(args map[string]any, key string, target any) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return false, nil
	}
	var data []byte
	if s, isString := v.(string); isString {
		if s == "" {
			return false, nil
		}
		data = []byte(s)
	} else {
		var err error
		if data, err = json.Marshal(v); err != nil {
			return false, fmt.Errorf("%s: %w", key, err)
		}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("%s is not valid JSON for this tool: %w", key, err)
	}
	return true, nil
}
