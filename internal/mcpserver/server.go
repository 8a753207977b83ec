// Package mcpserver exposes the execution query service as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roach88/qtrace/internal/divergence"
	"github.com/roach88/qtrace/internal/ir"
	"github.com/roach88/qtrace/internal/replay"
	"github.com/roach88/qtrace/internal/service"
)

// Service is what the tools need from the query layer.
type Service interface {
	List(ctx context.Context, page, limit int) (ir.ExecutionPage, error)
	Overview(ctx context.Context, id string) (service.Overview, error)
	Replay(ctx context.Context, id string) (replay.Replay, error)
	Step(ctx context.Context, id string, index int) (replay.Step, error)
	Compare(ctx context.Context, a, b string) (divergence.Report, error)
	Record(ctx context.Context, req service.RecordRequest) (*ir.Execution, error)
}

// New builds an MCP server with every qtrace tool registered.
func New(svc Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "qtrace", Version: ir.Version}, nil)
	registerTools(server, svc)
	return server
}

// Run serves the tools over stdio until ctx is cancelled or the client
// disconnects.
func Run(ctx context.Context, svc Service) error {
	return New(svc).Run(ctx, &mcp.StdioTransport{})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	res := textResult(err.Error())
	res.IsError = true
	return res
}

// jsonResult renders v as indented JSON, or reports err as a tool error.
// Tool failures are results, not protocol errors, so the model sees them.
func jsonResult(v any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return errorResult(err), nil, nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil, nil
}
