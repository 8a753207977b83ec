package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roach88/qtrace/internal/service"
)

type ListArgs struct {
	Page  int `json:"page,omitempty" jsonschema:"page number starting at 1"`
	Limit int `json:"limit,omitempty" jsonschema:"page size, at most 50"`
}

type ExecutionArgs struct {
	ExecutionID string `json:"execution_id" jsonschema:"execution id"`
}

type StepArgs struct {
	ExecutionID string `json:"execution_id" jsonschema:"execution id"`
	Step        int    `json:"step" jsonschema:"zero-based step index"`
}

type CompareArgs struct {
	ExecutionA string `json:"execution_a" jsonschema:"baseline execution id"`
	ExecutionB string `json:"execution_b" jsonschema:"execution id compared against the baseline"`
}

type RecordArgs struct {
	Circuit    string `json:"circuit" jsonschema:"built-in circuit: bell, ghz or random"`
	NoiseType  string `json:"noise_type,omitempty" jsonschema:"depolarizing or thermal"`
	NoiseLevel string `json:"noise_level,omitempty" jsonschema:"low, medium, high or very_high"`
	Gates      int    `json:"gates,omitempty" jsonschema:"gate count for random circuits"`
	Seed       uint64 `json:"seed,omitempty" jsonschema:"seed for random circuits"`
}

func registerTools(server *mcp.Server, svc Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_executions",
		Description: "Lists recorded executions, newest first",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args ListArgs) (*mcp.CallToolResult, any, error) {
		return jsonResult(svc.List(ctx, args.Page, args.Limit))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_execution",
		Description: "Returns an execution's metadata, noise settings, timings and graph statistics",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args ExecutionArgs) (*mcp.CallToolResult, any, error) {
		return jsonResult(svc.Overview(ctx, args.ExecutionID))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "replay_execution",
		Description: "Returns every event of an execution in order with its graph edges",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args ExecutionArgs) (*mcp.CallToolResult, any, error) {
		return jsonResult(svc.Replay(ctx, args.ExecutionID))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "replay_step",
		Description: "Returns one event of an execution by step index",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args StepArgs) (*mcp.CallToolResult, any, error) {
		return jsonResult(svc.Step(ctx, args.ExecutionID, args.Step))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_executions",
		Description: "Reports where two executions differ structurally",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args CompareArgs) (*mcp.CallToolResult, any, error) {
		return jsonResult(svc.Compare(ctx, args.ExecutionA, args.ExecutionB))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_circuit",
		Description: "Runs a built-in circuit and records its execution",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args RecordArgs) (*mcp.CallToolResult, any, error) {
		exec, err := svc.Record(ctx, service.RecordRequest{
			Circuit:    args.Circuit,
			NoiseType:  args.NoiseType,
			NoiseLevel: args.NoiseLevel,
			Gates:      args.Gates,
			Seed:       args.Seed,
		})
		if err != nil {
			return errorResult(err), nil, nil
		}
		return jsonResult(exec.ExecutionMeta, nil)
	})
}
