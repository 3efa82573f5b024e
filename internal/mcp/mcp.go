// Package mcp provides the tsrun MCP server, registering the
// execute_typescript tool and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/deixis/tsrun"
	"github.com/deixis/tsrun/internal/runner"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for the tool handlers.
type handler struct {
	runner *runner.Runner
}

// NewServer creates an MCP server with the execute_typescript tool
// registered. The runner's configuration is fixed for the lifetime of
// the server.
func NewServer(r *runner.Runner) *sdkmcp.Server {
	h := &handler{runner: r}

	opts := &sdkmcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &sdkmcp.ServerCapabilities{
			Tools: &sdkmcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "tsrun", Version: tsrun.Version}, opts)

	s.AddTool(&sdkmcp.Tool{
		Name:        ExecuteToolName,
		Description: executeToolDescription,
		InputSchema: executeToolSchema,
	}, h.executeHandler)

	s.AddReceivingMiddleware(validateCalls())

	return s
}

// validateCalls intercepts tools/call requests and converts unknown tool
// names and malformed arguments into error results before dispatch, so
// neither surfaces as a protocol-level fault.
func validateCalls() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctr, ok := req.(*sdkmcp.CallToolRequest)
			if !ok || method != "tools/call" {
				return next(ctx, method, req)
			}
			if ctr.Params.Name != ExecuteToolName {
				res, _ := errorResult(fmt.Sprintf(
					"Unknown tool '%s'. Available tools: %s",
					ctr.Params.Name, ExecuteToolName))
				return res, nil
			}
			if _, ok := codeArgument(ctr.Params.Arguments); !ok {
				res, _ := errorResult(invalidCodeText)
				return res, nil
			}
			return next(ctx, method, req)
		}
	}
}

// requiredObjectSchema returns a JSON Schema for an object with required fields.
func requiredObjectSchema(props map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*sdkmcp.CallToolResult, error) {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*sdkmcp.CallToolResult, error) {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
		IsError: true,
	}, nil
}
