package mcp

import (
	"context"
	"encoding/json"

	"github.com/deixis/tsrun/internal/classify"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ExecuteToolName is the single tool advertised by the server.
const ExecuteToolName = "execute_typescript"

const executeToolDescription = `Execute TypeScript or JavaScript code with the Deno runtime and return its output.

The code runs as a standalone script with the permissions the server was
started with. The result is the script's stdout on success, or classified
error text on failure.`

var executeToolSchema = requiredObjectSchema(map[string]any{
	"code": map[string]any{
		"type":        "string",
		"description": "TypeScript or JavaScript source to execute.",
	},
}, []string{"code"})

// invalidCodeText is returned when the code argument is missing or not
// a string. Validation happens before any subprocess is spawned.
const invalidCodeText = "'code' argument must be a string."

// executeHandler validates the arguments, runs the source through the
// runner, and classifies the outcome. Every failure becomes an error
// result; the handler never returns a protocol-level error.
func (h *handler) executeHandler(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	source, ok := codeArgument(req.Params.Arguments)
	if !ok {
		return errorResult(invalidCodeText)
	}

	res, err := h.runner.Run(ctx, source)
	verdict := classify.Classify(res, err)
	if verdict.IsError {
		return errorResult(verdict.Text)
	}
	return textResult(verdict.Text)
}

// codeArgument extracts the "code" argument, reporting whether it is a
// string.
func codeArgument(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", false
	}
	code, ok := args["code"].(string)
	return code, ok
}
