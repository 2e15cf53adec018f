package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmorgan81/falbot/internal/handler"
	"github.com/dmorgan81/falbot/internal/image"
	"github.com/dmorgan81/falbot/internal/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/do"
)

type Orchestrator interface {
	Generate(context.Context, image.Request, handler.ProgressSink) (*handler.Result, error)
}

// ImageTool serves the generate-image tool to the MCP server.
type ImageTool struct {
	orchestrator Orchestrator
}

func NewImageTool(i *do.Injector) (*ImageTool, error) {
	return &ImageTool{orchestrator: do.MustInvoke[*handler.Handler](i)}, nil
}

// Register adds the tool to server. Calls are handled with the logger
// carried by ctx.
func (t *ImageTool) Register(ctx context.Context, server *mcp.Server) {
	logger := log.FromContextOrDiscard(ctx)
	server.AddTool(Descriptor(), func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return t.Handle(log.NewContext(ctx, logger), req)
	})
}

// Handle decodes the raw call arguments, keeping numbers as json.Number, and
// runs CallTool. Failures are reported in the result, never as an error.
func (t *ImageTool) Handle(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args map[string]any
	if len(req.Params.Arguments) > 0 {
		dec := json.NewDecoder(bytes.NewReader(req.Params.Arguments))
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			return errorResult(errorText(fmt.Errorf("arguments must be a JSON object: %w", err))), nil
		}
	}
	return t.CallTool(ctx, req.Params.Name, args), nil
}

func (t *ImageTool) CallTool(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	log := log.FromContextOrDiscard(ctx).WithGroup("ImageTool").With("tool", name)
	if name != Name {
		log.Warn("unknown tool")
		return errorResult("Unknown tool: " + name)
	}
	log.Info("handling tool call")

	req, err := image.Validate(ctx, args)
	if err != nil {
		log.Info("rejected tool arguments", "error", err)
		return errorResult(errorText(err))
	}

	progress := log.WithGroup("progress")
	result, err := t.orchestrator.Generate(ctx, req, func(line string) {
		progress.Info(line)
	})
	if err != nil {
		return errorResult(errorText(err))
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Error("failed to encode result", "error", err)
		return errorResult(errorText(err))
	}
	return textResult(string(body))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(text string) *mcp.CallToolResult {
	result := textResult(text)
	result.IsError = true
	return result
}
