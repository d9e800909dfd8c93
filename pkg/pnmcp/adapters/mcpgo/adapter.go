// Package mcpgo binds the tool registry onto mark3labs/mcp-go for the
// legacy SSE transport.
package mcpgo

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/tools"
)

// NewServer builds an mcp-go server exposing every tool and resource in
// registry.
func NewServer(name, version, instructions string, registry *tools.Registry) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)

	for _, t := range registry.Tools() {
		raw, err := json.Marshal(t.Schema.JSON())
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %s input schema", t.Name)
		}

		toolName := t.Name
		s.AddTool(
			mcp.NewToolWithRawSchema(toolName, t.Description, raw),
			func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args, err := json.Marshal(req.Params.Arguments)
				if err != nil {
					return toCallToolResult(tools.ErrorResult(err)), nil
				}

				return toCallToolResult(registry.Call(ctx, toolName, args)), nil
			},
		)
	}

	for _, r := range registry.Resources() {
		res := r
		s.AddResource(
			mcp.NewResource(
				res.URI,
				res.Name,
				mcp.WithResourceDescription(res.Description),
				mcp.WithMIMEType(res.MIMEType),
			),
			func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				text, err := res.Read(ctx)
				if err != nil {
					return nil, err
				}

				return []mcp.ResourceContents{mcp.TextResourceContents{
					URI:      res.URI,
					MIMEType: res.MIMEType,
					Text:     text,
				}}, nil
			},
		)
	}

	return s, nil
}

func toCallToolResult(res tools.Result) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(res.Content))
	for _, c := range res.Content {
		content = append(content, mcp.NewTextContent(c.Text))
	}

	return &mcp.CallToolResult{Content: content, IsError: res.IsError}
}
