// Package mcp binds the tool registry onto the official MCP Go SDK and
// serves it over stdio or streamable HTTP.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/tools"
)

// Info describes the server to connecting clients.
type Info struct {
	Name         string
	Version      string
	Instructions string
}

// NewServer builds an SDK server exposing every tool and resource in
// registry. Validation and error normalization stay in the registry; the
// SDK only carries the raw arguments and the result.
func NewServer(info Info, registry *tools.Registry) *mcpsdk.Server {
	srv := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: info.Name, Version: info.Version},
		&mcpsdk.ServerOptions{Instructions: info.Instructions},
	)

	for _, t := range registry.Tools() {
		name := t.Name
		srv.AddTool(
			&mcpsdk.Tool{
				Name:        name,
				Description: t.Description,
				InputSchema: t.Schema.JSON(),
			},
			func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
				return toCallToolResult(registry.Call(ctx, name, req.Params.Arguments)), nil
			},
		)
	}

	for _, r := range registry.Resources() {
		res := r
		srv.AddResource(
			&mcpsdk.Resource{
				URI:         res.URI,
				Name:        res.Name,
				Description: res.Description,
				MIMEType:    res.MIMEType,
			},
			func(ctx context.Context, _ *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
				text, err := res.Read(ctx)
				if err != nil {
					return nil, err
				}

				return &mcpsdk.ReadResourceResult{
					Contents: []*mcpsdk.ResourceContents{{
						URI:      res.URI,
						MIMEType: res.MIMEType,
						Text:     text,
					}},
				}, nil
			},
		)
	}

	return srv
}

func toCallToolResult(res tools.Result) *mcpsdk.CallToolResult {
	content := make([]mcpsdk.Content, 0, len(res.Content))
	for _, c := range res.Content {
		content = append(content, &mcpsdk.TextContent{Text: c.Text})
	}

	return &mcpsdk.CallToolResult{Content: content, IsError: res.IsError}
}
