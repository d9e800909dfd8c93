package mcpgo_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/adapters/mcpgo"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/internal/testutil"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/schema"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/tools"
)

type response struct {
	Result struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Contents []struct {
			URI      string `json:"uri"`
			MIMEType string `json:"mimeType"`
			Text     string `json:"text"`
		} `json:"contents"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func rpc(t *testing.T, s *server.MCPServer, method string, params any) response {
	t.Helper()

	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	out, err := json.Marshal(s.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Nil(t, resp.Error)

	return resp
}

func newServer(t *testing.T) (*server.MCPServer, testutil.Registry) {
	t.Helper()
	reg := testutil.NewRegistry(t, testutil.EnvKeys)
	s, err := mcpgo.NewServer("pubnub-mcp", "test", "", reg.Registry)
	require.NoError(t, err)

	return s, reg
}

func TestToolsList(t *testing.T) {
	s, reg := newServer(t)

	resp := rpc(t, s, "tools/list", map[string]any{})
	require.Len(t, resp.Result.Tools, len(reg.Tools()))

	for _, tool := range resp.Result.Tools {
		assert.Equal(t, "object", tool.InputSchema["type"], tool.Name)
		if tool.Name == schema.ToolSendMessage {
			props, ok := tool.InputSchema["properties"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, props, "channel")
			assert.NotContains(t, props, "publishKey")
		}
	}
}

func TestToolsCall(t *testing.T) {
	s, reg := newServer(t)

	t.Run("publish", func(t *testing.T) {
		resp := rpc(t, s, "tools/call", map[string]any{
			"name":      schema.ToolSendMessage,
			"arguments": map[string]any{"channel": "c", "message": "hi"},
		})
		assert.False(t, resp.Result.IsError)
		require.Len(t, resp.Result.Content, 1)
		assert.Equal(t, "text", resp.Result.Content[0].Type)
		assert.Contains(t, resp.Result.Content[0].Text, "17000000000000000")
		assert.Equal(t, []string{"Publish"}, reg.PubSub.Calls())
	})

	t.Run("error result", func(t *testing.T) {
		resp := rpc(t, s, "tools/call", map[string]any{
			"name":      schema.ToolPresence,
			"arguments": map[string]any{},
		})
		assert.True(t, resp.Result.IsError)
		require.Len(t, resp.Result.Content, 1)
		assert.Contains(t, resp.Result.Content[0].Text, "ValidationError")
	})
}

func TestResourcesRead(t *testing.T) {
	s, _ := newServer(t)

	resp := rpc(t, s, "resources/read", map[string]any{"uri": tools.ResourceSDKCatalog})
	require.Len(t, resp.Result.Contents, 1)
	assert.Equal(t, tools.ResourceSDKCatalog, resp.Result.Contents[0].URI)
	assert.Equal(t, "application/json", resp.Result.Contents[0].MIMEType)
	assert.NotEmpty(t, resp.Result.Contents[0].Text)
}

func TestNewSSEServerBaseURL(t *testing.T) {
	s, _ := newServer(t)
	assert.NotNil(t, mcpgo.NewSSEServer(s, ":3000", ""))
}
