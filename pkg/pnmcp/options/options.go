// Package options holds the server configuration and loads it from
// defaults, an optional YAML file, an optional .env file and the process
// environment.
package options

import (
	"time"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
)

// Transport selects how the MCP server is exposed.
type Transport string

const (
	// TransportStdio serves a single client over stdin/stdout.
	TransportStdio Transport = "stdio"
	// TransportHTTP serves the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportSSE serves the legacy SSE transport.
	TransportSSE Transport = "sse"
)

// Valid reports whether t is a known transport.
func (t Transport) Valid() bool {
	switch t {
	case TransportStdio, TransportHTTP, TransportSSE:
		return true
	}

	return false
}

// Environment variables read besides the credential variables.
const (
	EnvAdminV1URL = "PUBNUB_ADMIN_V1_URL"
	EnvAdminV2URL = "PUBNUB_ADMIN_V2_URL"
	EnvDocsURL    = "PUBNUB_DOCS_URL"
	EnvUserID     = "PUBNUB_USER_ID"
	EnvLogLevel   = "PUBNUB_MCP_LOG_LEVEL"
)

// Defaults.
const (
	DefaultAddr         = ":3000"
	DefaultLogLevel     = "info"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultDocsCacheTTL = 10 * time.Minute
)

// ServerOptions configures the server.
type ServerOptions struct {
	// === Transport ===

	// Transport is stdio, http or sse
	Transport Transport

	// Addr is the listen address for http and sse
	Addr string

	// LogLevel is debug, info, warn or error
	LogLevel string

	// === Upstreams ===

	// AdminV1URL is the legacy admin API base URL
	AdminV1URL string

	// AdminV2URL is the admin API base URL
	AdminV2URL string

	// DocsURL is the documentation service base URL
	DocsURL string

	// HTTPTimeout bounds each upstream request
	HTTPTimeout time.Duration

	// DocsCacheTTL bounds how long documentation pages are cached
	DocsCacheTTL time.Duration

	// === Pub/Sub ===

	// UserID identifies the SDK client
	UserID string

	// DisableAnalytics turns off usage event publication
	DisableAnalytics bool

	// Env is the immutable environment snapshot credentials are read from
	Env credentials.Env
}
