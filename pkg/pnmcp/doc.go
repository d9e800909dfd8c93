// Package pnmcp assembles the PubNub MCP server: it resolves credentials,
// builds tool schemas, wires the documentation, admin and Pub/Sub
// services into the tool registry and serves the registry over the
// configured transport.
package pnmcp
