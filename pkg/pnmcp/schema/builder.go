// Package schema builds the input schemas published for every tool and
// validates tool arguments against them.
//
// Schema shapes are decided once, at startup: Pub/Sub tools only declare
// publishKey/subscribeKey when the environment does not provide them, and
// get_usage_metrics follows the configured admin API generation. Type
// checks run first (JSON Schema); cross-field rules run afterwards so their
// errors can point at the exact missing field.
package schema

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/docs"
)

// Tool names, as published over MCP.
const (
	ToolSDKDocumentation     = "get_sdk_documentation"
	ToolChatSDKDocumentation = "get_chat_sdk_documentation"
	ToolHowTo                = "how_to"
	ToolManageApps           = "manage_apps"
	ToolManageKeysets        = "manage_keysets"
	ToolUsageMetrics         = "get_usage_metrics"
	ToolManageAppContext     = "manage_app_context"
	ToolSendMessage          = "send_pubnub_message"
	ToolPresence             = "get_pubnub_presence"
	ToolSubscribeAndReceive  = "subscribe_and_receive_pubnub_messages"
	ToolHistory              = "get_pubnub_messages"
)

// Refiner checks cross-field rules after type checks passed.
type Refiner func(args map[string]any) error

// Schema is a published input schema plus its validation pipeline.
type Schema struct {
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
	refiners []Refiner
}

// JSON returns the schema to publish.
func (s *Schema) JSON() *jsonschema.Schema {
	return s.schema
}

// HasProperty reports whether the schema declares a top-level property.
func (s *Schema) HasProperty(name string) bool {
	_, ok := s.schema.Properties[name]

	return ok
}

// Required returns the required top-level properties.
func (s *Schema) Required() []string {
	return slices.Clone(s.schema.Required)
}

// Validate applies defaults for absent top-level fields, type-checks args
// and then runs the refiners. args is modified in place.
func (s *Schema) Validate(args map[string]any) error {
	if err := s.applyDefaults(args); err != nil {
		return err
	}

	if err := s.resolved.Validate(args); err != nil {
		return pnerrs.NewValidationError(
			pnerrs.ErrCodeSchemaViolation,
			pnerrs.Issue{Message: err.Error()},
		)
	}

	for _, refine := range s.refiners {
		if err := refine(args); err != nil {
			return err
		}
	}

	return nil
}

func (s *Schema) applyDefaults(args map[string]any) error {
	for name, prop := range s.schema.Properties {
		if len(prop.Default) == 0 {
			continue
		}
		if _, present := args[name]; present {
			continue
		}

		var v any
		if err := json.Unmarshal(prop.Default, &v); err != nil {
			return pnerrs.NewValidationError(
				pnerrs.ErrCodeInvalidFormat,
				pnerrs.Issue{Path: []string{name}, Message: "invalid default: " + err.Error()},
			)
		}
		args[name] = v
	}

	return nil
}

// Set is the effective schema of every tool.
type Set map[string]*Schema

// Names returns the tool names in sorted order.
func (s Set) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// Builder computes the effective schemas from startup configuration.
type Builder struct {
	hasEnvKeys bool
	adminMode  credentials.AdminMode
	catalog    *docs.Catalog
}

// NewBuilder creates a builder. adminMode may be empty when no admin
// credentials are configured; the v2 usage shape is published then.
func NewBuilder(
	hasEnvKeys bool,
	adminMode credentials.AdminMode,
	catalog *docs.Catalog,
) *Builder {
	return &Builder{
		hasEnvKeys: hasEnvKeys,
		adminMode:  adminMode,
		catalog:    catalog,
	}
}

// Build returns the schema of every tool.
func (b *Builder) Build() (Set, error) {
	defs := map[string]struct {
		schema   *jsonschema.Schema
		refiners []Refiner
	}{
		ToolSDKDocumentation: {
			schema:   b.sdkDocumentation(),
			refiners: []Refiner{b.refineSDKPair},
		},
		ToolChatSDKDocumentation: {
			schema:   b.chatDocumentation(),
			refiners: []Refiner{b.refineChatPair},
		},
		ToolHowTo:            {schema: b.howTo()},
		ToolManageApps:       {schema: b.manageApps(), refiners: []Refiner{refineManageApps}},
		ToolManageKeysets:    {schema: b.manageKeysets(), refiners: []Refiner{refineManageKeysets}},
		ToolUsageMetrics:     {schema: b.usageMetrics(), refiners: []Refiner{refineDateRange}},
		ToolManageAppContext: {schema: b.manageAppContext(), refiners: []Refiner{refineAppContext}},
		ToolSendMessage:      {schema: b.sendMessage()},
		ToolPresence:         {schema: b.presence(), refiners: []Refiner{refinePresence}},
		ToolSubscribeAndReceive: {
			schema: b.subscribeAndReceive(),
		},
		ToolHistory: {schema: b.history()},
	}

	set := make(Set, len(defs))
	for name, def := range defs {
		resolved, err := def.schema.Resolve(nil)
		if err != nil {
			return nil, err
		}

		set[name] = &Schema{
			schema:   def.schema,
			resolved: resolved,
			refiners: def.refiners,
		}
	}

	return set, nil
}

// withKeys adds the credential fields when the environment lacks them.
func (b *Builder) withKeys(s *jsonschema.Schema) *jsonschema.Schema {
	if b.hasEnvKeys {
		return s
	}

	s.Properties["publishKey"] = str("PubNub publish key (pub-c-...)")
	s.Properties["subscribeKey"] = str("PubNub subscribe key (sub-c-...)")
	s.Required = append(s.Required, "publishKey", "subscribeKey")

	return s
}
