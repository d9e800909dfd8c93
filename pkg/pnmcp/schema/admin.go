package schema

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/models"
)

func (b *Builder) manageApps() *jsonschema.Schema {
	return object(
		"List, create or rename PubNub apps",
		map[string]*jsonschema.Schema{
			"operation": strEnum("Operation", "list", "create", "update"),
			"data": object(
				"create: {name}; update: {id, name}",
				map[string]*jsonschema.Schema{
					"id":   str("App ID"),
					"name": str("App name"),
				},
			),
		},
		"operation",
	)
}

func (b *Builder) manageKeysets() *jsonschema.Schema {
	return object(
		"Get, list, create or reconfigure PubNub keysets",
		map[string]*jsonschema.Schema{
			"operation": strEnum("Operation", "get", "list", "create", "update"),
			"data": object(
				"get: {id}; list: {appId?}; create: {name, appId?, type, config}; update: {id, config}",
				map[string]*jsonschema.Schema{
					"id":     str("Keyset ID"),
					"appId":  str("App ID; a new app is created when omitted on create"),
					"name":   str("Keyset name"),
					"type":   strEnum("Keyset type", string(models.KeysetTesting), string(models.KeysetProduction)),
					"config": KeysetConfig(),
				},
			),
		},
		"operation",
	)
}

// KeysetConfig is the schema of the keyset feature configuration.
func KeysetConfig() *jsonschema.Schema {
	return object(
		"Keyset features; omitted blocks are left unchanged",
		map[string]*jsonschema.Schema{
			"messagePersistence": object(
				"Message Persistence",
				map[string]*jsonschema.Schema{
					"enabled":           boolean("Store published messages"),
					"retention":         intEnum("Retention in days, 0 for unlimited; required when enabled", models.PersistenceRetentions...),
					"deleteFromHistory": boolean("Allow deleting messages from history"),
				},
				"enabled",
			),
			"appContext": object(
				"App Context (user, channel and membership metadata)",
				map[string]*jsonschema.Schema{
					"enabled":               boolean("Enable App Context"),
					"region":                strEnum("Storage region; required when enabled", models.AppContextRegions...),
					"userMetadataEvents":    boolean("Emit user metadata events"),
					"channelMetadataEvents": boolean("Emit channel metadata events"),
					"membershipEvents":      boolean("Emit membership events"),
				},
				"enabled",
			),
			"files": object(
				"File Sharing",
				map[string]*jsonschema.Schema{
					"enabled":   boolean("Enable file sharing"),
					"region":    strEnum("Storage region; required when enabled", models.FilesRegions...),
					"retention": intEnum("Retention in days; required when enabled", models.FilesRetentions...),
				},
				"enabled",
			),
			"presence": object(
				"Presence",
				map[string]*jsonschema.Schema{
					"enabled":                   boolean("Enable presence"),
					"announceMax":               integer("Occupancy above which joins/leaves are batched", 0, 100),
					"interval":                  integer("Interval event period in seconds", 10, 300),
					"deltas":                    boolean("Include joins/leaves deltas in interval events"),
					"generateLeaveOnDisconnect": boolean("Emit leave on TCP disconnect"),
					"streamFiltering":           boolean("Allow presence stream filtering"),
					"globalHereNow":             boolean("Allow global here-now"),
					"debounce":                  integer("Seconds to debounce join after leave", 0, 60),
				},
				"enabled",
			),
		},
	)
}

func (b *Builder) usageMetrics() *jsonschema.Schema {
	dates := map[string]*jsonschema.Schema{
		"startDate": dateField("Start date (YYYY-MM-DD)"),
		"endDate":   dateField("End date (YYYY-MM-DD)"),
	}

	if b.adminMode == credentials.AdminV1 {
		dates["scope"] = strEnum("Aggregate usage per app or per keyset", "app", "keyset")
		dates["id"] = nonEmpty("App ID or keyset ID")

		return object("Get usage metrics", dates, "scope", "id", "startDate", "endDate")
	}

	metrics := stringArray("Metric names, e.g. transactions, mau, messages")
	metrics.MinItems = ptr(1)
	dates["entityType"] = strEnum("Entity to report on", "account", "app", "keyset")
	dates["entityId"] = nonEmpty("Entity ID")
	dates["metrics"] = metrics

	return object("Get usage metrics", dates, "entityType", "entityId", "metrics", "startDate", "endDate")
}

func dateField(desc string) *jsonschema.Schema {
	s := str(desc)
	s.Pattern = `^\d{4}-\d{2}-\d{2}$`

	return s
}
