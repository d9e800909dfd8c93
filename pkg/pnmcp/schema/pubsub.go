package schema

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// Subscribe limits, in seconds and messages.
const (
	MaxSubscribeTimeout     = 30
	DefaultSubscribeTimeout = 10
	DefaultMessageCount     = 1
	MaxHistoryCount         = 100
	DefaultHistoryCount     = 25
	MaxHistoryChannels      = 500
)

func (b *Builder) sendMessage() *jsonschema.Schema {
	return b.withKeys(object(
		"Publish a message or send a signal to a PubNub channel",
		map[string]*jsonschema.Schema{
			"channel": nonEmpty("Channel to send to"),
			"message": {
				Types:       []string{"string", "object"},
				Description: "Message payload: a string or a JSON object. Wrap numbers and booleans in an object.",
			},
			"type": withDefault(
				strEnum("message publishes a stored message, signal sends a lightweight signal", "message", "signal"),
				"message",
			),
		},
		"channel", "message",
	))
}

func (b *Builder) presence() *jsonschema.Schema {
	return b.withKeys(object(
		"Get presence for channels (here now) or for a user (where now)",
		map[string]*jsonschema.Schema{
			"channels":      stringArray("Channels to report occupancy for"),
			"channelGroups": stringArray("Channel groups to report occupancy for"),
			"uuid":          str("User ID to report channel membership for"),
		},
	))
}

func (b *Builder) subscribeAndReceive() *jsonschema.Schema {
	return b.withKeys(object(
		"Subscribe to a channel, wait for messages, then unsubscribe",
		map[string]*jsonschema.Schema{
			"channel": nonEmpty("Channel to subscribe to"),
			"messageCount": withDefault(
				&jsonschema.Schema{
					Type:        "integer",
					Description: "Number of messages to wait for",
					Minimum:     ptr(1.0),
				},
				DefaultMessageCount,
			),
			"timeout": withDefault(
				&jsonschema.Schema{
					Type:        "number",
					Description: "Seconds to wait before returning what arrived (max " + itoa(MaxSubscribeTimeout) + ")",
					Minimum:     ptr(0.0),
					Maximum:     ptr(float64(MaxSubscribeTimeout)),
				},
				DefaultSubscribeTimeout,
			),
		},
		"channel",
	))
}

func (b *Builder) history() *jsonschema.Schema {
	channels := stringArray("Channels to fetch history from")
	channels.MinItems = ptr(1)
	channels.MaxItems = ptr(MaxHistoryChannels)

	return b.withKeys(object(
		"Fetch stored messages from one or more channels",
		map[string]*jsonschema.Schema{
			"channels": channels,
			"start":    str("Timetoken to start from (exclusive)"),
			"end":      str("Timetoken to stop at (inclusive)"),
			"count": withDefault(
				integer("Messages per channel", 1, MaxHistoryCount),
				DefaultHistoryCount,
			),
		},
		"channels",
	))
}

func (b *Builder) manageAppContext() *jsonschema.Schema {
	return b.withKeys(object(
		"Manage App Context users, channels and memberships",
		map[string]*jsonschema.Schema{
			"type":      strEnum("Object type", "user", "channel", "membership"),
			"operation": strEnum("Operation", "get", "set", "remove", "getAll"),
			"id":        str("User ID or channel ID; for membership, the user ID (or the channel ID with options.members or data.uuids)"),
			"data": object(
				"Object fields for set; for membership set/remove either channels or uuids",
				map[string]*jsonschema.Schema{
					"name":        str("Display name"),
					"email":       str("User email"),
					"externalId":  str("User external ID"),
					"profileUrl":  str("User profile URL"),
					"description": str("Channel description"),
					"custom":      {Type: "object", Description: "Custom key/value fields"},
					"channels": {
						Type:        "array",
						Description: "Channels the user joins or leaves",
						Items:       membershipEntry("Channel ID"),
					},
					"uuids": {
						Type:        "array",
						Description: "Users joining or leaving the channel",
						Items:       membershipEntry("User ID"),
					},
				},
			),
			"options": object(
				"Paging and filtering",
				map[string]*jsonschema.Schema{
					"limit":   integer("Maximum objects returned", 1, 100),
					"filter":  str("Filter expression"),
					"sort":    stringArray("Sort fields, e.g. name:desc"),
					"members": boolean("For membership get: list the members of channel id instead of the memberships of user id"),
				},
			),
		},
		"type", "operation",
	))
}

func membershipEntry(idDesc string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Types:       []string{"string", "object"},
		Description: idDesc + ", or an object with id and custom",
	}
}
