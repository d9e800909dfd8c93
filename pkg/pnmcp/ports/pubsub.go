// Package ports defines interfaces that the domain needs from infrastructure.
// These are "ports" in hexagonal architecture - contracts defined by
// domain needs, not by external systems.
package ports

import (
	"context"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
)

// PubSubFactory hands out a Pub/Sub client for a key pair.
type PubSubFactory interface {
	// Client returns a client bound to keys. Implementations may reuse
	// clients across calls with the same keys.
	Client(keys credentials.Pair) (PubSub, error)
	// Close releases every client handed out.
	Close() error
}

// PubSub defines what the Pub/Sub tools need from the messaging SDK.
type PubSub interface {
	// Publish sends a stored message and returns its timetoken.
	Publish(ctx context.Context, channel string, message any) (string, error)
	// Signal sends a lightweight, non-persisted message.
	Signal(ctx context.Context, channel string, message any) (string, error)
	// HereNow reports occupancy of channels and channel groups.
	HereNow(ctx context.Context, req HereNowRequest) (*HereNowResult, error)
	// WhereNow lists the channels a user is present on.
	WhereNow(ctx context.Context, uuid string) ([]string, error)
	// Subscribe starts receiving messages on channel. The caller must
	// call RemoveListener and Unsubscribe on the returned subscription.
	Subscribe(ctx context.Context, channel string) (Subscription, error)
	// Fetch reads stored messages.
	Fetch(ctx context.Context, req FetchRequest) (map[string][]HistoryMessage, error)
	// Objects runs an App Context request and returns the SDK response.
	Objects(ctx context.Context, req ObjectsRequest) (any, error)
}

// Subscription is a live subscription to one channel.
type Subscription interface {
	// Messages delivers messages and signals received on the channel.
	Messages() <-chan Message
	// RemoveListener stops delivery to Messages.
	RemoveListener()
	// Unsubscribe leaves the channel and releases the connection.
	Unsubscribe()
}

// Message is a received message or signal.
type Message struct {
	Channel   string `json:"channel"`
	Publisher string `json:"publisher,omitempty"`
	Timetoken string `json:"timetoken"`
	Message   any    `json:"message"`
	Signal    bool   `json:"signal,omitempty"`
}

// HereNowRequest selects channels and groups to report on.
type HereNowRequest struct {
	Channels      []string
	ChannelGroups []string
}

// HereNowResult is channel occupancy.
type HereNowResult struct {
	TotalChannels  int                `json:"totalChannels"`
	TotalOccupancy int                `json:"totalOccupancy"`
	Channels       []ChannelOccupancy `json:"channels"`
}

// ChannelOccupancy is the occupancy of one channel.
type ChannelOccupancy struct {
	Channel   string     `json:"channel"`
	Occupancy int        `json:"occupancy"`
	Occupants []Occupant `json:"occupants"`
}

// Occupant is a user present on a channel.
type Occupant struct {
	UUID  string `json:"uuid"`
	State any    `json:"state,omitempty"`
}

// FetchRequest selects stored messages. Start and End are timetokens and
// may be empty.
type FetchRequest struct {
	Channels []string
	Start    string
	End      string
	Count    int
}

// HistoryMessage is a stored message.
type HistoryMessage struct {
	Message   any    `json:"message"`
	Timetoken string `json:"timetoken"`
	Meta      any    `json:"meta,omitempty"`
}
