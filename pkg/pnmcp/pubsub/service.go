// Package pubsub implements the Pub/Sub tools on top of ports.PubSub:
// publish and signal, presence, time-bounded subscribe-and-collect,
// history and App Context.
package pubsub

import (
	"context"
	"log/slog"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
)

// Message types accepted by Send.
const (
	TypeMessage = "message"
	TypeSignal  = "signal"
)

// Service runs Pub/Sub operations with keys resolved per call.
type Service struct {
	resolver *credentials.Resolver
	factory  ports.PubSubFactory
	logger   *slog.Logger
}

// NewService creates a service.
func NewService(
	resolver *credentials.Resolver,
	factory ports.PubSubFactory,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{resolver: resolver, factory: factory, logger: logger}
}

// client resolves keys (environment first) and returns a matching client.
func (s *Service) client(args credentials.Pair) (ports.PubSub, error) {
	keys, err := s.resolver.ResolvePubSubKeys(args)
	if err != nil {
		return nil, err
	}

	return s.factory.Client(keys)
}

// SendRequest is a send_pubnub_message call.
type SendRequest struct {
	credentials.Pair
	Channel string `json:"channel"`
	Message any    `json:"message"`
	Type    string `json:"type"`
}

// SendResult reports a sent message.
type SendResult struct {
	Channel   string `json:"channel"`
	Type      string `json:"type"`
	Timetoken string `json:"timetoken"`
}

// Send publishes a message, or sends a signal when req.Type is "signal".
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	c, err := s.client(req.Pair)
	if err != nil {
		return nil, err
	}

	kind := req.Type
	if kind == "" {
		kind = TypeMessage
	}

	var tt string
	if kind == TypeSignal {
		tt, err = c.Signal(ctx, req.Channel, req.Message)
	} else {
		tt, err = c.Publish(ctx, req.Channel, req.Message)
	}
	if err != nil {
		return nil, err
	}

	return &SendResult{Channel: req.Channel, Type: kind, Timetoken: tt}, nil
}

// PresenceRequest is a get_pubnub_presence call.
type PresenceRequest struct {
	credentials.Pair
	Channels      []string `json:"channels"`
	ChannelGroups []string `json:"channelGroups"`
	UUID          string   `json:"uuid"`
}

// PresenceResult holds whichever lookups ran.
type PresenceResult struct {
	HereNow  *ports.HereNowResult `json:"hereNow,omitempty"`
	WhereNow *WhereNowResult      `json:"whereNow,omitempty"`
}

// WhereNowResult lists the channels of a user.
type WhereNowResult struct {
	UUID     string   `json:"uuid"`
	Channels []string `json:"channels"`
}

// Presence runs here-now only for non-empty channels or groups and
// where-now only when a uuid is given.
func (s *Service) Presence(ctx context.Context, req PresenceRequest) (*PresenceResult, error) {
	c, err := s.client(req.Pair)
	if err != nil {
		return nil, err
	}

	out := &PresenceResult{}
	if len(req.Channels) > 0 || len(req.ChannelGroups) > 0 {
		out.HereNow, err = c.HereNow(ctx, ports.HereNowRequest{
			Channels:      req.Channels,
			ChannelGroups: req.ChannelGroups,
		})
		if err != nil {
			return nil, err
		}
	}

	if req.UUID != "" {
		channels, err := c.WhereNow(ctx, req.UUID)
		if err != nil {
			return nil, err
		}
		if channels == nil {
			channels = []string{}
		}
		out.WhereNow = &WhereNowResult{UUID: req.UUID, Channels: channels}
	}

	return out, nil
}

// HistoryRequest is a get_pubnub_messages call.
type HistoryRequest struct {
	credentials.Pair
	Channels []string `json:"channels"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Count    int      `json:"count"`
}

// HistoryResult holds stored messages per channel.
type HistoryResult struct {
	Channels map[string][]ports.HistoryMessage `json:"channels"`
}

// History fetches stored messages.
func (s *Service) History(ctx context.Context, req HistoryRequest) (*HistoryResult, error) {
	c, err := s.client(req.Pair)
	if err != nil {
		return nil, err
	}

	count := req.Count
	if count <= 0 {
		count = defaultHistoryCount
	}

	msgs, err := c.Fetch(ctx, ports.FetchRequest{
		Channels: req.Channels,
		Start:    req.Start,
		End:      req.End,
		Count:    count,
	})
	if err != nil {
		return nil, err
	}

	return &HistoryResult{Channels: msgs}, nil
}

const defaultHistoryCount = 25
