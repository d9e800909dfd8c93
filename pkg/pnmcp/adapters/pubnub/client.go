package pubnub

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	sdk "github.com/pubnub/go/v7"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
)

// Client is a PubNub SDK instance bound to one key pair.
type Client struct {
	pn     *sdk.PubNub
	keys   credentials.Pair
	userID string
	logger *slog.Logger

	destroyOnce sync.Once
	destroyed   atomic.Bool
}

func newClient(keys credentials.Pair, userID string, logger *slog.Logger) *Client {
	return &Client{
		pn:     sdk.NewPubNub(newConfig(keys, userID)),
		keys:   keys,
		userID: userID,
		logger: logger,
	}
}

// destroy releases the SDK instance once.
func (c *Client) destroy() {
	c.destroyOnce.Do(func() {
		destroyPubNub(c.pn, c.logger)
		c.destroyed.Store(true)
	})
}

// Publish sends a stored message.
func (c *Client) Publish(ctx context.Context, channel string, message any) (string, error) {
	res, _, err := c.pn.PublishWithContext(ctx).
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return "", errors.Wrapf(err, "publish to %s", channel)
	}

	return strconv.FormatInt(res.Timestamp, 10), nil
}

// Signal sends a signal.
func (c *Client) Signal(ctx context.Context, channel string, message any) (string, error) {
	res, _, err := c.pn.SignalWithContext(ctx).
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return "", errors.Wrapf(err, "signal to %s", channel)
	}

	return strconv.FormatInt(res.Timestamp, 10), nil
}

// HereNow reports occupancy including user ids and state.
func (c *Client) HereNow(ctx context.Context, req ports.HereNowRequest) (*ports.HereNowResult, error) {
	res, _, err := c.pn.HereNowWithContext(ctx).
		Channels(req.Channels).
		ChannelGroups(req.ChannelGroups).
		IncludeUUIDs(true).
		IncludeState(true).
		Execute()
	if err != nil {
		return nil, errors.Wrap(err, "here now")
	}

	out := &ports.HereNowResult{
		TotalChannels:  res.TotalChannels,
		TotalOccupancy: res.TotalOccupancy,
		Channels:       make([]ports.ChannelOccupancy, 0, len(res.Channels)),
	}
	for _, ch := range res.Channels {
		occ := ports.ChannelOccupancy{
			Channel:   ch.ChannelName,
			Occupancy: ch.Occupancy,
			Occupants: make([]ports.Occupant, 0, len(ch.Occupants)),
		}
		for _, o := range ch.Occupants {
			occ.Occupants = append(occ.Occupants, ports.Occupant{UUID: o.UUID, State: o.State})
		}
		out.Channels = append(out.Channels, occ)
	}

	return out, nil
}

// WhereNow lists the channels uuid is present on.
func (c *Client) WhereNow(ctx context.Context, uuid string) ([]string, error) {
	res, _, err := c.pn.WhereNowWithContext(ctx).UUID(uuid).Execute()
	if err != nil {
		return nil, errors.Wrapf(err, "where now for %s", uuid)
	}

	return res.Channels, nil
}

// Fetch reads stored messages.
func (c *Client) Fetch(ctx context.Context, req ports.FetchRequest) (map[string][]ports.HistoryMessage, error) {
	b := c.pn.FetchWithContext(ctx).
		Channels(req.Channels).
		Count(req.Count)

	if req.Start != "" {
		start, err := strconv.ParseInt(req.Start, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "start timetoken %q", req.Start)
		}
		b = b.Start(start)
	}
	if req.End != "" {
		end, err := strconv.ParseInt(req.End, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "end timetoken %q", req.End)
		}
		b = b.End(end)
	}

	res, _, err := b.Execute()
	if err != nil {
		return nil, errors.Wrap(err, "fetch history")
	}

	out := make(map[string][]ports.HistoryMessage, len(res.Messages))
	for channel, items := range res.Messages {
		msgs := make([]ports.HistoryMessage, 0, len(items))
		for _, item := range items {
			msgs = append(msgs, ports.HistoryMessage{
				Message:   item.Message,
				Timetoken: fmt.Sprint(item.Timetoken),
				Meta:      item.Meta,
			})
		}
		out[channel] = msgs
	}

	return out, nil
}

// Subscribe opens a dedicated SDK instance for channel so concurrent
// subscriptions never share listeners or connections.
func (c *Client) Subscribe(_ context.Context, channel string) (ports.Subscription, error) {
	pn := sdk.NewPubNub(newConfig(c.keys, c.userID))
	s := newSubscription(pn, channel, c.logger)
	s.start()

	return s, nil
}

var _ ports.PubSub = (*Client)(nil)
