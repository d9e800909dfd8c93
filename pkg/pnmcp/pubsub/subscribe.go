package pubsub

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
)

// MaxSubscribeTimeout caps how long a subscribe call waits.
const MaxSubscribeTimeout = 30 * time.Second

// maxPrealloc bounds the initial result capacity; messageCount is caller
// supplied and only bounded below.
const maxPrealloc = 64

// SubscribeRequest is a subscribe_and_receive_pubnub_messages call.
// Timeout is in seconds.
type SubscribeRequest struct {
	credentials.Pair
	Channel      string  `json:"channel"`
	MessageCount int     `json:"messageCount"`
	Timeout      float64 `json:"timeout"`
}

// SubscribeResult holds the messages received before the call returned.
type SubscribeResult struct {
	Channel      string          `json:"channel"`
	MessageCount int             `json:"messageCount"`
	Messages     []ports.Message `json:"messages"`
	Note         string          `json:"note,omitempty"`
}

// SubscribeAndReceive subscribes to req.Channel and returns once
// MessageCount messages arrived, the timeout elapsed or ctx is done. The
// listener is removed and the channel unsubscribed exactly once on every
// path.
func (s *Service) SubscribeAndReceive(ctx context.Context, req SubscribeRequest) (*SubscribeResult, error) {
	c, err := s.client(req.Pair)
	if err != nil {
		return nil, err
	}

	want := req.MessageCount
	if want < 1 {
		want = 1
	}
	timeout := time.Duration(req.Timeout * float64(time.Second))
	if timeout < 0 {
		timeout = 0
	}
	if timeout > MaxSubscribeTimeout {
		timeout = MaxSubscribeTimeout
	}

	sub, err := c.Subscribe(ctx, req.Channel)
	if err != nil {
		return nil, err
	}
	defer func() {
		sub.RemoveListener()
		sub.Unsubscribe()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	msgs := make([]ports.Message, 0, min(want, maxPrealloc))
collect:
	for len(msgs) < want {
		select {
		case m, ok := <-sub.Messages():
			if !ok {
				break collect
			}
			msgs = append(msgs, m)
		case <-timer.C:
			break collect
		case <-ctx.Done():
			s.logger.DebugContext(ctx, "subscribe cancelled",
				"channel", req.Channel, "received", len(msgs))

			return nil, ctx.Err()
		}
	}

	out := &SubscribeResult{
		Channel:      req.Channel,
		MessageCount: len(msgs),
		Messages:     msgs,
	}
	if len(msgs) < want {
		out.Note = fmt.Sprintf(
			"Only %d of %d expected messages received within %ss",
			len(msgs), want, strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64),
		)
	}

	return out, nil
}
