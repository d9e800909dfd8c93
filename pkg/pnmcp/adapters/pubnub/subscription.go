package pubnub

import (
	"log/slog"
	"strconv"
	"sync"

	sdk "github.com/pubnub/go/v7"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
)

const subscriptionBuffer = 64

type subscription struct {
	pn       *sdk.PubNub
	listener *sdk.Listener
	channel  string
	logger   *slog.Logger

	out  chan ports.Message
	done chan struct{}

	removeOnce      sync.Once
	unsubscribeOnce sync.Once
}

func newSubscription(pn *sdk.PubNub, channel string, logger *slog.Logger) *subscription {
	return &subscription{
		pn:       pn,
		listener: sdk.NewListener(),
		channel:  channel,
		logger:   logger,
		out:      make(chan ports.Message, subscriptionBuffer),
		done:     make(chan struct{}),
	}
}

func (s *subscription) start() {
	s.pn.AddListener(s.listener)
	go s.forward()
	s.pn.Subscribe().Channels([]string{s.channel}).Execute()
}

func (s *subscription) forward() {
	for {
		select {
		case <-s.done:
			return
		case m := <-s.listener.Message:
			s.deliver(m, false)
		case m := <-s.listener.Signal:
			s.deliver(m, true)
		case st := <-s.listener.Status:
			if st != nil {
				s.logger.Debug("subscription status",
					"channel", s.channel,
					"category", st.Category,
					"error", st.Error)
			}
		}
	}
}

func (s *subscription) deliver(m *sdk.PNMessage, signal bool) {
	if m == nil || m.Channel != s.channel {
		return
	}

	msg := ports.Message{
		Channel:   m.Channel,
		Publisher: m.Publisher,
		Timetoken: strconv.FormatInt(m.Timetoken, 10),
		Message:   m.Message,
		Signal:    signal,
	}

	select {
	case s.out <- msg:
	case <-s.done:
	}
}

// Messages implements ports.Subscription.
func (s *subscription) Messages() <-chan ports.Message {
	return s.out
}

// RemoveListener implements ports.Subscription.
func (s *subscription) RemoveListener() {
	s.removeOnce.Do(func() {
		s.pn.RemoveListener(s.listener)
		close(s.done)
	})
}

// Unsubscribe implements ports.Subscription.
func (s *subscription) Unsubscribe() {
	s.unsubscribeOnce.Do(func() {
		s.pn.Unsubscribe().Channels([]string{s.channel}).Execute()
		destroyPubNub(s.pn, s.logger)
	})
}
