// Package testutil provides test utilities and mocks.
package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
)

// MockPubSub implements ports.PubSub for testing.
type MockPubSub struct {
	PublishFunc   func(context.Context, string, any) (string, error)
	SignalFunc    func(context.Context, string, any) (string, error)
	HereNowFunc   func(context.Context, ports.HereNowRequest) (*ports.HereNowResult, error)
	WhereNowFunc  func(context.Context, string) ([]string, error)
	SubscribeFunc func(context.Context, string) (ports.Subscription, error)
	FetchFunc     func(context.Context, ports.FetchRequest) (map[string][]ports.HistoryMessage, error)
	ObjectsFunc   func(context.Context, ports.ObjectsRequest) (any, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockPubSub) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the names of the methods invoked so far, in order.
func (m *MockPubSub) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.calls...)
}

// Publish calls the mock function.
func (m *MockPubSub) Publish(ctx context.Context, channel string, message any) (string, error) {
	m.record("Publish")
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, channel, message)
	}

	return "17000000000000000", nil
}

// Signal calls the mock function.
func (m *MockPubSub) Signal(ctx context.Context, channel string, message any) (string, error) {
	m.record("Signal")
	if m.SignalFunc != nil {
		return m.SignalFunc(ctx, channel, message)
	}

	return "17000000000000001", nil
}

// HereNow calls the mock function.
func (m *MockPubSub) HereNow(
	ctx context.Context,
	req ports.HereNowRequest,
) (*ports.HereNowResult, error) {
	m.record("HereNow")
	if m.HereNowFunc != nil {
		return m.HereNowFunc(ctx, req)
	}

	return &ports.HereNowResult{}, nil
}

// WhereNow calls the mock function.
func (m *MockPubSub) WhereNow(ctx context.Context, uuid string) ([]string, error) {
	m.record("WhereNow")
	if m.WhereNowFunc != nil {
		return m.WhereNowFunc(ctx, uuid)
	}

	return []string{}, nil
}

// Subscribe calls the mock function.
func (m *MockPubSub) Subscribe(ctx context.Context, channel string) (ports.Subscription, error) {
	m.record("Subscribe")
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, channel)
	}

	return NewMockSubscription(0), nil
}

// Fetch calls the mock function.
func (m *MockPubSub) Fetch(
	ctx context.Context,
	req ports.FetchRequest,
) (map[string][]ports.HistoryMessage, error) {
	m.record("Fetch")
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, req)
	}

	return map[string][]ports.HistoryMessage{}, nil
}

// Objects calls the mock function.
func (m *MockPubSub) Objects(ctx context.Context, req ports.ObjectsRequest) (any, error) {
	m.record("Objects")
	if m.ObjectsFunc != nil {
		return m.ObjectsFunc(ctx, req)
	}

	return map[string]any{}, nil
}

// MockSubscription implements ports.Subscription and counts cleanup calls.
type MockSubscription struct {
	Ch chan ports.Message

	removeCalls      atomic.Int32
	unsubscribeCalls atomic.Int32
}

// NewMockSubscription creates a subscription whose channel buffers size
// messages.
func NewMockSubscription(size int) *MockSubscription {
	return &MockSubscription{Ch: make(chan ports.Message, size)}
}

// Messages returns the message channel.
func (s *MockSubscription) Messages() <-chan ports.Message {
	return s.Ch
}

// RemoveListener records the call.
func (s *MockSubscription) RemoveListener() {
	s.removeCalls.Add(1)
}

// Unsubscribe records the call.
func (s *MockSubscription) Unsubscribe() {
	s.unsubscribeCalls.Add(1)
}

// RemoveListenerCalls returns how often RemoveListener ran.
func (s *MockSubscription) RemoveListenerCalls() int {
	return int(s.removeCalls.Load())
}

// UnsubscribeCalls returns how often Unsubscribe ran.
func (s *MockSubscription) UnsubscribeCalls() int {
	return int(s.unsubscribeCalls.Load())
}

// MockFactory implements ports.PubSubFactory, handing out PubSub for
// every key pair and recording the pairs requested.
type MockFactory struct {
	PubSub ports.PubSub
	Err    error

	mu   sync.Mutex
	keys []credentials.Pair
}

// Client returns the configured client.
func (f *MockFactory) Client(keys credentials.Pair) (ports.PubSub, error) {
	f.mu.Lock()
	f.keys = append(f.keys, keys)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	return f.PubSub, nil
}

// Keys returns every key pair requested so far.
func (f *MockFactory) Keys() []credentials.Pair {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]credentials.Pair(nil), f.keys...)
}

// Close does nothing.
func (*MockFactory) Close() error {
	return nil
}

var (
	_ ports.PubSub        = (*MockPubSub)(nil)
	_ ports.Subscription  = (*MockSubscription)(nil)
	_ ports.PubSubFactory = (*MockFactory)(nil)
)
