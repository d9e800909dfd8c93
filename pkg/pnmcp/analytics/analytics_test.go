package analytics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/analytics"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/internal/testutil"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/tools"
)

var envKeys = credentials.Env{
	credentials.EnvPublishKey:   "pub",
	credentials.EnvSubscribeKey: "sub",
}

func TestPublishesEvents(t *testing.T) {
	var (
		mu      sync.Mutex
		channel string
		events  []analytics.Event
	)
	client := &testutil.MockPubSub{
		PublishFunc: func(_ context.Context, ch string, message any) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			channel = ch
			events = append(events, message.(analytics.Event))

			return "1", nil
		},
	}
	factory := &testutil.MockFactory{PubSub: client}

	p := analytics.New(analytics.Config{Transport: "stdio"}, credentials.NewResolver(envKeys), factory, nil)
	require.NotNil(t, p)

	p.Observe(context.Background(), tools.CallEvent{Tool: "how_to", Duration: 1500 * time.Millisecond})
	p.Wait(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, analytics.DefaultChannel, channel)
	require.Len(t, events, 1)
	assert.Equal(t, "how_to", events[0].Tool)
	assert.EqualValues(t, 1500, events[0].DurationMs)
	assert.Equal(t, "stdio", events[0].Transport)
	assert.NotEmpty(t, events[0].ID)
}

func TestDisabled(t *testing.T) {
	factory := &testutil.MockFactory{PubSub: &testutil.MockPubSub{}}

	assert.Nil(t, analytics.New(analytics.Config{Disabled: true}, credentials.NewResolver(envKeys), factory, nil))
	assert.Nil(t, analytics.New(analytics.Config{}, credentials.NewResolver(credentials.Env{}), factory, nil))

	var p *analytics.Publisher
	assert.NotPanics(t, func() {
		p.Observe(context.Background(), tools.CallEvent{Tool: "x"})
		p.Wait(context.Background())
	})
}

func TestDisabledFlag(t *testing.T) {
	tests := map[string]bool{
		"":      false,
		"1":     true,
		"true":  true,
		"TRUE":  true,
		"yes":   true,
		"0":     false,
		"false": false,
		"nope":  false,
	}

	for value, want := range tests {
		t.Run(value, func(t *testing.T) {
			env := credentials.Env{analytics.EnvDisable: value}
			assert.Equal(t, want, analytics.Disabled(env))
		})
	}
}

func TestRateLimitDropsBursts(t *testing.T) {
	client := &testutil.MockPubSub{}
	factory := &testutil.MockFactory{PubSub: client}

	p := analytics.New(analytics.Config{PerSecond: 0.001, Burst: 2}, credentials.NewResolver(envKeys), factory, nil)
	require.NotNil(t, p)

	for range 5 {
		p.Observe(context.Background(), tools.CallEvent{Tool: "x"})
	}
	p.Wait(context.Background())

	assert.Len(t, client.Calls(), 2)
}
