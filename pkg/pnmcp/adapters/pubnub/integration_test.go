//go:build integration
// +build integration

package pubnub_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/adapters/pubnub"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
)

var keys credentials.Pair

func TestMain(m *testing.M) {
	var ok bool
	keys, ok = credentials.NewResolver(credentials.FromEnviron()).PubSubEnvKeys()
	if !ok {
		fmt.Println("Skipping integration tests: PUBNUB_PUBLISH_KEY/PUBNUB_SUBSCRIBE_KEY not set")
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f := pubnub.NewFactory("pubnub-mcp-it-"+uuid.NewString(), nil)
	defer f.Close()

	client, err := f.Client(keys)
	require.NoError(t, err)

	channel := "pubnub-mcp-it-" + uuid.NewString()
	sub, err := client.Subscribe(ctx, channel)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	defer sub.RemoveListener()

	// Give the subscribe loop time to connect.
	time.Sleep(2 * time.Second)

	tt, err := client.Publish(ctx, channel, map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, tt)

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, channel, msg.Channel)
		assert.False(t, msg.Signal)
	case <-ctx.Done():
		t.Fatal("message not received")
	}

	history, err := client.Fetch(ctx, ports.FetchRequest{Channels: []string{channel}, Count: 1})
	require.NoError(t, err)
	assert.NotNil(t, history)
}
