package pubnub

import (
	"testing"
	"time"

	sdk "github.com/pubnub/go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
)

func TestFactoryClient(t *testing.T) {
	f := NewFactory("pubnub-mcp-test", nil)
	t.Cleanup(func() { _ = f.Close() })

	t.Run("incomplete keys", func(t *testing.T) {
		_, err := f.Client(credentials.Pair{PublishKey: "pub-c-1"})
		require.Error(t, err)
		assert.True(t, pnerrs.IsConfigurationError(err))
	})

	t.Run("cached per pair", func(t *testing.T) {
		a := credentials.Pair{PublishKey: "pub-c-a", SubscribeKey: "sub-c-a"}
		b := credentials.Pair{PublishKey: "pub-c-b", SubscribeKey: "sub-c-b"}

		c1, err := f.Client(a)
		require.NoError(t, err)
		c2, err := f.Client(a)
		require.NoError(t, err)
		c3, err := f.Client(b)
		require.NoError(t, err)

		assert.Same(t, c1, c2)
		assert.NotSame(t, c1, c3)
	})

	t.Run("close empties the cache", func(t *testing.T) {
		require.NoError(t, f.Close())
		assert.Zero(t, f.clients.Len())
	})
}

func TestFactoryCloseUnusedClients(t *testing.T) {
	f := NewFactory("pubnub-mcp-test", nil)
	keys := credentials.Pair{PublishKey: "pub-c-unused", SubscribeKey: "sub-c-unused"}

	ps, err := f.Client(keys)
	require.NoError(t, err)
	c := ps.(*Client)

	require.NotPanics(t, func() { require.NoError(t, f.Close()) })
	assert.True(t, c.destroyed.Load())
	assert.Zero(t, f.clients.Len())

	require.NotPanics(t, func() { require.NoError(t, f.Close()) })
}

func TestFactoryEvictsIdleClients(t *testing.T) {
	pinned := credentials.Pair{PublishKey: "pub-c-env", SubscribeKey: "sub-c-env"}
	other := credentials.Pair{PublishKey: "pub-c-arg", SubscribeKey: "sub-c-arg"}

	f := NewFactory("pubnub-mcp-test", nil,
		WithIdleTTL(20*time.Millisecond),
		WithPinnedKeys(pinned),
	)
	t.Cleanup(func() { _ = f.Close() })

	p1, err := f.Client(pinned)
	require.NoError(t, err)
	o1, err := f.Client(other)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return o1.(*Client).destroyed.Load()
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, f.clients.Has(other))

	p2, err := f.Client(pinned)
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.False(t, p1.(*Client).destroyed.Load())

	o2, err := f.Client(other)
	require.NoError(t, err)
	assert.NotSame(t, o1, o2)
}

func TestDestroyPubNubRecovers(t *testing.T) {
	require.NotPanics(t, func() { destroyPubNub(nil, nil) })
}

func TestNewConfig(t *testing.T) {
	cfg := newConfig(credentials.Pair{PublishKey: "pub-c-1", SubscribeKey: "sub-c-1"}, "user-1")

	assert.Equal(t, "pub-c-1", cfg.PublishKey)
	assert.Equal(t, "sub-c-1", cfg.SubscribeKey)
	assert.Equal(t, sdk.UserId("user-1"), cfg.GetUserId())
}
