// Package pubnub implements the Pub/Sub port on top of the PubNub Go SDK.
package pubnub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	sdk "github.com/pubnub/go/v7"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
)

// DefaultIdleTTL is how long an unused client for argument-supplied keys
// is kept before its SDK instance is destroyed.
const DefaultIdleTTL = 15 * time.Minute

// Factory caches one SDK client per key pair. Clients idle longer than the
// idle TTL are destroyed; pinned pairs are kept until Close.
type Factory struct {
	userID string
	logger *slog.Logger
	pinned map[credentials.Pair]struct{}

	mu       sync.Mutex
	clients  *ttlcache.Cache[credentials.Pair, *Client]
	stopOnce sync.Once
}

// FactoryOption customizes NewFactory.
type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	idleTTL time.Duration
	pinned  []credentials.Pair
}

// WithIdleTTL sets how long unused clients are kept.
func WithIdleTTL(d time.Duration) FactoryOption {
	return func(c *factoryConfig) {
		c.idleTTL = d
	}
}

// WithPinnedKeys keeps the clients for keys until Close.
func WithPinnedKeys(keys ...credentials.Pair) FactoryOption {
	return func(c *factoryConfig) {
		c.pinned = append(c.pinned, keys...)
	}
}

// NewFactory creates a factory whose clients identify as userID.
func NewFactory(userID string, logger *slog.Logger, opts ...FactoryOption) *Factory {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := factoryConfig{idleTTL: DefaultIdleTTL}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &Factory{
		userID: userID,
		logger: logger,
		pinned: make(map[credentials.Pair]struct{}, len(cfg.pinned)),
		clients: ttlcache.New[credentials.Pair, *Client](
			ttlcache.WithTTL[credentials.Pair, *Client](cfg.idleTTL),
		),
	}
	for _, keys := range cfg.pinned {
		f.pinned[keys] = struct{}{}
	}

	f.clients.OnEviction(func(
		_ context.Context,
		reason ttlcache.EvictionReason,
		item *ttlcache.Item[credentials.Pair, *Client],
	) {
		if reason == ttlcache.EvictionReasonExpired {
			f.logger.Debug("destroying idle pubnub client")
		}
		item.Value().destroy()
	})
	go f.clients.Start()

	return f
}

// Client returns the client for keys, creating it on first use.
func (f *Factory) Client(keys credentials.Pair) (ports.PubSub, error) {
	if !keys.Complete() {
		return nil, credentials.ErrMissingPubSubKeys()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if item := f.clients.Get(keys); item != nil {
		return item.Value(), nil
	}

	ttl := ttlcache.DefaultTTL
	if _, ok := f.pinned[keys]; ok {
		ttl = ttlcache.NoTTL
	}

	c := newClient(keys, f.userID, f.logger)
	f.clients.Set(keys, c, ttl)

	return c, nil
}

// Close destroys every cached client. It is safe to call more than once.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.clients.Items()
	f.clients.DeleteAll()
	for _, item := range items {
		item.Value().destroy()
	}
	f.stopOnce.Do(f.clients.Stop)

	return nil
}

// destroyPubNub tears down pn. The SDK's Destroy dereferences an HTTP
// client that only exists after the first non-subscribe request, so it is
// created first; any remaining panic is logged.
func destroyPubNub(pn *sdk.PubNub, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Warn("pubnub client teardown failed", "panic", fmt.Sprint(p))
		}
	}()

	pn.GetClient()
	pn.Destroy()
}

func newConfig(keys credentials.Pair, userID string) *sdk.Config {
	cfg := sdk.NewConfigWithUserId(sdk.UserId(userID))
	cfg.PublishKey = keys.PublishKey
	cfg.SubscribeKey = keys.SubscribeKey

	return cfg
}

var _ ports.PubSubFactory = (*Factory)(nil)
