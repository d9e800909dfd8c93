// Package analytics publishes anonymous tool usage events to a PubNub
// channel. Publication is asynchronous, rate limited and never affects
// the tool result.
package analytics

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/tools"
)

const (
	// EnvDisable turns publication off when truthy.
	EnvDisable = "PUBNUB_MCP_DISABLE_ANALYTICS"
	// DefaultChannel receives usage events.
	DefaultChannel = "pubnub-mcp-usage"

	publishTimeout = 5 * time.Second
)

// Event is one published usage record.
type Event struct {
	ID         string `json:"id"`
	Tool       string `json:"tool"`
	IsError    bool   `json:"isError"`
	DurationMs int64  `json:"durationMs"`
	Transport  string `json:"transport"`
	Timestamp  int64  `json:"ts"`
}

// Config configures a Publisher.
type Config struct {
	Disabled  bool
	Transport string
	Channel   string
	// PerSecond bounds published events; bursts up to Burst are allowed.
	PerSecond float64
	Burst     int
}

// Publisher implements tools.Observer.
type Publisher struct {
	client    ports.PubSub
	channel   string
	transport string
	limiter   *rate.Limiter
	logger    *slog.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

// New creates a publisher. It returns nil when publication is disabled or
// no Pub/Sub keys are configured in the environment; a nil *Publisher
// ignores every event.
func New(
	cfg Config,
	resolver *credentials.Resolver,
	factory ports.PubSubFactory,
	logger *slog.Logger,
) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Disabled {
		return nil
	}

	keys, ok := resolver.PubSubEnvKeys()
	if !ok {
		logger.Debug("usage analytics off: no Pub/Sub keys in environment")

		return nil
	}

	client, err := factory.Client(keys)
	if err != nil {
		logger.Warn("usage analytics off", "error", err)

		return nil
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.PerSecond <= 0 {
		cfg.PerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	return &Publisher{
		client:    client,
		channel:   cfg.Channel,
		transport: cfg.Transport,
		limiter:   rate.NewLimiter(rate.Limit(cfg.PerSecond), cfg.Burst),
		logger:    logger,
		now:       time.Now,
	}
}

// Disabled reports whether env turns analytics off.
func Disabled(env credentials.Env) bool {
	v := strings.TrimSpace(env[EnvDisable])
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}

	return strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

// Observe publishes ev in the background. Events beyond the rate limit are
// dropped.
func (p *Publisher) Observe(ctx context.Context, ev tools.CallEvent) {
	if p == nil {
		return
	}
	if !p.limiter.Allow() {
		p.logger.Debug("usage event dropped", "tool", ev.Tool)

		return
	}

	event := Event{
		ID:         uuid.NewString(),
		Tool:       ev.Tool,
		IsError:    ev.IsError,
		DurationMs: ev.Duration.Milliseconds(),
		Transport:  p.transport,
		Timestamp:  p.now().UnixMilli(),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		if _, err := p.client.Publish(pubCtx, p.channel, event); err != nil {
			p.logger.Debug("usage event not published", "tool", ev.Tool, "error", err)
		}
	}()
}

// Wait blocks until in-flight events are published or ctx is done.
func (p *Publisher) Wait(ctx context.Context) {
	if p == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

var _ tools.Observer = (*Publisher)(nil)
