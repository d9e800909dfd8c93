// Package admin presents one interface over both PubNub admin API
// generations.
//
// The generation is picked once from the configured credentials: v2 when
// PUBNUB_API_KEY is set, v1 when PUBNUB_EMAIL and PUBNUB_PASSWORD are.
// Responses of either backend are normalized into the shapes of package
// models, and upstream failures are returned as *pnerrs.UpstreamError with
// the parsed response body.
package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/models"
)

// Backend is one admin API generation.
type Backend interface {
	Mode() credentials.AdminMode
	ListApps(ctx context.Context) ([]models.App, error)
	CreateApp(ctx context.Context, name string) (*models.App, error)
	UpdateApp(ctx context.Context, id, name string) (*models.App, error)
	GetKeyset(ctx context.Context, id string) (*models.Keyset, error)
	ListKeysets(ctx context.Context, appID string) ([]models.Keyset, error)
	CreateKeyset(ctx context.Context, appID string, in models.NewKeyset) (*models.Keyset, error)
	UpdateKeysetConfig(ctx context.Context, id string, cfg models.KeysetConfig) (*models.Keyset, error)
	UsageMetrics(ctx context.Context, q models.UsageQuery) (json.RawMessage, error)
}

// Config selects base URLs and the HTTP client.
type Config struct {
	V1BaseURL  string
	V2BaseURL  string
	HTTPClient *http.Client
}

// Facade is the normalized admin interface used by the tools.
type Facade struct {
	backend Backend
	envKeys *credentials.Pair
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Facade.
type Option func(*Facade)

// WithEnvKeys enables the update guard: only the keyset owning keys may
// be reconfigured.
func WithEnvKeys(keys credentials.Pair) Option {
	return func(f *Facade) {
		if keys.Complete() {
			f.envKeys = &keys
		}
	}
}

// WithClock overrides the clock used for default app names.
func WithClock(now func() time.Time) Option {
	return func(f *Facade) {
		f.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Facade) {
		f.logger = logger
	}
}

// NewFacade wraps backend.
func NewFacade(backend Backend, opts ...Option) *Facade {
	f := &Facade{
		backend: backend,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// New picks the backend from the resolver's admin credentials. It fails
// with a configuration error when none are set.
func New(cfg Config, resolver *credentials.Resolver, opts ...Option) (*Facade, error) {
	mode, err := resolver.AdminMode()
	if err != nil {
		return nil, err
	}

	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	var backend Backend
	switch mode {
	case credentials.AdminV2:
		backend = NewV2(cfg.V2BaseURL, cfg.HTTPClient, resolver.APIKey())
	default:
		email, password := resolver.Login()
		backend = NewV1(cfg.V1BaseURL, cfg.HTTPClient, email, password)
	}

	if keys, ok := resolver.PubSubEnvKeys(); ok {
		opts = append([]Option{WithEnvKeys(keys)}, opts...)
	}

	return NewFacade(backend, opts...), nil
}

// Mode returns the admin API generation in use.
func (f *Facade) Mode() credentials.AdminMode {
	return f.backend.Mode()
}

// ListApps lists every app of the account.
func (f *Facade) ListApps(ctx context.Context) ([]models.App, error) {
	return f.backend.ListApps(ctx)
}

// CreateApp creates an app.
func (f *Facade) CreateApp(ctx context.Context, name string) (*models.App, error) {
	return f.backend.CreateApp(ctx, name)
}

// UpdateApp renames an app.
func (f *Facade) UpdateApp(ctx context.Context, id, name string) (*models.App, error) {
	return f.backend.UpdateApp(ctx, id, name)
}

// GetKeyset fetches one keyset.
func (f *Facade) GetKeyset(ctx context.Context, id string) (*models.Keyset, error) {
	return f.backend.GetKeyset(ctx, id)
}

// ListKeysets lists the keysets of appID, or all keysets when empty.
func (f *Facade) ListKeysets(ctx context.Context, appID string) ([]models.Keyset, error) {
	return f.backend.ListKeysets(ctx, appID)
}

// CreateKeyset creates a keyset. Without an app id a new app is created
// first and the keyset is placed under it.
func (f *Facade) CreateKeyset(ctx context.Context, in models.NewKeyset) (*models.Keyset, error) {
	appID := in.AppID
	if appID == "" {
		app, err := f.backend.CreateApp(ctx, f.appNameFor(in.Name))
		if err != nil {
			return nil, err
		}
		f.logger.InfoContext(ctx, "created app for new keyset", "appId", app.ID, "name", app.Name)
		appID = app.ID
	}

	return f.backend.CreateKeyset(ctx, appID, in)
}

func (f *Facade) appNameFor(keysetName string) string {
	if keysetName != "" {
		return keysetName + " App"
	}

	return "PubNub MCP App " + f.now().UTC().Format("2006-01-02 15:04:05")
}

// UpdateKeysetConfig applies cfg to keyset id. When Pub/Sub keys come from
// the environment only the keyset owning them may be updated.
func (f *Facade) UpdateKeysetConfig(
	ctx context.Context,
	id string,
	cfg models.KeysetConfig,
) (*models.Keyset, error) {
	if err := f.guard(ctx, id); err != nil {
		return nil, err
	}

	return f.backend.UpdateKeysetConfig(ctx, id, cfg)
}

func (f *Facade) guard(ctx context.Context, id string) error {
	if f.envKeys == nil {
		return nil
	}

	keysets, err := f.backend.ListKeysets(ctx, "")
	if err != nil {
		return err
	}

	for _, ks := range keysets {
		if ks.PublishKey != f.envKeys.PublishKey || ks.SubscribeKey != f.envKeys.SubscribeKey {
			continue
		}
		if ks.ID != id {
			return pnerrs.NewKeysetMismatchError(id, ks.ID)
		}

		return nil
	}

	return pnerrs.NewKeysetUnknownError(id)
}

// GetUsageMetrics returns the usage report of the active generation.
func (f *Facade) GetUsageMetrics(ctx context.Context, q models.UsageQuery) (json.RawMessage, error) {
	return f.backend.UsageMetrics(ctx, q)
}
