package pnmcp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	mcpadapter "github.com/conneroisu/pubnub-mcp/pkg/pnmcp/adapters/mcp"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/adapters/mcpgo"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/adapters/pubnub"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/admin"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/analytics"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/docs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/options"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/pubsub"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/schema"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/tools"
)

const (
	// Name identifies the server to MCP clients.
	Name = "pubnub-mcp"

	instructions = "Tools for PubNub: SDK and Chat SDK documentation, how-to guides, " +
		"app and keyset administration, usage metrics, App Context, " +
		"publishing, presence, subscribing and message history."
)

// Version is set at build time.
var Version = "dev"

// Server is the assembled MCP server.
type Server struct {
	opts      *options.ServerOptions
	logger    *slog.Logger
	registry  *tools.Registry
	docs      *docs.Client
	factory   ports.PubSubFactory
	analytics *analytics.Publisher
	status    tools.Status
}

// Option customizes New.
type Option func(*settings)

type settings struct {
	logger     *slog.Logger
	factory    ports.PubSubFactory
	httpClient *http.Client
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithPubSubFactory replaces the PubNub SDK factory.
func WithPubSubFactory(f ports.PubSubFactory) Option {
	return func(s *settings) {
		s.factory = f
	}
}

// WithHTTPClient sets the client used for admin and documentation calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.httpClient = c
	}
}

// New wires every component from opts. Missing admin credentials are not
// an error: admin tools then report them at call time.
func New(opts *options.ServerOptions, optFns ...Option) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	st := settings{}
	for _, fn := range optFns {
		fn(&st)
	}
	if st.logger == nil {
		st.logger = slog.Default()
	}
	if st.httpClient == nil {
		st.httpClient = &http.Client{Timeout: opts.HTTPTimeout}
	}
	logger := st.logger

	resolver := credentials.NewResolver(opts.Env)
	if st.factory == nil {
		var factoryOpts []pubnub.FactoryOption
		if keys, ok := resolver.PubSubEnvKeys(); ok {
			factoryOpts = append(factoryOpts, pubnub.WithPinnedKeys(keys))
		}
		st.factory = pubnub.NewFactory(opts.UserID, logger, factoryOpts...)
	}

	catalog, err := docs.LoadCatalog()
	if err != nil {
		return nil, errors.Wrap(err, "load documentation catalog")
	}

	adminMode, _ := resolver.AdminMode()
	set, err := schema.NewBuilder(resolver.HasPubSubEnvKeys(), adminMode, catalog).Build()
	if err != nil {
		return nil, errors.Wrap(err, "build tool schemas")
	}

	docClient := docs.NewClient(docs.Config{
		BaseURL:    opts.DocsURL,
		HTTPClient: st.httpClient,
		CacheTTL:   opts.DocsCacheTTL,
		UserAgent:  Name + "/" + Version,
	}, catalog)

	adminFacade, err := admin.New(admin.Config{
		V1BaseURL:  opts.AdminV1URL,
		V2BaseURL:  opts.AdminV2URL,
		HTTPClient: st.httpClient,
	}, resolver, admin.WithLogger(logger))
	switch {
	case err == nil:
		logger.Info("admin API enabled", "mode", adminFacade.Mode())
	case pnerrs.IsConfigurationError(err):
		logger.Info("admin tools disabled: no admin credentials")
	default:
		docClient.Close()

		return nil, err
	}

	publisher := analytics.New(analytics.Config{
		Disabled:  opts.DisableAnalytics,
		Transport: string(opts.Transport),
	}, resolver, st.factory, logger)

	regOpts := []tools.Option{tools.WithLogger(logger)}
	if publisher != nil {
		regOpts = append(regOpts, tools.WithObserver(publisher))
	}
	registry := tools.NewRegistry(regOpts...)

	deps := tools.Deps{
		Docs:   docClient,
		Admin:  adminFacade,
		PubSub: pubsub.NewService(resolver, st.factory, logger),
	}
	tools.RegisterAll(registry, set, deps)

	status := tools.Status{
		Name:       Name,
		Version:    Version,
		Transport:  string(opts.Transport),
		PubSubKeys: "arguments",
		AdminMode:  string(adminMode),
		Analytics:  publisher != nil,
	}
	if resolver.HasPubSubEnvKeys() {
		status.PubSubKeys = "environment"
	}
	tools.RegisterResources(registry, deps, status)

	return &Server{
		opts:      opts,
		logger:    logger,
		registry:  registry,
		docs:      docClient,
		factory:   st.factory,
		analytics: publisher,
		status:    status,
	}, nil
}

// Registry returns the tool registry.
func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// Status returns the non-secret configuration summary.
func (s *Server) Status() tools.Status {
	return s.status
}

// Serve runs the configured transport until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting",
		"transport", s.opts.Transport,
		"tools", len(s.registry.Tools()),
		"pubSubKeys", s.status.PubSubKeys,
	)

	switch s.opts.Transport {
	case options.TransportStdio:
		return mcpadapter.ServeStdio(ctx, s.sdkServer())
	case options.TransportHTTP:
		return mcpadapter.ServeHTTP(ctx, s.opts.Addr, s.sdkServer(), s.logger)
	case options.TransportSSE:
		srv, err := mcpgo.NewServer(Name, Version, instructions, s.registry)
		if err != nil {
			return err
		}

		return mcpgo.ServeSSE(ctx, s.opts.Addr, mcpgo.NewSSEServer(srv, s.opts.Addr, ""), s.logger)
	}

	return pnerrs.NewConfigurationError(
		pnerrs.ErrCodeInvalidConfigOption,
		"unknown transport "+string(s.opts.Transport),
	)
}

func (s *Server) sdkServer() *mcpsdk.Server {
	return mcpadapter.NewServer(mcpadapter.Info{
		Name:         Name,
		Version:      Version,
		Instructions: instructions,
	}, s.registry)
}

// Close flushes pending usage events and releases SDK clients and caches.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.analytics.Wait(ctx)
	s.docs.Close()

	return s.factory.Close()
}
