package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/docs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/pubsub"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/schema"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/tools"
)

// EnvKeys configures Pub/Sub keys in the environment.
var EnvKeys = credentials.Env{
	credentials.EnvPublishKey:   "pub-env",
	credentials.EnvSubscribeKey: "sub-env",
}

// Registry is a fully registered tool registry backed by mocks and a
// local documentation server.
type Registry struct {
	*tools.Registry
	PubSub *MockPubSub
}

// NewRegistry registers every tool and resource against a MockPubSub and
// an httptest documentation server. Admin tools report missing
// credentials.
func NewRegistry(t testing.TB, env credentials.Env) Registry {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content":  "Call publish() with a channel.",
			"metadata": map[string]any{"title": "Publish"},
		})
	}))
	t.Cleanup(srv.Close)

	catalog, err := docs.LoadCatalog()
	require.NoError(t, err)
	docClient := docs.NewClient(docs.Config{BaseURL: srv.URL, HTTPClient: srv.Client()}, catalog)
	t.Cleanup(docClient.Close)

	resolver := credentials.NewResolver(env)
	set, err := schema.NewBuilder(resolver.HasPubSubEnvKeys(), "", catalog).Build()
	require.NoError(t, err)

	client := &MockPubSub{}
	deps := tools.Deps{
		Docs:   docClient,
		PubSub: pubsub.NewService(resolver, &MockFactory{PubSub: client}, nil),
	}

	registry := tools.NewRegistry()
	tools.RegisterAll(registry, set, deps)
	tools.RegisterResources(registry, deps, tools.Status{Name: "pubnub-mcp", PubSubKeys: "environment"})

	return Registry{Registry: registry, PubSub: client}
}
