package docs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/docs"
)

const docBody = `{"content":"# Publish","metadata":{"title":"Publish","source_url":"https://www.pubnub.com/docs/sdks/go","updated_at":"2026-01-01"}}`

func newClient(t *testing.T, handler http.HandlerFunc) *docs.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	catalog, err := docs.LoadCatalog()
	require.NoError(t, err)

	c := docs.NewClient(docs.Config{BaseURL: srv.URL}, catalog)
	t.Cleanup(c.Close)

	return c
}

func TestSDKDocumentation(t *testing.T) {
	t.Run("fetches and caches", func(t *testing.T) {
		var calls atomic.Int32
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, "/v1/sdk-docs", r.URL.Path)
			assert.Equal(t, "go", r.URL.Query().Get("language"))
			assert.Equal(t, "publish-and-subscribe", r.URL.Query().Get("feature"))
			_, _ = w.Write([]byte(docBody))
		})

		for range 2 {
			doc, err := c.SDKDocumentation(context.Background(), "go", "publish-and-subscribe")
			require.NoError(t, err)
			assert.Equal(t, "# Publish", doc.Content)
			assert.Equal(t, "https://www.pubnub.com/docs/sdks/go", doc.Metadata.SourceURL)
		}

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("unsupported pair never reaches upstream", func(t *testing.T) {
		c := newClient(t, func(_ http.ResponseWriter, _ *http.Request) {
			t.Error("upstream must not be called")
		})

		_, err := c.SDKDocumentation(context.Background(), "rust", "files")
		require.Error(t, err)
		assert.True(t, pnerrs.IsValidationError(err))
		assert.Contains(t, err.Error(), "not available for language")
	})

	t.Run("upstream error keeps parsed body", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"status":{"errorData":"docs index rebuilding"}}`))
		})

		_, err := c.SDKDocumentation(context.Background(), "go", "presence")
		require.Error(t, err)
		info := pnerrs.ParseError(err)
		assert.Equal(t, "PubNubError", info.Name)
		assert.Equal(t, "docs index rebuilding", info.Message)
	})
}

func TestChatAndHowTo(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chat-sdk-docs", "/v1/how-to/how-to-use-signals", "/v1/best-practices":
			_, _ = w.Write([]byte(docBody))
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()

	_, err := c.ChatSDKDocumentation(ctx, "kotlin", "threads")
	require.NoError(t, err)

	_, err = c.ChatSDKDocumentation(ctx, "unreal", "message-drafts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `feature "message-drafts" is not available for language "unreal"`)

	_, err = c.HowTo(ctx, "how-to-use-signals")
	require.NoError(t, err)

	_, err = c.HowTo(ctx, "how-to-fly")
	require.Error(t, err)
	assert.True(t, pnerrs.IsValidationError(err))

	_, err = c.BestPractices(ctx)
	require.NoError(t, err)
}

func TestCatalog(t *testing.T) {
	catalog, err := docs.LoadCatalog()
	require.NoError(t, err)

	assert.Contains(t, catalog.SDKLanguages(), "go")
	assert.Contains(t, catalog.SDKFeatures(), "app-context")
	assert.Contains(t, catalog.ChatLanguages(), "javascript")
	assert.NotEmpty(t, catalog.HowToSlugs())

	require.NoError(t, catalog.CheckSDK("javascript", "files"))

	err = catalog.CheckSDK("cobol", "files")
	require.Error(t, err)
	var vErr *pnerrs.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "language", vErr.Field())

	_, err = docs.ParseCatalog([]byte("sdk: {}\n"))
	require.Error(t, err)
}

func TestTransportFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("timeout is a network error", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		catalog, err := docs.LoadCatalog()
		require.NoError(t, err)
		c := docs.NewClient(docs.Config{
			BaseURL:    srv.URL,
			HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
		}, catalog)
		t.Cleanup(c.Close)

		_, err = c.BestPractices(ctx)
		require.Error(t, err)
		assert.True(t, pnerrs.IsNetworkError(err))

		pnErr, ok := pnerrs.AsPNError(err)
		require.True(t, ok)
		assert.Equal(t, pnerrs.ErrCodeNetworkTimeout, pnErr.Code())
	})

	t.Run("undecodable body", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := c.BestPractices(ctx)
		require.Error(t, err)
		assert.True(t, pnerrs.IsUpstreamError(err))

		pnErr, ok := pnerrs.AsPNError(err)
		require.True(t, ok)
		assert.Equal(t, pnerrs.ErrCodeUpstreamDecode, pnErr.Code())
	})

	t.Run("rate limited response keeps retry after", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := c.BestPractices(ctx)
		require.Error(t, err)

		var up *pnerrs.UpstreamError
		require.ErrorAs(t, err, &up)
		assert.Equal(t, pnerrs.ErrCodeUpstreamRateLimit, up.Code())
		d, ok := up.RetryAfter()
		require.True(t, ok)
		assert.Equal(t, 3*time.Second, d)
	})
}
