// Package docs is a typed client for the PubNub documentation service.
// Language/feature pairs are checked against the embedded catalog before
// any request leaves the process, and responses are cached for a short
// TTL since documentation changes rarely.
package docs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/models"
)

const (
	// DefaultBaseURL is the production documentation service.
	DefaultBaseURL = "https://mcp-api.pubnub.com"
	// DefaultCacheTTL bounds how long a fetched page is served from memory.
	DefaultCacheTTL = 10 * time.Minute

	serviceName     = "documentation service"
	maxResponseSize = 8 << 20
)

// Config configures the documentation client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	CacheTTL   time.Duration
	// RequestsPerSecond limits outbound requests; zero means unlimited.
	RequestsPerSecond float64
	UserAgent         string
}

// Client fetches documentation pages.
type Client struct {
	baseURL   string
	http      *http.Client
	catalog   *Catalog
	cache     *ttlcache.Cache[string, *models.Documentation]
	limiter   *rate.Limiter
	userAgent string
	stopOnce  sync.Once
}

// NewClient creates a documentation client validating against catalog.
func NewClient(cfg Config, catalog *Catalog) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	cache := ttlcache.New[string, *models.Documentation](
		ttlcache.WithTTL[string, *models.Documentation](cfg.CacheTTL),
		ttlcache.WithDisableTouchOnHit[string, *models.Documentation](),
	)
	go cache.Start()

	return &Client{
		baseURL:   cfg.BaseURL,
		http:      cfg.HTTPClient,
		catalog:   catalog,
		cache:     cache,
		limiter:   limiter,
		userAgent: cfg.UserAgent,
	}
}

// Catalog returns the compatibility catalog in use.
func (c *Client) Catalog() *Catalog {
	return c.catalog
}

// Close stops the cache janitor. Later calls are no-ops.
func (c *Client) Close() {
	c.stopOnce.Do(c.cache.Stop)
}

// SDKDocumentation fetches core SDK documentation for a language feature.
func (c *Client) SDKDocumentation(
	ctx context.Context,
	language, feature string,
) (*models.Documentation, error) {
	if err := c.catalog.CheckSDK(language, feature); err != nil {
		return nil, err
	}

	q := url.Values{"language": {language}, "feature": {feature}}

	return c.get(ctx, "/v1/sdk-docs", q)
}

// ChatSDKDocumentation fetches Chat SDK documentation for a language feature.
func (c *Client) ChatSDKDocumentation(
	ctx context.Context,
	language, feature string,
) (*models.Documentation, error) {
	if err := c.catalog.CheckChat(language, feature); err != nil {
		return nil, err
	}

	q := url.Values{"language": {language}, "feature": {feature}}

	return c.get(ctx, "/v1/chat-sdk-docs", q)
}

// HowTo fetches a how-to guide by slug.
func (c *Client) HowTo(ctx context.Context, slug string) (*models.Documentation, error) {
	if err := c.catalog.CheckHowTo(slug); err != nil {
		return nil, err
	}

	return c.get(ctx, "/v1/how-to/"+url.PathEscape(slug), nil)
}

// BestPractices fetches the best practices guide.
func (c *Client) BestPractices(ctx context.Context) (*models.Documentation, error) {
	return c.get(ctx, "/v1/best-practices", nil)
}

func (c *Client) get(
	ctx context.Context,
	path string,
	query url.Values,
) (*models.Documentation, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	if item := c.cache.Get(target); item != nil {
		return item.Value(), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "documentation rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build documentation request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pnerrs.NewRequestError("documentation request failed", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, pnerrs.NewRequestError("read documentation response", req.URL.Host, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pnerrs.NewResponseError(serviceName, resp, body)
	}

	var doc models.Documentation
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, pnerrs.NewDecodeError(serviceName, resp.StatusCode, err)
	}

	c.cache.Set(target, &doc, ttlcache.DefaultTTL)

	return &doc, nil
}
