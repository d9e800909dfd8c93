package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/models"
)

// DefaultV2BaseURL is the production admin API.
const DefaultV2BaseURL = "https://admin-api.pubnub.com"

const (
	// APIVersion is sent as the PubNub-Version header.
	APIVersion = "2025-01-01"
	// PageSize is the number of items requested per page.
	PageSize = 100
	// maxPages stops a server that keeps reporting a larger total.
	maxPages = 1000
)

// V2 talks to the API-key based admin API.
type V2 struct {
	rest   *restClient
	apiKey string
}

// NewV2 creates a v2 backend.
func NewV2(baseURL string, httpClient *http.Client, apiKey string) *V2 {
	if baseURL == "" {
		baseURL = DefaultV2BaseURL
	}

	return &V2{
		rest:   &restClient{service: "admin API v2", baseURL: baseURL, http: httpClient},
		apiKey: apiKey,
	}
}

// Mode returns credentials.AdminV2.
func (*V2) Mode() credentials.AdminMode {
	return credentials.AdminV2
}

type v2Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

type v2App struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type v2Keyset struct {
	ID           flexID               `json:"id"`
	AppID        flexID               `json:"appId"`
	Name         string               `json:"name"`
	PublishKey   string               `json:"publishKey"`
	SubscribeKey string               `json:"subscribeKey"`
	Type         models.KeysetType    `json:"type"`
	Config       *models.KeysetConfig `json:"config,omitempty"`
}

func (v *V2) do(ctx context.Context, req request, out any) error {
	req.headers = http.Header{
		"Authorization":  {v.apiKey},
		"PubNub-Version": {APIVersion},
	}

	return v.rest.do(ctx, req, out)
}

// paginate fetches pages until the cumulative count reaches the reported
// total or a page comes back empty. Items are de-duplicated by id.
func paginate[T any](
	ctx context.Context,
	fetch func(ctx context.Context, page int) (v2Page[T], error),
	id func(T) string,
) ([]T, error) {
	var (
		items []T
		seen  = map[string]struct{}{}
		count int
	)

	for page := 1; page <= maxPages; page++ {
		p, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(p.Data) == 0 {
			break
		}

		count += len(p.Data)
		for _, item := range p.Data {
			key := id(item)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			items = append(items, item)
		}

		if count >= p.Total {
			break
		}
	}

	return items, nil
}

func pageQuery(page int) url.Values {
	return url.Values{
		"limit": {strconv.Itoa(PageSize)},
		"page":  {strconv.Itoa(page)},
	}
}

// ListApps lists every app, following pagination.
func (v *V2) ListApps(ctx context.Context) ([]models.App, error) {
	raw, err := paginate(ctx, func(ctx context.Context, page int) (v2Page[v2App], error) {
		var p v2Page[v2App]
		err := v.do(ctx, request{method: http.MethodGet, path: "/v2/apps", query: pageQuery(page)}, &p)

		return p, err
	}, func(a v2App) string { return string(a.ID) })
	if err != nil {
		return nil, err
	}

	apps := make([]models.App, 0, len(raw))
	for _, a := range raw {
		apps = append(apps, models.App{ID: string(a.ID), Name: a.Name})
	}

	return apps, nil
}

// CreateApp creates an app.
func (v *V2) CreateApp(ctx context.Context, name string) (*models.App, error) {
	var a v2App
	if err := v.do(ctx, request{
		method: http.MethodPost,
		path:   "/v2/apps",
		body:   map[string]string{"name": name},
	}, &a); err != nil {
		return nil, err
	}

	return &models.App{ID: string(a.ID), Name: a.Name}, nil
}

// UpdateApp renames an app.
func (v *V2) UpdateApp(ctx context.Context, id, name string) (*models.App, error) {
	var a v2App
	if err := v.do(ctx, request{
		method: http.MethodPatch,
		path:   "/v2/apps/" + url.PathEscape(id),
		body:   map[string]string{"name": name},
	}, &a); err != nil {
		return nil, err
	}

	return &models.App{ID: string(a.ID), Name: a.Name}, nil
}

// GetKeyset fetches one keyset.
func (v *V2) GetKeyset(ctx context.Context, id string) (*models.Keyset, error) {
	var k v2Keyset
	if err := v.do(ctx, request{
		method: http.MethodGet,
		path:   "/v2/keysets/" + url.PathEscape(id),
	}, &k); err != nil {
		return nil, err
	}

	ks := normalizeV2Keyset(k)

	return &ks, nil
}

// ListKeysets lists the keysets of appID, or every keyset when appID is
// empty, following pagination.
func (v *V2) ListKeysets(ctx context.Context, appID string) ([]models.Keyset, error) {
	raw, err := paginate(ctx, func(ctx context.Context, page int) (v2Page[v2Keyset], error) {
		query := pageQuery(page)
		if appID != "" {
			query.Set("appId", appID)
		}

		var p v2Page[v2Keyset]
		err := v.do(ctx, request{method: http.MethodGet, path: "/v2/keysets", query: query}, &p)

		return p, err
	}, func(k v2Keyset) string { return string(k.ID) })
	if err != nil {
		return nil, err
	}

	keysets := make([]models.Keyset, 0, len(raw))
	for _, k := range raw {
		keysets = append(keysets, normalizeV2Keyset(k))
	}

	return keysets, nil
}

// CreateKeyset creates a keyset under appID.
func (v *V2) CreateKeyset(ctx context.Context, appID string, in models.NewKeyset) (*models.Keyset, error) {
	var k v2Keyset
	if err := v.do(ctx, request{
		method: http.MethodPost,
		path:   "/v2/keysets",
		body: map[string]any{
			"appId":  appID,
			"name":   in.Name,
			"type":   in.Type,
			"config": in.Config,
		},
	}, &k); err != nil {
		return nil, err
	}

	ks := normalizeV2Keyset(k)

	return &ks, nil
}

// UpdateKeysetConfig applies cfg to keyset id.
func (v *V2) UpdateKeysetConfig(ctx context.Context, id string, cfg models.KeysetConfig) (*models.Keyset, error) {
	var k v2Keyset
	if err := v.do(ctx, request{
		method: http.MethodPatch,
		path:   "/v2/keysets/" + url.PathEscape(id),
		body:   map[string]any{"config": cfg},
	}, &k); err != nil {
		return nil, err
	}

	ks := normalizeV2Keyset(k)

	return &ks, nil
}

// UsageMetrics returns the usage report unchanged.
func (v *V2) UsageMetrics(ctx context.Context, q models.UsageQuery) (json.RawMessage, error) {
	query := url.Values{
		"entityType": {q.EntityType},
		"entityId":   {q.EntityID},
		"startDate":  {q.StartDate},
		"endDate":    {q.EndDate},
	}
	for _, m := range q.Metrics {
		query.Add("metrics", m)
	}

	var raw json.RawMessage
	if err := v.do(ctx, request{
		method: http.MethodGet,
		path:   "/v2/usage/metrics",
		query:  query,
	}, &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

func normalizeV2Keyset(k v2Keyset) models.Keyset {
	cfg := k.Config
	if cfg.Empty() {
		cfg = nil
	}

	return models.Keyset{
		ID:           string(k.ID),
		AppID:        string(k.AppID),
		Name:         k.Name,
		PublishKey:   k.PublishKey,
		SubscribeKey: k.SubscribeKey,
		Type:         k.Type,
		Config:       cfg,
	}
}
