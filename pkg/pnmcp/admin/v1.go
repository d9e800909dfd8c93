package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/models"
)

// DefaultV1BaseURL is the production legacy admin API.
const DefaultV1BaseURL = "https://admin.pubnub.com"

const sessionHeader = "X-Session-Token"

// v1 key types.
const (
	v1TypeTesting    = 0
	v1TypeProduction = 1
)

// V1 talks to the legacy session based admin API.
type V1 struct {
	rest     *restClient
	email    string
	password string
	sessions *SessionCache
}

// NewV1 creates a v1 backend that logs in with email and password on
// first use.
func NewV1(baseURL string, httpClient *http.Client, email, password string) *V1 {
	if baseURL == "" {
		baseURL = DefaultV1BaseURL
	}

	v := &V1{
		rest:     &restClient{service: "admin API v1", baseURL: baseURL, http: httpClient},
		email:    email,
		password: password,
	}
	v.sessions = NewSessionCache(v.login)

	return v
}

// Sessions exposes the session cache.
func (v *V1) Sessions() *SessionCache {
	return v.sessions
}

// Mode returns credentials.AdminV1.
func (*V1) Mode() credentials.AdminMode {
	return credentials.AdminV1
}

type v1Envelope[T any] struct {
	Result T   `json:"result"`
	Total  int `json:"total,omitempty"`
}

type v1App struct {
	ID      flexID `json:"id"`
	OwnerID flexID `json:"owner_id,omitempty"`
	Name    string `json:"name"`
}

type v1Key struct {
	ID           flexID         `json:"id"`
	AppID        flexID         `json:"app_id"`
	PublishKey   string         `json:"publish_key"`
	SubscribeKey string         `json:"subscribe_key"`
	Type         int            `json:"type"`
	Properties   map[string]any `json:"properties"`
}

func (v *V1) login(ctx context.Context) (Session, error) {
	var me v1Envelope[struct {
		Token  string `json:"token"`
		UserID flexID `json:"user_id"`
	}]
	err := v.rest.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/me",
		body:   map[string]string{"email": v.email, "password": v.password},
	}, &me)
	if err != nil {
		return Session{}, err
	}
	if me.Result.Token == "" {
		return Session{}, errors.New("admin API v1 login returned no session token")
	}

	var accounts v1Envelope[struct {
		Accounts []struct {
			ID flexID `json:"id"`
		} `json:"accounts"`
	}]
	err = v.rest.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/accounts",
		query:   url.Values{"user_id": {string(me.Result.UserID)}},
		headers: http.Header{sessionHeader: {me.Result.Token}},
	}, &accounts)
	if err != nil {
		return Session{}, err
	}
	if len(accounts.Result.Accounts) == 0 {
		return Session{}, errors.Errorf("admin API v1 user %s owns no account", me.Result.UserID)
	}

	return Session{
		Token:     me.Result.Token,
		UserID:    string(me.Result.UserID),
		AccountID: string(accounts.Result.Accounts[0].ID),
	}, nil
}

// call runs req with the session token, re-authenticating and retrying
// once when the upstream rejects the token.
func (v *V1) call(ctx context.Context, build func(Session) request, out any) error {
	s, err := v.sessions.EnsureAuthenticated(ctx)
	if err != nil {
		return err
	}

	err = v.rest.do(ctx, withSession(build(s), s), out)
	if !pnerrs.IsAuthFailure(err) {
		return err
	}

	v.sessions.Invalidate()
	if s, err = v.sessions.EnsureAuthenticated(ctx); err != nil {
		return err
	}

	return v.rest.do(ctx, withSession(build(s), s), out)
}

func withSession(req request, s Session) request {
	if req.headers == nil {
		req.headers = http.Header{}
	}
	req.headers.Set(sessionHeader, s.Token)

	return req
}

// ListApps lists the apps of the account.
func (v *V1) ListApps(ctx context.Context) ([]models.App, error) {
	var resp v1Envelope[[]v1App]
	err := v.call(ctx, func(s Session) request {
		return request{
			method: http.MethodGet,
			path:   "/api/apps",
			query:  url.Values{"owner_id": {s.AccountID}, "no_keys": {"1"}},
		}
	}, &resp)
	if err != nil {
		return nil, err
	}

	apps := make([]models.App, 0, len(resp.Result))
	for _, a := range resp.Result {
		apps = append(apps, normalizeV1App(a))
	}

	return apps, nil
}

// CreateApp creates an app owned by the account.
func (v *V1) CreateApp(ctx context.Context, name string) (*models.App, error) {
	var resp v1Envelope[v1App]
	err := v.call(ctx, func(s Session) request {
		return request{
			method: http.MethodPost,
			path:   "/api/apps",
			body:   map[string]string{"owner_id": s.AccountID, "name": name},
		}
	}, &resp)
	if err != nil {
		return nil, err
	}

	app := normalizeV1App(resp.Result)

	return &app, nil
}

// UpdateApp renames an app.
func (v *V1) UpdateApp(ctx context.Context, id, name string) (*models.App, error) {
	var resp v1Envelope[v1App]
	err := v.call(ctx, func(Session) request {
		return request{
			method: http.MethodPut,
			path:   "/api/apps/" + url.PathEscape(id),
			body:   map[string]string{"name": name},
		}
	}, &resp)
	if err != nil {
		return nil, err
	}

	app := normalizeV1App(resp.Result)

	return &app, nil
}

// GetKeyset fetches one keyset.
func (v *V1) GetKeyset(ctx context.Context, id string) (*models.Keyset, error) {
	var resp v1Envelope[v1Key]
	err := v.call(ctx, func(Session) request {
		return request{method: http.MethodGet, path: "/api/keys/" + url.PathEscape(id)}
	}, &resp)
	if err != nil {
		return nil, err
	}

	ks := normalizeV1Key(resp.Result)

	return &ks, nil
}

// ListKeysets lists the keysets of appID, or of every app when appID is
// empty.
func (v *V1) ListKeysets(ctx context.Context, appID string) ([]models.Keyset, error) {
	appIDs := []string{appID}
	if appID == "" {
		apps, err := v.ListApps(ctx)
		if err != nil {
			return nil, err
		}
		appIDs = appIDs[:0]
		for _, a := range apps {
			appIDs = append(appIDs, a.ID)
		}
	}

	var keysets []models.Keyset
	for _, id := range appIDs {
		var resp v1Envelope[[]v1Key]
		err := v.call(ctx, func(Session) request {
			return request{
				method: http.MethodGet,
				path:   "/api/keys",
				query:  url.Values{"app_id": {id}},
			}
		}, &resp)
		if err != nil {
			return nil, err
		}
		for _, k := range resp.Result {
			keysets = append(keysets, normalizeV1Key(k))
		}
	}

	return keysets, nil
}

// CreateKeyset creates a keyset under appID.
func (v *V1) CreateKeyset(ctx context.Context, appID string, in models.NewKeyset) (*models.Keyset, error) {
	props := toProperties(in.Config)
	props[propName] = in.Name

	keyType := v1TypeTesting
	if in.Type == models.KeysetProduction {
		keyType = v1TypeProduction
	}

	var resp v1Envelope[v1Key]
	err := v.call(ctx, func(Session) request {
		return request{
			method: http.MethodPost,
			path:   "/api/keys",
			body: map[string]any{
				"app_id":     appID,
				"type":       keyType,
				"properties": props,
			},
		}
	}, &resp)
	if err != nil {
		return nil, err
	}

	ks := normalizeV1Key(resp.Result)

	return &ks, nil
}

// UpdateKeysetConfig applies cfg to keyset id.
func (v *V1) UpdateKeysetConfig(ctx context.Context, id string, cfg models.KeysetConfig) (*models.Keyset, error) {
	var resp v1Envelope[v1Key]
	err := v.call(ctx, func(Session) request {
		return request{
			method: http.MethodPut,
			path:   "/api/keys/" + url.PathEscape(id),
			body:   map[string]any{"properties": toProperties(cfg)},
		}
	}, &resp)
	if err != nil {
		return nil, err
	}

	ks := normalizeV1Key(resp.Result)

	return &ks, nil
}

// UsageMetrics returns the legacy usage report unchanged.
func (v *V1) UsageMetrics(ctx context.Context, q models.UsageQuery) (json.RawMessage, error) {
	idParam := "app_id"
	if q.Scope == "keyset" {
		idParam = "key_id"
	}

	var raw json.RawMessage
	err := v.call(ctx, func(Session) request {
		return request{
			method: http.MethodGet,
			path:   "/api/v4/services/usage/legacy/usage",
			query: url.Values{
				idParam:       {q.ID},
				"start":       {q.StartDate},
				"end":         {q.EndDate},
				"file_format": {"json"},
			},
		}
	}, &raw)
	if err != nil {
		return nil, err
	}

	return raw, nil
}

func normalizeV1App(a v1App) models.App {
	return models.App{ID: string(a.ID), Name: a.Name}
}

func normalizeV1Key(k v1Key) models.Keyset {
	keyType := models.KeysetTesting
	if k.Type == v1TypeProduction {
		keyType = models.KeysetProduction
	}

	return models.Keyset{
		ID:           string(k.ID),
		AppID:        string(k.AppID),
		Name:         getString(k.Properties, propName),
		PublishKey:   k.PublishKey,
		SubscribeKey: k.SubscribeKey,
		Type:         keyType,
		Config:       fromProperties(k.Properties),
	}
}
