package admin_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/admin"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/models"
)

// pagedApps serves total apps, pageSize per page, repeating the last app of
// each page at the start of the next one.
func pagedApps(t *testing.T, total, pageSize int, pages *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "api-key", r.Header.Get("Authorization"))
		assert.Equal(t, admin.APIVersion, r.Header.Get("PubNub-Version"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		pages.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		start := (page - 1) * pageSize
		if page > 1 {
			start--
		}

		data := []any{}
		for i := start; i < start+pageSize && i < total; i++ {
			data = append(data, map[string]any{"id": fmt.Sprintf("app_%d", i), "name": fmt.Sprintf("app %d", i)})
		}

		writeJSON(w, http.StatusOK, map[string]any{"data": data, "total": total})
	})
}

func TestV2ListAppsFollowsPages(t *testing.T) {
	var pages atomic.Int32
	srv := httptest.NewServer(pagedApps(t, 5, 2, &pages))
	t.Cleanup(srv.Close)

	facade := admin.NewFacade(admin.NewV2(srv.URL, srv.Client(), "api-key"))
	ctx := context.Background()

	first, err := facade.ListApps(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(first))
	for _, a := range first {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"app_0", "app_1", "app_2", "app_3", "app_4"}, ids)

	second, err := facade.ListApps(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestV2ListStopsOnEmptyPage(t *testing.T) {
	var pages atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		data := []any{}
		if r.URL.Query().Get("page") == "1" {
			data = append(data, map[string]any{"id": "a", "name": "a"})
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": data, "total": 10})
	}))
	t.Cleanup(srv.Close)

	facade := admin.NewFacade(admin.NewV2(srv.URL, srv.Client(), "k"))

	apps, err := facade.ListApps(context.Background())
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.EqualValues(t, 2, pages.Load())
}

func TestV2CreateKeysetForwardsNestedConfig(t *testing.T) {
	var (
		appCreates atomic.Int32
		gotBody    map[string]any
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/apps", func(w http.ResponseWriter, r *http.Request) {
		appCreates.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"id": "app_9", "name": "x"})
	})
	mux.HandleFunc("POST /v2/keysets", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "ks_1", "appId": gotBody["appId"], "name": gotBody["name"],
			"publishKey": "pub-c-2", "subscribeKey": "sub-c-2",
			"type": gotBody["type"], "config": gotBody["config"],
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	facade := admin.NewFacade(admin.NewV2(srv.URL, srv.Client(), "k"))

	ks, err := facade.CreateKeyset(context.Background(), models.NewKeyset{
		Name:  "Staging",
		AppID: "app_1",
		Type:  models.KeysetTesting,
		Config: models.KeysetConfig{
			Files: &models.Files{Enabled: true, Region: "us-east-1", Retention: ptr(7)},
		},
	})
	require.NoError(t, err)

	assert.Zero(t, appCreates.Load())
	assert.Equal(t, "app_1", gotBody["appId"])
	assert.Equal(t, models.KeysetTesting, ks.Type)
	require.NotNil(t, ks.Config)
	require.NotNil(t, ks.Config.Files)
	assert.Equal(t, "us-east-1", ks.Config.Files.Region)
	assert.Nil(t, ks.Config.MessagePersistence)

	cfg, ok := gotBody["config"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, cfg, "messagePersistence")
}

func TestV2UsageQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v2/usage/metrics", r.URL.Path)
		assert.Equal(t, "keyset", q.Get("entityType"))
		assert.Equal(t, []string{"mau", "transactions"}, q["metrics"])
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	}))
	t.Cleanup(srv.Close)

	facade := admin.NewFacade(admin.NewV2(srv.URL, srv.Client(), "k"))

	raw, err := facade.GetUsageMetrics(context.Background(), models.UsageQuery{
		EntityType: "keyset",
		EntityID:   "ks_1",
		Metrics:    []string{"mau", "transactions"},
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-02",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(raw))
}

func TestV2TransportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unreachable host", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		_, err := admin.NewV2(base, srv.Client(), "api-key").ListApps(ctx)
		require.Error(t, err)
		assert.True(t, pnerrs.IsNetworkError(err))
	})

	t.Run("rate limited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "12")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "slow down"})
		}))
		t.Cleanup(srv.Close)

		_, err := admin.NewV2(srv.URL, srv.Client(), "api-key").ListApps(ctx)
		require.Error(t, err)

		var up *pnerrs.UpstreamError
		require.ErrorAs(t, err, &up)
		d, ok := up.RetryAfter()
		require.True(t, ok)
		assert.Equal(t, 12*time.Second, d)
	})

	t.Run("malformed success body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": "not a list"}`))
		}))
		t.Cleanup(srv.Close)

		_, err := admin.NewV2(srv.URL, srv.Client(), "api-key").ListApps(ctx)
		require.Error(t, err)

		pnErr, ok := pnerrs.AsPNError(err)
		require.True(t, ok)
		assert.Equal(t, pnerrs.ErrCodeUpstreamDecode, pnErr.Code())
	})
}
