package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	revoked int
}

func (f *fakeTokens) Token(context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeTokens) Revoke(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.revoked++
}

type backend struct {
	authEnabled bool
	mux         *http.ServeMux

	mu       sync.Mutex
	lastAuth string
	lastURL  string
}

func newBackend(t *testing.T, authEnabled bool) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{authEnabled: authEnabled, mux: http.NewServeMux()}
	b.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Health{Status: "ok", AuthEnabled: b.authEnabled})
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			b.mu.Lock()
			b.lastAuth = r.Header.Get(common.AuthorizationHeaderName)
			b.lastURL = r.URL.RequestURI()
			b.mu.Unlock()
		}
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) seen() (auth, uri string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth, b.lastURL
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, baseURL string, tokens TokenSource) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(Options{BaseURL: baseURL, APIPrefix: "/api", Tokens: tokens})
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPClient(Options{BaseURL: "/relative"})
	require.Error(t, err)
}

func TestHTTPClient_DirectoryAndItems(t *testing.T) {
	b, srv := newBackend(t, false)
	b.mux.HandleFunc("GET /api/directory", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"slug":"lunadea","name":"Luna","item_count":5,"unread_count":2,"latest_item":"a5"}]`))
	})
	b.mux.HandleFunc("GET /api/items/{owner}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a1","title":"One","published_date":"2024-01-01","is_read":true}]`))
	})
	b.mux.HandleFunc("GET /api/items/{owner}/{item}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"a1","title":"One","body":"<p>x</p>","url":"u","next_item_id":"a2"}`))
	})

	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	dir, err := c.Directory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.OwnerSummary{{Slug: "lunadea", Name: "Luna", ItemCount: 5, UnreadCount: 2, LatestItem: "a5"}}, dir)

	list, err := c.Items(ctx, "lunadea", models.ListOptions{Limit: 10, Search: "moon"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "lunadea", list[0].OwnerID)
	assert.True(t, list[0].IsRead)
	_, uri := b.seen()
	assert.Equal(t, "/api/items/lunadea?limit=10&search=moon", uri)

	it, err := c.Item(ctx, "lunadea", "a1")
	require.NoError(t, err)
	assert.Equal(t, "lunadea", it.OwnerID)
	assert.Equal(t, "<p>x</p>", it.Body)
	assert.Equal(t, "a2", it.NextItemID)
}

func TestHTTPClient_BearerHeaderFollowsAuthMode(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		b, srv := newBackend(t, enabled)
		b.mux.HandleFunc("GET /api/sync/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.SyncStatus{Running: true, IntervalHours: 6})
		})

		c := newTestClient(t, srv.URL, &fakeTokens{token: "tok"})
		st, err := c.SyncStatus(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 6.0, st.IntervalHours)

		auth, _ := b.seen()
		if enabled {
			assert.Equal(t, "Bearer tok", auth)
		} else {
			assert.Empty(t, auth)
		}
	}
}

func TestHTTPClient_UnauthorizedRevokesToken(t *testing.T) {
	b, srv := newBackend(t, true)
	b.mux.HandleFunc("GET /api/directory", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	tokens := &fakeTokens{token: "stale"}
	c := newTestClient(t, srv.URL, tokens)

	_, err := c.Directory(context.Background())
	assert.ErrorIs(t, err, common.ErrAuthExpired)
	assert.Equal(t, 1, tokens.revoked)

	_, err = c.Directory(context.Background())
	assert.ErrorIs(t, err, common.ErrAuthRequired)
	assert.Equal(t, 1, tokens.revoked)
}

func TestHTTPClient_CheckAuth(t *testing.T) {
	b, srv := newBackend(t, true)
	b.mux.HandleFunc("GET /api/auth/check", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(common.AuthorizationHeaderName) != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
	})

	tokens := &fakeTokens{}
	c := newTestClient(t, srv.URL, tokens)
	require.NoError(t, c.CheckAuth(context.Background(), "good"))
	assert.ErrorIs(t, c.CheckAuth(context.Background(), "bad"), common.ErrInvalidToken)
	assert.Zero(t, tokens.revoked)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	b, srv := newBackend(t, false)
	b.mux.HandleFunc("GET /api/items/{owner}/{item}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	b.mux.HandleFunc("GET /api/sync/progress", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, models.OfflineError{Error: "offline", Message: "only downloaded items"})
	})
	b.mux.HandleFunc("POST /api/sync/{kind}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	_, err := c.Item(ctx, "o", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = c.SyncProgress(ctx)
	assert.ErrorIs(t, err, common.ErrNotFoundOffline)

	_, err = c.TriggerSync(ctx, "quick")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "boom", se.Body)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestHTTPClient_TransportFailureIsNetworkUnavailable(t *testing.T) {
	_, srv := newBackend(t, false)
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, nil)
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrNetworkUnavailable)
}

func TestHTTPClient_SyncEndpoints(t *testing.T) {
	b, srv := newBackend(t, false)
	b.mux.HandleFunc("POST /api/sync/quick", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.TriggerResult{Status: models.TriggerStarted})
	})
	b.mux.HandleFunc("POST /api/sync/start-background", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.BackgroundStatus{Status: "started", IntervalHours: 4})
	})
	b.mux.HandleFunc("POST /api/sync/stop-background", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.BackgroundStatus{Status: "stopped"})
	})
	b.mux.HandleFunc("GET /api/settings/interval", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]float64{"interval_hours": 4})
	})
	b.mux.HandleFunc("PUT /api/settings/interval", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"hours": r.URL.Query().Get("hours")})
	})
	b.mux.HandleFunc("PUT /api/items/{owner}/{item}/read", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	b.mux.HandleFunc("GET /api/sync/history/{owner}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.SyncHistoryEntry{{SyncTime: "t", ItemsAdded: 3, Status: "success"}})
	})

	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	res, err := c.TriggerSync(ctx, "quick")
	require.NoError(t, err)
	assert.Equal(t, models.TriggerStarted, res.Status)
	assert.Equal(t, "quick", res.Type)

	bg, err := c.StartBackground(ctx)
	require.NoError(t, err)
	assert.Equal(t, "started", bg.Status)
	bg, err = c.StopBackground(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stopped", bg.Status)

	h, err := c.Interval(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, h)

	require.NoError(t, c.SetInterval(ctx, 1.5))
	_, uri := b.seen()
	assert.Equal(t, "/api/settings/interval?hours=1.5", uri)

	require.NoError(t, c.SetRead(ctx, "luna dea", "a1", true))
	_, uri = b.seen()
	assert.Equal(t, "/api/items/luna%20dea/a1/read?isRead=true", uri)

	hist, err := c.History(ctx, "lunadea", 5)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 3, hist[0].ItemsAdded)
}
