package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
)

// maxErrorBody caps how much of an error response is kept in a StatusError.
const maxErrorBody = 512

type Options struct {
	BaseURL   string
	APIPrefix string
	// Transport carries every request, normally the offline interceptor.
	Transport http.RoundTripper
	Timeout   time.Duration
	Tokens    TokenSource
	Logger    logging.Logger
}

// HTTPClient implements Client over the service's JSON API.
type HTTPClient struct {
	api    *url.URL
	http   *http.Client
	tokens TokenSource
	log    logging.Logger

	mu     sync.Mutex
	health *models.Health
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.Trim(opts.APIPrefix, "/")
	base.Path = strings.TrimSuffix(base.Path, "/")

	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &HTTPClient{
		api:    base,
		http:   &http.Client{Transport: opts.Transport, Timeout: opts.Timeout},
		tokens: opts.Tokens,
		log:    opts.Logger.With("component", "client"),
	}, nil
}

// endpoint joins the escaped path segments onto the API root.
func (c *HTTPClient) endpoint(q url.Values, segs ...string) string {
	var sb strings.Builder
	sb.WriteString(c.api.String())
	for _, s := range segs {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	if len(q) > 0 {
		sb.WriteByte('?')
		sb.WriteString(q.Encode())
	}
	return sb.String()
}

type call struct {
	method string
	url    string
	auth   bool
	// token overrides the held token.
	token string
}

func (c *HTTPClient) do(ctx context.Context, k call, out any) error {
	req, err := http.NewRequestWithContext(ctx, k.method, k.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	sent := false
	switch {
	case k.token != "":
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+k.token)
		sent = true
	case k.auth && c.tokens != nil:
		if tok, ok := c.tokens.Token(ctx); ok && c.authEnabled(ctx) {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
			sent = true
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, common.ErrNetworkUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", common.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(ctx, resp, sent, k.token != ""); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", k.method, req.URL.Path, err)
	}
	return nil
}

func (c *HTTPClient) checkStatus(ctx context.Context, resp *http.Response, sent, explicit bool) error {
	if resp.StatusCode < 400 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		switch {
		case explicit:
			return common.ErrInvalidToken
		case sent:
			c.log.Info(ctx, "token rejected, revoking")
			c.tokens.Revoke(ctx)
			return common.ErrAuthExpired
		default:
			return common.ErrAuthRequired
		}
	case http.StatusNotFound:
		return common.ErrNotFound
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode == http.StatusServiceUnavailable {
		var oe models.OfflineError
		if json.Unmarshal(body, &oe) == nil && oe.Error == "offline" {
			return fmt.Errorf("%w: %s", common.ErrNotFoundOffline, oe.Message)
		}
	}
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// authEnabled consults the cached health record, fetching it once. When the
// service cannot be asked, the header is sent.
func (c *HTTPClient) authEnabled(ctx context.Context) bool {
	c.mu.Lock()
	h := c.health
	c.mu.Unlock()

	if h == nil {
		var err error
		if h, err = c.Health(ctx); err != nil {
			return true
		}
	}
	return h.AuthEnabled
}

// Health fetches GET /health and refreshes the cached auth mode.
func (c *HTTPClient) Health(ctx context.Context) (*models.Health, error) {
	var h models.Health
	if err := c.do(ctx, call{method: http.MethodGet, url: c.endpoint(nil, "health")}, &h); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.health = &h
	c.mu.Unlock()
	return &h, nil
}

// Ping reports whether the service answers its health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

// CheckAuth validates token against the service without storing it. A
// rejected token is common.ErrInvalidToken.
func (c *HTTPClient) CheckAuth(ctx context.Context, token string) error {
	return c.do(ctx, call{method: http.MethodGet, url: c.endpoint(nil, "auth", "check"), token: token}, nil)
}

func (c *HTTPClient) Directory(ctx context.Context) ([]models.OwnerSummary, error) {
	var out []models.OwnerSummary
	err := c.do(ctx, call{method: http.MethodGet, url: c.endpoint(nil, "directory"), auth: true}, &out)
	return out, err
}

func (c *HTTPClient) Items(ctx context.Context, owner string, opts models.ListOptions) ([]models.ItemSummary, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	var out []models.ItemSummary
	err := c.do(ctx, call{method: http.MethodGet, url: c.endpoint(q, "items", owner), auth: true}, &out)
	for i := range out {
		if out[i].OwnerID == "" {
			out[i].OwnerID = owner
		}
	}
	return out, err
}

func (c *HTTPClient) Item(ctx context.Context, owner, itemID string) (*models.Item, error) {
	var it models.Item
	if err := c.do(ctx, call{method: http.MethodGet, url: c.endpoint(nil, "items", owner, itemID), auth: true}, &it); err != nil {
		return nil, err
	}
	if it.OwnerID == "" {
		it.OwnerID = owner
	}
	if it.ID == "" {
		it.ID = itemID
	}
	return &it, nil
}

func (c *HTTPClient) SetRead(ctx context.Context, owner, itemID string, isRead bool) error {
	q := url.Values{"isRead": {strconv.FormatBool(isRead)}}
	return c.do(ctx, call{method: http.MethodPut, url: c.endpoint(q, "items", owner, itemID, "read"), auth: true}, nil)
}

func (c *HTTPClient) SyncStatus(ctx context.Context) (*models.SyncStatus, error) {
	var s models.SyncStatus
	if err := c.do(ctx, call{method: http.MethodGet, url: c.endpoint(nil, "sync", "status"), auth: true}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) SyncProgress(ctx context.Context) (*models.SyncProgress, error) {
	var p models.SyncProgress
	if err := c.do(ctx, call{method: http.MethodGet, url: c.endpoint(nil, "sync", "progress"), auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TriggerSync posts to /sync/{kind}; kind is "quick" or "full".
func (c *HTTPClient) TriggerSync(ctx context.Context, kind string) (*models.TriggerResult, error) {
	var r models.TriggerResult
	if err := c.do(ctx, call{method: http.MethodPost, url: c.endpoint(nil, "sync", kind), auth: true}, &r); err != nil {
		return nil, err
	}
	if r.Type == "" {
		r.Type = kind
	}
	return &r, nil
}

func (c *HTTPClient) StartBackground(ctx context.Context) (*models.BackgroundStatus, error) {
	return c.background(ctx, "start-background")
}

func (c *HTTPClient) StopBackground(ctx context.Context) (*models.BackgroundStatus, error) {
	return c.background(ctx, "stop-background")
}

func (c *HTTPClient) background(ctx context.Context, op string) (*models.BackgroundStatus, error) {
	var s models.BackgroundStatus
	if err := c.do(ctx, call{method: http.MethodPost, url: c.endpoint(nil, "sync", op), auth: true}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type intervalBody struct {
	IntervalHours float64 `json:"interval_hours"`
}

func (c *HTTPClient) Interval(ctx context.Context) (float64, error) {
	var b intervalBody
	if err := c.do(ctx, call{method: http.MethodGet, url: c.endpoint(nil, "settings", "interval"), auth: true}, &b); err != nil {
		return 0, err
	}
	return b.IntervalHours, nil
}

func (c *HTTPClient) SetInterval(ctx context.Context, hours float64) error {
	q := url.Values{"hours": {strconv.FormatFloat(hours, 'f', -1, 64)}}
	return c.do(ctx, call{method: http.MethodPut, url: c.endpoint(q, "settings", "interval"), auth: true}, nil)
}

func (c *HTTPClient) History(ctx context.Context, owner string, limit int) ([]models.SyncHistoryEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []models.SyncHistoryEntry
	err := c.do(ctx, call{method: http.MethodGet, url: c.endpoint(q, "sync", "history", owner), auth: true}, &out)
	return out, err
}
