package intercept

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
	"github.com/dmitrijs2005/readkeeper/internal/metrics"
)

// LocalStore is the read side of the local store consulted on fallback.
type LocalStore interface {
	Get(ctx context.Context, ownerID, itemID string) (*models.Item, error)
	ListOwners(ctx context.Context) ([]models.OwnerSummary, error)
}

// CacheStorage holds named response caches.
type CacheStorage interface {
	Put(ctx context.Context, cacheName string, resp *models.CachedResponse) error
	Get(ctx context.Context, cacheName, key string) (*models.CachedResponse, error)
	CacheNames(ctx context.Context) ([]string, error)
	DeleteCache(ctx context.Context, cacheName string) (int64, error)
}

// Pipeline holds the stages shared by every intercepted request.
type Pipeline struct {
	next        http.RoundTripper
	store       LocalStore
	caches      CacheStorage
	names       CacheNames
	offlinePage string
	log         logging.Logger
	now         func() time.Time
	// timeout bounds the network leg; zero leaves it to the caller.
	timeout time.Duration
}

// fallbackTimeout bounds local lookups made after the network leg failed.
const fallbackTimeout = 5 * time.Second

// cancelBody releases the network deadline once the body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// detached returns a context for local work that survives the caller's
// cancellation, so a timed out request can still be answered locally.
func detached(req *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(req.Context()), fallbackTimeout)
}

// Network forwards req to the next transport under the pipeline's network
// timeout. Any transport error, a timeout included, is reported as
// common.ErrNetworkUnavailable; HTTP error statuses are not failures.
func (p *Pipeline) Network(req *http.Request) (*http.Response, error) {
	cancel := context.CancelFunc(func() {})
	if p.timeout > 0 {
		var ctx context.Context
		ctx, cancel = context.WithTimeout(req.Context(), p.timeout)
		req = req.WithContext(ctx)
	}

	resp, err := p.next.RoundTrip(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", common.ErrNetworkUnavailable, err)
	}
	resp.Body = cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// Fallback answers a dynamic request whose network leg failed. It never
// returns an error: a miss or a store failure becomes the offline response.
func (p *Pipeline) Fallback(req *http.Request, t Target) (*http.Response, string) {
	ctx, cancel := detached(req)
	defer cancel()

	switch t.Route {
	case RouteDynamicItem:
		item, err := p.store.Get(ctx, t.OwnerID, t.ItemID)
		if err == nil {
			if resp, err := SynthesizeItem(req, item); err == nil {
				return resp, metrics.OutcomeLocal
			}
		} else if !errors.Is(err, common.ErrNotFound) {
			p.log.Warn(ctx, "local item lookup failed", "owner", t.OwnerID, "item", t.ItemID, "error", err)
		}

	case RouteDynamicDirectory:
		owners, err := p.store.ListOwners(ctx)
		if err != nil {
			p.log.Warn(ctx, "local owner lookup failed", "error", err)
		}
		if len(owners) > 0 {
			if resp, err := SynthesizeOwners(req, owners); err == nil {
				return resp, metrics.OutcomeLocal
			}
		}
	}

	return SynthesizeOffline(req), metrics.OutcomeOffline
}

// serveDynamic is the network-first policy.
func (p *Pipeline) serveDynamic(req *http.Request, t Target) (*http.Response, error) {
	resp, err := p.Network(req)
	if err == nil {
		p.observe(t, metrics.OutcomeNetwork)
		return resp, nil
	}

	p.log.Debug(req.Context(), "network failed, falling back", "route", t.Route.String(), "url", req.URL.String(), "error", err)
	resp, outcome := p.Fallback(req, t)
	p.observe(t, outcome)
	return resp, nil
}

// serveStatic is the cache-first policy with network backfill.
func (p *Pipeline) serveStatic(req *http.Request, t Target) (*http.Response, error) {
	ctx := req.Context()
	key := RequestKey(req)

	if cached := p.lookup(ctx, key, p.names.Static, p.names.Items, p.names.Dynamic); cached != nil {
		p.observe(t, metrics.OutcomeCache)
		return SynthesizeCached(req, cached, SourceCache), nil
	}

	resp, err := p.Network(req)
	if err != nil {
		if IsNavigation(req) {
			lctx, cancel := detached(req)
			defer cancel()
			if ph := p.placeholder(lctx); ph != nil {
				p.observe(t, metrics.OutcomePlaceholder)
				return SynthesizeCached(req, ph, SourcePlaceholder), nil
			}
		}
		p.observe(t, metrics.OutcomeError)
		return nil, err
	}

	p.observe(t, metrics.OutcomeNetwork)
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	return p.backfill(req, key, resp)
}

// backfill buffers a successful response, stores a copy in the dynamic
// cache and returns an equivalent response to the caller.
func (p *Pipeline) backfill(req *http.Request, key string, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", common.ErrNetworkUnavailable, err)
	}

	entry := &models.CachedResponse{
		Key:      key,
		URL:      req.URL.String(),
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: p.now(),
	}
	if err := p.caches.Put(req.Context(), p.names.Dynamic, entry); err != nil {
		p.log.Warn(req.Context(), "cache backfill failed", "url", entry.URL, "error", err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

func (p *Pipeline) lookup(ctx context.Context, key string, names ...string) *models.CachedResponse {
	for _, name := range names {
		c, err := p.caches.Get(ctx, name, key)
		if err == nil {
			return c
		}
		if !errors.Is(err, common.ErrNotFound) {
			p.log.Warn(ctx, "cache lookup failed", "cache", name, "error", err)
		}
	}
	return nil
}

func (p *Pipeline) placeholder(ctx context.Context) *models.CachedResponse {
	if p.offlinePage == "" {
		return nil
	}
	return p.lookup(ctx, p.offlinePage, p.names.Static)
}

func (p *Pipeline) observe(t Target, outcome string) {
	metrics.InterceptedRequests.WithLabelValues(t.Route.String(), outcome).Inc()
}
