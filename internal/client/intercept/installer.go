package intercept

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
)

// Install fetches every manifest path and stores it in the static cache.
// It fails on the first asset that cannot be fetched and may be called
// again later.
func (i *Interceptor) Install(ctx context.Context) error {
	p := i.pipeline
	for _, path := range i.manifest.Paths() {
		if err := i.prefetch(ctx, p.names.Static, path); err != nil {
			return fmt.Errorf("install %s: %w", path, err)
		}
	}
	i.installed.Store(true)
	p.log.Info(ctx, "shell installed", "cache", p.names.Static, "assets", len(i.manifest.Paths()))
	return nil
}

// Activate drops every cache of an older version and turns interception on.
func (i *Interceptor) Activate(ctx context.Context) error {
	p := i.pipeline
	names, err := p.caches.CacheNames(ctx)
	if err != nil {
		return fmt.Errorf("activate: %w", err)
	}

	for _, name := range names {
		if !strings.HasPrefix(name, p.names.Prefix+"-") || p.names.Current(name) {
			continue
		}
		n, err := p.caches.DeleteCache(ctx, name)
		if err != nil {
			return fmt.Errorf("activate: %w", err)
		}
		p.log.Info(ctx, "dropped stale cache", "cache", name, "entries", n)
	}

	i.active.Store(true)
	return nil
}

// InstallIfMissing retries Install when no earlier attempt succeeded.
func (i *Interceptor) InstallIfMissing(ctx context.Context) error {
	if i.installed.Load() {
		return nil
	}
	return i.Install(ctx)
}

// PrefetchItemAssets stores resources referenced by a retained item (for
// example its images) in the items cache. Failures are logged and skipped.
func (i *Interceptor) PrefetchItemAssets(ctx context.Context, urls []string) int {
	stored := 0
	for _, u := range urls {
		if err := i.prefetch(ctx, i.pipeline.names.Items, u); err != nil {
			i.pipeline.log.Debug(ctx, "item asset not cached", "url", u, "error", err)
			continue
		}
		stored++
	}
	return stored
}

func (i *Interceptor) prefetch(ctx context.Context, cacheName, ref string) error {
	p := i.pipeline
	u := i.resolve(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := p.Network(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return p.caches.Put(ctx, cacheName, &models.CachedResponse{
		Key:      RequestKey(req),
		URL:      u.String(),
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: p.now(),
	})
}
