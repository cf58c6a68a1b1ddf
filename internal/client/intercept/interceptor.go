package intercept

import (
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/logging"
)

// Options configure an Interceptor.
type Options struct {
	// BaseURL is the origin of the backing service; manifest paths are
	// resolved against it.
	BaseURL *url.URL
	// APIPrefix marks the dynamic surface, e.g. "/api".
	APIPrefix string
	Names     CacheNames
	Manifest  *Manifest
	// Next is the real transport. Defaults to http.DefaultTransport.
	Next http.RoundTripper
	// NetworkTimeout bounds every network attempt of the dynamic and
	// static policies. A timed out attempt falls back like any other
	// network failure.
	NetworkTimeout time.Duration
	Logger         logging.Logger
	Now            func() time.Time
}

// Interceptor is an http.RoundTripper applying the offline policies.
type Interceptor struct {
	pipeline  *Pipeline
	apiPrefix string
	baseURL   *url.URL
	manifest  *Manifest
	active    atomic.Bool
	installed atomic.Bool
}

func New(store LocalStore, caches CacheStorage, opts Options) *Interceptor {
	if opts.Next == nil {
		opts.Next = http.DefaultTransport
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Manifest == nil {
		opts.Manifest = DefaultManifest()
	}
	if opts.BaseURL == nil {
		opts.BaseURL = &url.URL{Scheme: "http", Host: "localhost"}
	}

	i := &Interceptor{
		apiPrefix: strings.TrimSuffix(opts.APIPrefix, "/"),
		baseURL:   opts.BaseURL,
		manifest:  opts.Manifest,
	}
	i.pipeline = &Pipeline{
		next:    opts.Next,
		store:   store,
		caches:  caches,
		names:   opts.Names,
		log:     opts.Logger.With("component", "intercept"),
		now:     opts.Now,
		timeout: opts.NetworkTimeout,
	}
	if opts.Manifest.OfflinePage != "" {
		i.pipeline.offlinePage = CacheKey(http.MethodGet, i.resolve(opts.Manifest.OfflinePage))
	}
	return i
}

// Pipeline exposes the stages for callers that drive them directly.
func (i *Interceptor) Pipeline() *Pipeline {
	return i.pipeline
}

// Next returns the transport the interceptor forwards to, without any of
// the offline policies.
func (i *Interceptor) Next() http.RoundTripper {
	return i.pipeline.next
}

// Installed reports whether the shell assets were stored by a successful
// Install.
func (i *Interceptor) Installed() bool {
	return i.installed.Load()
}

// Active reports whether the interceptor applies its policies.
func (i *Interceptor) Active() bool {
	return i.active.Load()
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if !i.active.Load() {
		return i.pipeline.next.RoundTrip(req)
	}

	t := Match(req, i.apiPrefix)
	switch {
	case t.Route == RoutePassthrough:
		return i.pipeline.next.RoundTrip(req)
	case t.Route.Dynamic():
		return i.pipeline.serveDynamic(req, t)
	default:
		return i.pipeline.serveStatic(req, t)
	}
}

func (i *Interceptor) resolve(path string) *url.URL {
	ref, err := url.Parse(path)
	if err != nil {
		return i.baseURL
	}
	return i.baseURL.ResolveReference(ref)
}
