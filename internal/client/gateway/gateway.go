// Package gateway is the local HTTP boundary of the reader client. Every
// request outside /local and /metrics is proxied to the backing service
// through the offline interceptor, so a rendering layer pointed at the
// gateway gets the offline policies without calling anything explicitly.
package gateway

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/client"
	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/client/reading"
	"github.com/dmitrijs2005/readkeeper/internal/client/state"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
	"github.com/dmitrijs2005/readkeeper/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the local store as the gateway uses it.
type Store interface {
	Get(ctx context.Context, ownerID, itemID string) (*models.Item, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Item, error)
	ListAll(ctx context.Context) ([]models.Item, error)
	ListOwners(ctx context.Context) ([]models.OwnerSummary, error)
	Stats(ctx context.Context) models.OwnerStats
	Clear(ctx context.Context) error
}

// Syncer is the sync orchestrator as the gateway uses it.
type Syncer interface {
	TriggerQuickSync(ctx context.Context) (models.TriggerResult, error)
	TriggerFullSync(ctx context.Context) (models.TriggerResult, error)
	TriggersEnabled() bool
	StartBackground(ctx context.Context, intervalHours float64) (*models.BackgroundStatus, error)
	StopBackground(ctx context.Context) (*models.BackgroundStatus, error)
	Status(ctx context.Context) (*models.SyncStatus, error)
	SetRead(ctx context.Context, owner, itemID string, isRead bool) error
	Retain(ctx context.Context, owner, itemID string) (*models.Item, error)
	Forget(ctx context.Context, owner, itemID string) error
}

type Deps struct {
	Store        Store
	Sync         Syncer
	Positions    reading.PositionStore
	Progress     *state.Progress
	Connectivity *state.Connectivity
	Tokens       client.TokenSource

	// Target is the backing service origin; Transport carries proxied
	// requests, normally the offline interceptor.
	Target    *url.URL
	Transport http.RoundTripper
	Logger    logging.Logger
}

type Server struct {
	httpServer *http.Server
	log        logging.Logger
}

func New(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(d),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: d.Logger,
	}
}

// NewRouter builds the gateway routes.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	h := &handlers{d: d, log: d.Logger.With("component", "gateway")}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(metrics.Middleware)
	r.Use(h.loggingMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/local", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/stats", h.stats)
		r.Get("/owners", h.listOwners)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.listItems)
			r.Delete("/", h.clearItems)
			r.Get("/{owner}", h.listOwnerItems)
			r.Get("/{owner}/{item}", h.getItem)
			r.Put("/{owner}/{item}", h.retainItem)
			r.Delete("/{owner}/{item}", h.forgetItem)
			r.Put("/{owner}/{item}/read", h.setRead)
		})

		r.Route("/positions/{item}", func(r chi.Router) {
			r.Get("/", h.getPosition)
			r.Put("/", h.savePosition)
			r.Delete("/", h.deletePosition)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/progress", h.progress)
			r.Post("/quick", h.trigger(true))
			r.Post("/full", h.trigger(false))
			r.Post("/start-background", h.startBackground)
			r.Post("/stop-background", h.stopBackground)
		})
	})

	if d.Target != nil {
		r.Handle("/*", newProxy(d, h.log))
	}

	return r
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "gateway listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// proxy forwards to the backing service through d.Transport. The held token
// is attached when the caller did not send one, and a 401 to an attached
// token revokes it.
func newProxy(d Deps, log logging.Logger) *httputil.ReverseProxy {
	target := d.Target
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
			pr.SetXForwarded()
			if d.Tokens == nil || pr.In.Header.Get(common.AuthorizationHeaderName) != "" {
				return
			}
			if tok, ok := d.Tokens.Token(pr.In.Context()); ok {
				pr.Out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
				pr.Out.Header.Set(injectedHeader, "1")
			}
		},
		Transport: injectedStripper{next: d.Transport},
		ModifyResponse: func(resp *http.Response) error {
			if resp.StatusCode == http.StatusUnauthorized && resp.Request != nil &&
				resp.Request.Header.Get(injectedHeader) != "" && d.Tokens != nil {
				log.Info(resp.Request.Context(), "proxied token rejected, revoking")
				d.Tokens.Revoke(resp.Request.Context())
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn(r.Context(), "proxy failed", "path", r.URL.Path, "error", err)
			respondError(w, http.StatusBadGateway, "backing service unreachable")
		},
	}
}

// injectedHeader marks requests whose bearer token the gateway attached. It
// never leaves the process.
const injectedHeader = "X-Readkeeper-Injected-Auth"

type injectedStripper struct {
	next http.RoundTripper
}

func (t injectedStripper) RoundTrip(r *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	if r.Header.Get(injectedHeader) == "" {
		return next.RoundTrip(r)
	}

	out := r.Clone(r.Context())
	out.Header.Del(injectedHeader)
	resp, err := next.RoundTrip(out)
	if resp != nil {
		resp.Request = r
	}
	return resp, err
}
