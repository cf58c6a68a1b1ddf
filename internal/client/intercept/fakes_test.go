package intercept

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

var errDown = errors.New("dial tcp: connection refused")

// fakeNetwork serves fixed bodies by path and can be switched off.
type fakeNetwork struct {
	mu     sync.Mutex
	pages  map[string]string
	status map[string]int
	down   atomic.Bool
	calls  atomic.Int32
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{pages: map[string]string{}, status: map[string]int{}}
}

func (n *fakeNetwork) set(path, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pages[path] = body
}

func (n *fakeNetwork) RoundTrip(r *http.Request) (*http.Response, error) {
	n.calls.Add(1)
	if n.down.Load() {
		return nil, errDown
	}
	n.mu.Lock()
	body, ok := n.pages[r.URL.Path]
	status := n.status[r.URL.Path]
	n.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
		if !ok {
			status = http.StatusNotFound
		}
	}
	h := http.Header{}
	h.Set("Content-Type", "text/html")
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    r,
	}, nil
}

type fakeStore struct {
	items  map[string]*models.Item
	owners []models.OwnerSummary
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[string]*models.Item{}}
}

func (s *fakeStore) put(it models.Item) {
	s.items[it.OwnerID+"/"+it.ID] = &it
}

// Get and ListOwners fail on a done context like a real transaction would.
func (s *fakeStore) Get(ctx context.Context, owner, id string) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	it, ok := s.items[owner+"/"+id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return it, nil
}

func (s *fakeStore) ListOwners(ctx context.Context) ([]models.OwnerSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.owners, nil
}

type memCaches struct {
	mu   sync.Mutex
	data map[string]map[string]*models.CachedResponse
}

func newMemCaches() *memCaches {
	return &memCaches{data: map[string]map[string]*models.CachedResponse{}}
}

func (c *memCaches) Put(_ context.Context, name string, r *models.CachedResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data[name] == nil {
		c.data[name] = map[string]*models.CachedResponse{}
	}
	cp := *r
	c.data[name][r.Key] = &cp
	return nil
}

func (c *memCaches) Get(_ context.Context, name, key string) (*models.CachedResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data[name][key]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (c *memCaches) CacheNames(context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.data))
	for n := range c.data {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (c *memCaches) DeleteCache(_ context.Context, name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int64(len(c.data[name]))
	delete(c.data, name)
	return n, nil
}

func (c *memCaches) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data[name])
}

// hangingNetwork never answers; it returns once the request context is done.
var hangingNetwork = roundTripFunc(func(r *http.Request) (*http.Response, error) {
	<-r.Context().Done()
	return nil, r.Context().Err()
})

const base = "http://svc.test"

type fixture struct {
	net    *fakeNetwork
	store  *fakeStore
	caches *memCaches
	names  CacheNames
	ic     *Interceptor
	client *http.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	u, err := url.Parse(base)
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		net:    newFakeNetwork(),
		store:  newFakeStore(),
		caches: newMemCaches(),
		names:  NewCacheNames("rk", "v2"),
	}
	f.ic = New(f.store, f.caches, Options{
		BaseURL:   u,
		APIPrefix: "/api",
		Names:     f.names,
		Manifest:  &Manifest{Assets: []string{"/", "/app.js"}, OfflinePage: "/offline.html"},
		Next:      f.net,
		Now:       func() time.Time { return time.Unix(1000, 0) },
	})
	f.client = &http.Client{Transport: f.ic}
	return f
}

func (f *fixture) get(t *testing.T, path string, header ...string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, base+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return f.client.Do(req)
}

func readBody(t *testing.T, r *http.Response) string {
	t.Helper()
	defer r.Body.Close()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
