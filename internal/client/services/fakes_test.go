package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/readkeeper/internal/client/client"
	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
)

// fakeClient implements client.Client; unset methods panic through the
// embedded nil interface.
type fakeClient struct {
	client.Client

	mu sync.Mutex

	health    *models.Health
	healthErr error

	checkErr     error
	checkedToken string

	// progress is consumed front to back; the last entry repeats.
	progress    []models.SyncProgress
	progressErr error

	trigger      models.TriggerResult
	triggerErr   error
	triggerGate  chan struct{}
	triggerCalls int

	directory    []models.OwnerSummary
	directoryErr error
	dirCalls     int

	items    map[string]*models.Item
	lists    map[string][]models.ItemSummary
	setRead  error
	readSent []bool

	interval    float64
	intervalSet []float64
	bgCalls     []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		health:  &models.Health{Status: "ok"},
		trigger: models.TriggerResult{Status: models.TriggerStarted},
		items:   map[string]*models.Item{},
		lists:   map[string][]models.ItemSummary{},
	}
}

func (f *fakeClient) Health(context.Context) (*models.Health, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	h := *f.health
	return &h, nil
}

func (f *fakeClient) Ping(ctx context.Context) error {
	_, err := f.Health(ctx)
	return err
}

func (f *fakeClient) CheckAuth(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkedToken = token
	return f.checkErr
}

func (f *fakeClient) SyncProgress(context.Context) (*models.SyncProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	if len(f.progress) == 0 {
		return &models.SyncProgress{}, nil
	}
	p := f.progress[0]
	if len(f.progress) > 1 {
		f.progress = f.progress[1:]
	}
	return &p, nil
}

func (f *fakeClient) setProgress(p ...models.SyncProgress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = p
}

func (f *fakeClient) TriggerSync(_ context.Context, kind string) (*models.TriggerResult, error) {
	f.mu.Lock()
	f.triggerCalls++
	gate := f.triggerGate
	res, err := f.trigger, f.triggerErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	res.Type = kind
	return &res, nil
}

func (f *fakeClient) calls() (triggers, dirs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.triggerCalls, f.dirCalls
}

func (f *fakeClient) Directory(context.Context) ([]models.OwnerSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirCalls++
	return append([]models.OwnerSummary(nil), f.directory...), f.directoryErr
}

func (f *fakeClient) Items(_ context.Context, owner string, _ models.ListOptions) ([]models.ItemSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ItemSummary(nil), f.lists[owner]...), nil
}

func (f *fakeClient) Item(_ context.Context, owner, itemID string) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[owner+"/"+itemID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeClient) SetRead(_ context.Context, _, _ string, isRead bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readSent = append(f.readSent, isRead)
	return f.setRead
}

func (f *fakeClient) StartBackground(context.Context) (*models.BackgroundStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bgCalls = append(f.bgCalls, "start")
	return &models.BackgroundStatus{Status: "started", IntervalHours: f.interval}, nil
}

func (f *fakeClient) StopBackground(context.Context) (*models.BackgroundStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bgCalls = append(f.bgCalls, "stop")
	return &models.BackgroundStatus{Status: "stopped"}, nil
}

func (f *fakeClient) Interval(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interval, nil
}

func (f *fakeClient) SetInterval(_ context.Context, hours float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interval = hours
	f.intervalSet = append(f.intervalSet, hours)
	return nil
}

type fakePrefetcher struct {
	mu   sync.Mutex
	urls []string
}

func (p *fakePrefetcher) PrefetchItemAssets(_ context.Context, urls []string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, urls...)
	return len(urls)
}
