package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/client"
	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/client/state"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
	"github.com/dmitrijs2005/readkeeper/internal/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// ErrReadStateReverted is returned when the service rejected a read toggle
// and the optimistic in-memory update was rolled back.
var ErrReadStateReverted = errors.New("read state reverted")

const (
	SyncQuick = "quick"
	SyncFull  = "full"
)

// AssetPrefetcher warms the offline item-asset cache.
type AssetPrefetcher interface {
	PrefetchItemAssets(ctx context.Context, urls []string) int
}

type SyncOptions struct {
	// PollInterval is the fixed delay between progress polls.
	PollInterval  time.Duration
	ViewCacheSize int
	Assets        AssetPrefetcher
	Logger        logging.Logger
	// Reader serves the item and list views shown to the user, normally a
	// client behind the offline interceptor. Defaults to the network client.
	Reader client.Client
}

// SyncService triggers sync cycles on the service, mirrors their progress
// and keeps the in-memory item views. The service owns the actual
// single-cycle guarantee; SyncService only avoids redundant triggers.
//
// client must reach the network without offline fallback so that sync,
// retain and directory refresh see real network failures.
type SyncService struct {
	client   client.Client
	reader   client.Client
	store    *LocalStore
	progress *state.Progress
	assets   AssetPrefetcher
	log      logging.Logger
	interval time.Duration

	group singleflight.Group

	mu    sync.Mutex
	items *lru.Cache[string, *models.Item]
	lists *lru.Cache[string, []models.ItemSummary]

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

func NewSyncService(c client.Client, store *LocalStore, progress *state.Progress, opts SyncOptions) (*SyncService, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.ViewCacheSize <= 0 {
		opts.ViewCacheSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Reader == nil {
		opts.Reader = c
	}

	items, err := lru.New[string, *models.Item](opts.ViewCacheSize)
	if err != nil {
		return nil, fmt.Errorf("item view cache: %w", err)
	}
	lists, err := lru.New[string, []models.ItemSummary](opts.ViewCacheSize)
	if err != nil {
		return nil, fmt.Errorf("list view cache: %w", err)
	}

	return &SyncService{
		client:   c,
		reader:   opts.Reader,
		store:    store,
		progress: progress,
		assets:   opts.Assets,
		log:      opts.Logger.With("component", "sync"),
		interval: opts.PollInterval,
		items:    items,
		lists:    lists,
	}, nil
}

func (s *SyncService) TriggerQuickSync(ctx context.Context) (models.TriggerResult, error) {
	return s.trigger(ctx, SyncQuick)
}

func (s *SyncService) TriggerFullSync(ctx context.Context) (models.TriggerResult, error) {
	return s.trigger(ctx, SyncFull)
}

// TriggersEnabled reports whether manual triggers should be offered.
func (s *SyncService) TriggersEnabled() bool {
	return !s.progress.InProgress()
}

func (s *SyncService) trigger(ctx context.Context, kind string) (models.TriggerResult, error) {
	v, err, _ := s.group.Do("trigger", func() (any, error) {
		return s.doTrigger(ctx, kind)
	})
	if err != nil {
		metrics.SyncTriggers.WithLabelValues(kind, "error").Inc()
		return models.TriggerResult{}, err
	}

	res := v.(models.TriggerResult)
	metrics.SyncTriggers.WithLabelValues(kind, string(res.Status)).Inc()
	return res, nil
}

func (s *SyncService) doTrigger(ctx context.Context, kind string) (models.TriggerResult, error) {
	running := models.TriggerResult{Status: models.TriggerAlreadyRunning, Type: kind, Message: "Sync already in progress"}

	if s.progress.InProgress() {
		return running, nil
	}

	p, err := s.client.SyncProgress(ctx)
	switch {
	case err != nil:
		s.log.Debug(ctx, "progress unavailable before trigger", "error", err)
	case p.InProgress:
		s.progress.Set(*p)
		s.ensurePolling()
		return running, nil
	}

	res, err := s.client.TriggerSync(ctx, kind)
	if err != nil {
		return models.TriggerResult{}, fmt.Errorf("trigger %s sync: %w", kind, err)
	}

	if res.Status == models.TriggerStarted {
		msg := res.Message
		if msg == "" {
			msg = "Sync started"
		}
		s.progress.Begin(msg)
		s.ensurePolling()
	}
	s.log.Info(ctx, "sync triggered", "kind", kind, "status", res.Status)
	return *res, nil
}

// PollProgress reads the service's progress once and mirrors it.
func (s *SyncService) PollProgress(ctx context.Context) (models.SyncProgress, error) {
	p, err := s.client.SyncProgress(ctx)
	if err != nil {
		return s.progress.Get(), err
	}
	s.progress.Set(*p)
	return *p, nil
}

// Polling reports whether the progress poll is running.
func (s *SyncService) Polling() bool {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	return s.pollDone != nil
}

func (s *SyncService) ensurePolling() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	if s.pollDone != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.pollCancel, s.pollDone = cancel, done

	go func() {
		defer close(done)
		defer s.clearPoll(done)
		s.pollLoop(ctx)
	}()
}

func (s *SyncService) clearPoll(done chan struct{}) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	if s.pollDone == done {
		s.pollCancel()
		s.pollCancel, s.pollDone = nil, nil
	}
}

// pollLoop mirrors progress with a fixed delay until it has seen a running
// cycle finish, then refreshes the directory once. The acknowledged start
// counts as having seen the cycle running.
func (s *SyncService) pollLoop(ctx context.Context) {
	seen := s.progress.InProgress()
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		p, err := s.PollProgress(ctx)
		if err != nil {
			s.log.Debug(ctx, "progress poll failed", "error", err)
			timer.Reset(s.interval)
			continue
		}

		if p.InProgress {
			seen = true
		} else if seen {
			s.log.Info(ctx, "sync finished", "message", p.Message, "items_added", p.ItemsAdded)
			if _, err := s.RefreshDirectory(ctx); err != nil {
				s.log.Warn(ctx, "directory refresh after sync failed", "error", err)
			}
			return
		}
		timer.Reset(s.interval)
	}
}

// Close stops the progress poll and waits for it.
func (s *SyncService) Close() {
	s.pollMu.Lock()
	cancel, done := s.pollCancel, s.pollDone
	s.pollMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// StartBackground asks the service's scheduler to start. A positive
// intervalHours is applied first.
func (s *SyncService) StartBackground(ctx context.Context, intervalHours float64) (*models.BackgroundStatus, error) {
	if intervalHours > 0 {
		if err := s.SetInterval(ctx, intervalHours); err != nil {
			return nil, err
		}
	}
	st, err := s.client.StartBackground(ctx)
	if err != nil {
		return nil, fmt.Errorf("start background sync: %w", err)
	}
	return st, nil
}

func (s *SyncService) StopBackground(ctx context.Context) (*models.BackgroundStatus, error) {
	st, err := s.client.StopBackground(ctx)
	if err != nil {
		return nil, fmt.Errorf("stop background sync: %w", err)
	}
	return st, nil
}

func (s *SyncService) Status(ctx context.Context) (*models.SyncStatus, error) {
	return s.client.SyncStatus(ctx)
}

func (s *SyncService) Interval(ctx context.Context) (float64, error) {
	return s.client.Interval(ctx)
}

func (s *SyncService) SetInterval(ctx context.Context, hours float64) error {
	if hours <= 0 {
		return fmt.Errorf("interval must be positive, got %v", hours)
	}
	if err := s.client.SetInterval(ctx, hours); err != nil {
		return fmt.Errorf("set sync interval: %w", err)
	}
	return nil
}

func (s *SyncService) History(ctx context.Context, owner string, limit int) ([]models.SyncHistoryEntry, error) {
	return s.client.History(ctx, owner, limit)
}

// RefreshDirectory fetches the owner directory and keeps a copy in the
// local store. A store failure does not fail the refresh.
func (s *SyncService) RefreshDirectory(ctx context.Context) ([]models.OwnerSummary, error) {
	dir, err := s.client.Directory(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch directory: %w", err)
	}
	if s.store != nil && len(dir) > 0 {
		if err := s.store.PutOwners(ctx, dir); err != nil {
			s.log.Warn(ctx, "directory not stored", "error", err)
		}
	}
	return dir, nil
}

func itemKey(owner, itemID string) string {
	return owner + "/" + itemID
}

func listKey(owner string, o models.ListOptions) string {
	return fmt.Sprintf("%s?limit=%d&offset=%d&search=%s", owner, o.Limit, o.Offset, o.Search)
}

// Items lists an owner's items and keeps the list as an in-memory view.
func (s *SyncService) Items(ctx context.Context, owner string, opts models.ListOptions) ([]models.ItemSummary, error) {
	list, err := s.reader.Items(ctx, owner, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lists.Add(listKey(owner, opts), append([]models.ItemSummary(nil), list...))
	s.mu.Unlock()
	return list, nil
}

// Item fetches one item and keeps it as an in-memory view. The returned
// value is a copy.
func (s *SyncService) Item(ctx context.Context, owner, itemID string) (*models.Item, error) {
	it, err := s.reader.Item(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}

	cp := *it
	s.mu.Lock()
	s.items.Add(itemKey(owner, itemID), &cp)
	s.mu.Unlock()
	return it, nil
}

// Viewed returns the in-memory view of an item, if any.
func (s *SyncService) Viewed(owner, itemID string) (models.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items.Peek(itemKey(owner, itemID))
	if !ok {
		return models.Item{}, false
	}
	return *it, true
}

// ViewedList returns the in-memory list view for owner and opts, if any.
func (s *SyncService) ViewedList(owner string, opts models.ListOptions) ([]models.ItemSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists.Peek(listKey(owner, opts))
	if !ok {
		return nil, false
	}
	return append([]models.ItemSummary(nil), l...), true
}

// SetRead toggles the read flag optimistically: in-memory views change
// before the request is sent. When the service rejects the change, the views
// are restored and ErrReadStateReverted is returned.
func (s *SyncService) SetRead(ctx context.Context, owner, itemID string, isRead bool) error {
	revert := s.applyRead(owner, itemID, isRead)

	if err := s.client.SetRead(ctx, owner, itemID, isRead); err != nil {
		revert()
		s.log.Warn(ctx, "read toggle rejected", "owner", owner, "item", itemID, "error", err)
		return fmt.Errorf("%w: %w", ErrReadStateReverted, err)
	}

	if s.store != nil {
		if _, err := s.store.SetRead(ctx, owner, itemID, isRead); err != nil {
			s.log.Warn(ctx, "retained copy not updated", "owner", owner, "item", itemID, "error", err)
		}
	}
	return nil
}

// applyRead updates every in-memory view of the item and returns a func
// that puts the previous flags back.
func (s *SyncService) applyRead(owner, itemID string, isRead bool) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var undo []func()

	if it, ok := s.items.Peek(itemKey(owner, itemID)); ok {
		prev := it.IsRead
		it.IsRead = isRead
		undo = append(undo, func() { it.IsRead = prev })
	}

	for _, k := range s.lists.Keys() {
		l, ok := s.lists.Peek(k)
		if !ok {
			continue
		}
		for i := range l {
			if l[i].ID != itemID || (l[i].OwnerID != "" && l[i].OwnerID != owner) {
				continue
			}
			row, prev := &l[i], l[i].IsRead
			row.IsRead = isRead
			undo = append(undo, func() { row.IsRead = prev })
		}
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, u := range undo {
			u()
		}
	}
}

// Retain downloads an item into the local store and prefetches the assets
// its body references. It returns the stored copy.
func (s *SyncService) Retain(ctx context.Context, owner, itemID string) (*models.Item, error) {
	it, err := s.client.Item(ctx, owner, itemID)
	if err != nil {
		return nil, fmt.Errorf("fetch item: %w", err)
	}
	if err := s.store.Put(ctx, it); err != nil {
		return nil, fmt.Errorf("retain item: %w", err)
	}

	if s.assets != nil {
		if urls := assetURLs(it.Body, it.URL); len(urls) > 0 {
			n := s.assets.PrefetchItemAssets(ctx, urls)
			s.log.Debug(ctx, "item assets cached", "item", itemID, "cached", n, "found", len(urls))
		}
	}
	return it, nil
}

// Forget removes a retained item.
func (s *SyncService) Forget(ctx context.Context, owner, itemID string) error {
	return s.store.Delete(ctx, owner, itemID)
}
