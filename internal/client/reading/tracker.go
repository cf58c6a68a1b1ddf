package reading

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
)

// PositionStore persists one position per item.
type PositionStore interface {
	Save(ctx context.Context, p *models.Position) error
	Get(ctx context.Context, itemID string) (*models.Position, error)
	Delete(ctx context.Context, itemID string) error
}

type TrackerOptions struct {
	// Anchor is the sampling line below the viewport top, skipping a fixed
	// navigation bar.
	Anchor float64
	// SaveInterval is the delay between the end of one save and the next
	// sample.
	SaveInterval time.Duration
	// RestorePoll and RestoreTimeout bound the wait for an enumerable
	// document before restoring.
	RestorePoll    time.Duration
	RestoreTimeout time.Duration
	Logger         logging.Logger
	Now            func() time.Time
}

// Tracker samples and restores the reading position of the one active
// document. It never returns storage errors to its caller.
type Tracker struct {
	store PositionStore
	opts  TrackerOptions
	log   logging.Logger

	mu     sync.Mutex
	itemID string
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTracker(store PositionStore, opts TrackerOptions) *Tracker {
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = 2 * time.Second
	}
	if opts.RestorePoll <= 0 {
		opts.RestorePoll = 50 * time.Millisecond
	}
	if opts.RestoreTimeout <= 0 {
		opts.RestoreTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{store: store, opts: opts, log: opts.Logger.With("component", "reading")}
}

// Open makes doc the active document: any previous document is closed, the
// saved position for itemID is restored once doc is enumerable, and the
// periodic save loop starts. Open returns immediately.
func (t *Tracker) Open(ctx context.Context, itemID string, doc BlockEnumerator) {
	t.start(ctx, itemID, doc, true)
}

// Resume is Open for callers that must not race the restore: the saved
// position is applied before Resume returns. It reports whether one was.
func (t *Tracker) Resume(ctx context.Context, itemID string, doc BlockEnumerator) bool {
	t.Close()
	restored := t.Restore(ctx, itemID, doc)
	t.start(ctx, itemID, doc, false)
	return restored
}

// start installs a new loop and stops the one it replaced. The swap happens
// under t.mu, so every loop is either current or stopped by exactly one
// caller.
func (t *Tracker) start(ctx context.Context, itemID string, doc BlockEnumerator, restore bool) {
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	t.mu.Lock()
	prevCancel, prevDone := t.cancel, t.done
	t.itemID, t.cancel, t.done = itemID, cancel, done
	t.mu.Unlock()

	stopLoop(prevCancel, prevDone)

	go func() {
		defer close(done)
		if restore {
			t.Restore(loopCtx, itemID, doc)
		}
		t.loop(loopCtx, itemID, doc)
	}()
}

// Close stops tracking and waits for the loop to exit. Closing with no
// active document is a no-op.
func (t *Tracker) Close() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done, t.itemID = nil, nil, ""
	t.mu.Unlock()

	stopLoop(cancel, done)
}

func stopLoop(cancel context.CancelFunc, done chan struct{}) {
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Active returns the item currently tracked, or "".
func (t *Tracker) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.itemID
}

// Save samples doc once and persists the result. It reports whether a
// position was written.
func (t *Tracker) Save(ctx context.Context, itemID string, doc BlockEnumerator) bool {
	blocks, ok := doc.Blocks()
	if !ok {
		return false
	}
	index, offset, ok := Locate(blocks, t.opts.Anchor)
	if !ok {
		return false
	}

	p := &models.Position{ItemID: itemID, BlockIndex: index, BlockOffset: offset, SavedAt: t.opts.Now()}
	if err := t.store.Save(ctx, p); err != nil {
		t.log.Debug(ctx, "position not saved", "item", itemID, "error", err)
		return false
	}
	return true
}

// Clear forgets the saved position of itemID.
func (t *Tracker) Clear(ctx context.Context, itemID string) {
	if err := t.store.Delete(ctx, itemID); err != nil {
		t.log.Debug(ctx, "position not cleared", "item", itemID, "error", err)
	}
}

// Saved returns the stored position of itemID, if any.
func (t *Tracker) Saved(ctx context.Context, itemID string) (*models.Position, bool) {
	p, err := t.store.Get(ctx, itemID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			t.log.Debug(ctx, "position not loaded", "item", itemID, "error", err)
		}
		return nil, false
	}
	return p, true
}

// Restore scrolls doc to the saved position of itemID once doc is
// enumerable, waiting at most RestoreTimeout. It reports whether a saved
// position was applied.
func (t *Tracker) Restore(ctx context.Context, itemID string, doc BlockEnumerator) bool {
	p, ok := t.Saved(ctx, itemID)
	if !ok {
		return false
	}

	blocks, ok := t.waitEnumerable(ctx, doc)
	if !ok {
		t.log.Debug(ctx, "document never became enumerable", "item", itemID)
		return false
	}

	delta, ok := RestoreDelta(blocks, t.opts.Anchor, p.BlockIndex, p.BlockOffset)
	if !ok {
		return false
	}
	if delta != 0 {
		doc.ScrollBy(delta)
	}
	return true
}

func (t *Tracker) waitEnumerable(ctx context.Context, doc BlockEnumerator) ([]Block, bool) {
	deadline := time.NewTimer(t.opts.RestoreTimeout)
	defer deadline.Stop()
	poll := time.NewTicker(t.opts.RestorePoll)
	defer poll.Stop()

	for {
		if blocks, ok := doc.Blocks(); ok && len(blocks) > 0 {
			return blocks, true
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-deadline.C:
			return nil, false
		case <-poll.C:
		}
	}
}

// loop runs with a fixed delay: the timer is re-armed only after a save has
// settled, so ticks never overlap.
func (t *Tracker) loop(ctx context.Context, itemID string, doc BlockEnumerator) {
	timer := time.NewTimer(t.opts.SaveInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			t.Save(ctx, itemID, doc)
			timer.Reset(t.opts.SaveInterval)
		}
	}
}
