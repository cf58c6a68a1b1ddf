package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/client/reading"
	"github.com/dmitrijs2005/readkeeper/internal/client/state"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	enabled   bool
	loggedIn  bool
	token     string
	loggedOut bool
}

func (f *fakeAuth) Login(_ context.Context, token string) error {
	f.token, f.loggedIn = token, true
	return nil
}
func (f *fakeAuth) Logout(context.Context) error {
	f.loggedOut, f.loggedIn = true, false
	return nil
}
func (f *fakeAuth) LoggedIn(context.Context) bool             { return f.loggedIn }
func (f *fakeAuth) AuthEnabled(context.Context) (bool, error) { return f.enabled, nil }
func (f *fakeAuth) Ping(context.Context) error                { return nil }

type fakeLibrary struct {
	Library

	directory    []models.OwnerSummary
	directoryErr error
	lists        map[string][]models.ItemSummary
	lastOpts     models.ListOptions
	items        map[string]*models.Item
	readSet      []bool
	forgotten    []string
	trigger      models.TriggerResult
	bgHours      []float64
	history      []models.SyncHistoryEntry
	status       *models.SyncStatus
	statusErr    error
}

func (f *fakeLibrary) Status(context.Context) (*models.SyncStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeLibrary) RefreshDirectory(context.Context) ([]models.OwnerSummary, error) {
	return f.directory, f.directoryErr
}

func (f *fakeLibrary) Items(_ context.Context, owner string, opts models.ListOptions) ([]models.ItemSummary, error) {
	f.lastOpts = opts
	return f.lists[owner], nil
}

func (f *fakeLibrary) Item(_ context.Context, owner, itemID string) (*models.Item, error) {
	it, ok := f.items[owner+"/"+itemID]
	if !ok {
		return nil, common.ErrNotFoundOffline
	}
	return it, nil
}

func (f *fakeLibrary) SetRead(_ context.Context, _, _ string, isRead bool) error {
	f.readSet = append(f.readSet, isRead)
	return nil
}

func (f *fakeLibrary) Retain(ctx context.Context, owner, itemID string) (*models.Item, error) {
	return f.Item(ctx, owner, itemID)
}

func (f *fakeLibrary) Forget(_ context.Context, owner, itemID string) error {
	f.forgotten = append(f.forgotten, owner+"/"+itemID)
	return nil
}

func (f *fakeLibrary) TriggerQuickSync(context.Context) (models.TriggerResult, error) {
	return f.trigger, nil
}

func (f *fakeLibrary) StartBackground(_ context.Context, hours float64) (*models.BackgroundStatus, error) {
	f.bgHours = append(f.bgHours, hours)
	return &models.BackgroundStatus{Status: "started", IntervalHours: hours}, nil
}

func (f *fakeLibrary) StopBackground(context.Context) (*models.BackgroundStatus, error) {
	return &models.BackgroundStatus{Status: "stopped"}, nil
}

func (f *fakeLibrary) History(_ context.Context, _ string, limit int) ([]models.SyncHistoryEntry, error) {
	return f.history[:min(limit, len(f.history))], nil
}

type fakeStore struct {
	owners  []models.OwnerSummary
	items   []models.Item
	cleared bool
}

func (f *fakeStore) ListOwners(context.Context) ([]models.OwnerSummary, error) { return f.owners, nil }
func (f *fakeStore) ListAll(context.Context) ([]models.Item, error)            { return f.items, nil }
func (f *fakeStore) Stats(context.Context) models.OwnerStats {
	return models.OwnerStats{Count: len(f.items)}
}
func (f *fakeStore) Clear(context.Context) error {
	f.cleared = true
	return nil
}

type memPositions struct {
	mu   sync.Mutex
	data map[string]models.Position
}

func (m *memPositions) Save(_ context.Context, p *models.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[p.ItemID] = *p
	return nil
}

func (m *memPositions) Get(_ context.Context, id string) (*models.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &p, nil
}

func (m *memPositions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type testApp struct {
	*App
	auth      *fakeAuth
	lib       *fakeLibrary
	store     *fakeStore
	positions *memPositions
	out       *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	ta := &testApp{
		auth:      &fakeAuth{},
		lib:       &fakeLibrary{lists: map[string][]models.ItemSummary{}, items: map[string]*models.Item{}},
		store:     &fakeStore{},
		positions: &memPositions{data: map[string]models.Position{}},
		out:       &bytes.Buffer{},
	}
	tracker := reading.NewTracker(ta.positions, reading.TrackerOptions{Anchor: 60, SaveInterval: time.Hour})
	ta.App = NewApp(Deps{
		Auth:     ta.auth,
		Library:  ta.lib,
		Store:    ta.store,
		Tracker:  tracker,
		Progress: state.NewProgress(),
		In:       strings.NewReader(input),
		Out:      ta.out,
	})
	t.Cleanup(tracker.Close)
	return ta
}

// feed replaces the pending input.
func (ta *testApp) feed(input string) {
	ta.App.reader.Reset(strings.NewReader(input))
}

func TestDirectory(t *testing.T) {
	ta := newTestApp(t, "")
	ta.lib.directory = []models.OwnerSummary{{Slug: "lunadea", Name: "Luna Dea", ItemCount: 5, UnreadCount: 2}}

	require.NoError(t, ta.Directory(context.Background()))
	assert.Contains(t, ta.out.String(), "lunadea")
	assert.Contains(t, ta.out.String(), "2/5 unread")
	assert.NotContains(t, ta.out.String(), "offline copy")
}

func TestDirectory_OfflineFallsBackToLocalCopy(t *testing.T) {
	ta := newTestApp(t, "")
	ta.lib.directoryErr = common.ErrNetworkUnavailable

	err := ta.Directory(context.Background())
	assert.ErrorIs(t, err, common.ErrNetworkUnavailable)

	ta.store.owners = []models.OwnerSummary{{Slug: "lunadea"}}
	require.NoError(t, ta.Directory(context.Background()))
	assert.Contains(t, ta.out.String(), "(offline copy)")
	assert.Contains(t, ta.out.String(), "lunadea")
}

func TestItems(t *testing.T) {
	ta := newTestApp(t, "")
	ta.lib.lists["lunadea"] = []models.ItemSummary{
		{ID: "a1", Title: "First", IsRead: true},
		{ID: "a2", Title: "Second"},
	}

	assert.ErrorAs(t, ta.Items(context.Background(), nil), new(usageError))

	require.NoError(t, ta.Items(context.Background(), []string{"lunadea", "cats", "dogs"}))
	assert.Equal(t, "cats dogs", ta.lib.lastOpts.Search)
	assert.Contains(t, ta.out.String(), "[x]")
	assert.Contains(t, ta.out.String(), "Second")
}

func TestMark(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, ta.Mark(ctx, []string{"lunadea", "a1"}))
	require.NoError(t, ta.Mark(ctx, []string{"lunadea", "a1", "unread"}))
	assert.Error(t, ta.Mark(ctx, []string{"lunadea", "a1", "maybe"}))
	assert.Error(t, ta.Mark(ctx, []string{"lunadea"}))
	assert.Equal(t, []bool{true, false}, ta.lib.readSet)
}

func TestKeepAndForget(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()
	ta.lib.items["lunadea/a1"] = &models.Item{ID: "a1", OwnerID: "lunadea", Title: "First"}
	require.NoError(t, ta.positions.Save(ctx, &models.Position{ItemID: "a1", BlockIndex: 2}))

	require.NoError(t, ta.Keep(ctx, []string{"lunadea", "a1"}))
	assert.Contains(t, ta.out.String(), `Kept "First"`)
	assert.ErrorIs(t, ta.Keep(ctx, []string{"lunadea", "a9"}), common.ErrNotFoundOffline)

	require.NoError(t, ta.Forget(ctx, []string{"lunadea", "a1"}))
	assert.Equal(t, []string{"lunadea/a1"}, ta.lib.forgotten)
	_, err := ta.positions.Get(ctx, "a1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSavedAndClear(t *testing.T) {
	ta := newTestApp(t, "n\n")
	ctx := context.Background()

	require.NoError(t, ta.Saved(ctx))
	assert.Contains(t, ta.out.String(), "Nothing downloaded.")

	ta.store.items = []models.Item{{OwnerID: "lunadea", ID: "a1", Title: "First", DownloadedAt: time.Now()}}
	require.NoError(t, ta.Saved(ctx))
	assert.Contains(t, ta.out.String(), "First")

	require.NoError(t, ta.Clear(ctx))
	assert.False(t, ta.store.cleared)

	ta.feed("y\n")
	require.NoError(t, ta.Clear(ctx))
	assert.True(t, ta.store.cleared)
}

func TestSyncCommands(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	ta.lib.trigger = models.TriggerResult{Status: models.TriggerStarted, Type: "quick"}
	require.NoError(t, ta.Sync(ctx, nil))
	assert.Contains(t, ta.out.String(), "Sync started (quick).")

	ta.lib.trigger = models.TriggerResult{Status: models.TriggerAlreadyRunning}
	require.NoError(t, ta.Sync(ctx, nil))
	assert.Contains(t, ta.out.String(), "already running")
	assert.Error(t, ta.Sync(ctx, []string{"sideways"}))

	assert.Error(t, ta.Background(ctx, []string{"start", "0"}))
	require.NoError(t, ta.Background(ctx, []string{"start", "6"}))
	require.NoError(t, ta.Background(ctx, []string{"start"}))
	require.NoError(t, ta.Background(ctx, []string{"stop"}))
	assert.Equal(t, []float64{6, 0}, ta.lib.bgHours)
	assert.Contains(t, ta.out.String(), "every 6 hours")
	assert.Contains(t, ta.out.String(), "Background sync stopped.")

	ta.lib.history = []models.SyncHistoryEntry{
		{SyncTime: "2026-01-02 10:00", Status: "success", ItemsAdded: 3},
		{SyncTime: "2026-01-01 10:00", Status: "error", ErrorMessage: "timeout"},
	}
	require.NoError(t, ta.History(ctx, []string{"lunadea", "1"}))
	assert.Contains(t, ta.out.String(), "+3")
	assert.NotContains(t, ta.out.String(), "timeout")
	assert.Error(t, ta.History(ctx, []string{"lunadea", "-1"}))
}

func TestLogin(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	var issued []byte
	old := getToken
	t.Cleanup(func() { getToken = old })
	getToken = func(io.Writer) ([]byte, error) {
		issued = []byte("tok-1")
		return issued, nil
	}

	require.NoError(t, ta.Login(ctx))
	assert.Contains(t, ta.out.String(), "does not require a token")
	assert.Nil(t, issued)

	ta.auth.enabled = true
	require.NoError(t, ta.Login(ctx))
	assert.Equal(t, "tok-1", ta.auth.token)
	assert.Equal(t, make([]byte, 5), issued, "token bytes are wiped")

	require.NoError(t, ta.Logout(ctx))
	assert.True(t, ta.auth.loggedOut)
}

func TestStatus(t *testing.T) {
	ta := newTestApp(t, "")
	ta.progress.Begin("syncing lunadea")

	require.NoError(t, ta.Status(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "mode:       offline")
	assert.Contains(t, out, "running, syncing lunadea")
	assert.Contains(t, out, "downloaded: 0 items")
	assert.Contains(t, out, "background: unknown (offline)")
	assert.Equal(t, "(offline, syncing)", ta.getStatus())
}

func TestStatus_ShowsSchedulerWhenOnline(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()
	ta.conn.SetOnline(ctx, true)
	ta.lib.status = &models.SyncStatus{Running: true, IntervalHours: 6}

	require.NoError(t, ta.Status(ctx))
	assert.Contains(t, ta.out.String(), "background: running, every 6 hours")

	ta.out.Reset()
	ta.lib.status = &models.SyncStatus{}
	require.NoError(t, ta.Status(ctx))
	assert.Contains(t, ta.out.String(), "background: stopped")

	ta.out.Reset()
	ta.lib.statusErr = common.ErrNetworkUnavailable
	require.NoError(t, ta.Status(ctx))
	assert.Contains(t, ta.out.String(), "background: unknown\n")
}

func TestRead_SavesAndResumesPosition(t *testing.T) {
	old := getSize
	t.Cleanup(func() { getSize = old })
	getSize = func(int) (int, int, error) { return 40, 8, nil }

	var body strings.Builder
	for i := range 10 {
		fmt.Fprintf(&body, "<p>para %d</p>", i)
	}
	ta := newTestApp(t, "\nq\n")
	ta.lib.items["lunadea/a1"] = &models.Item{ID: "a1", OwnerID: "lunadea", Title: "Title", Body: body.String()}
	ctx := context.Background()

	require.NoError(t, ta.Read(ctx, []string{"lunadea", "a1"}))
	assert.NotContains(t, ta.out.String(), "(resumed)")

	p, err := ta.positions.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.BlockIndex)
	assert.Equal(t, 0.0, p.BlockOffset)

	ta.out.Reset()
	ta.feed("q\n")
	require.NoError(t, ta.Read(ctx, []string{"lunadea", "a1"}))
	out := ta.out.String()
	assert.Contains(t, out, "(resumed)")
	assert.Contains(t, out, "para 3")
	assert.NotContains(t, out, "para 0")
	assert.Empty(t, ta.tracker.Active())
}

func TestRead_Errors(t *testing.T) {
	ta := newTestApp(t, "")
	assert.ErrorAs(t, ta.Read(context.Background(), []string{"lunadea"}), new(usageError))
	assert.ErrorIs(t, ta.Read(context.Background(), []string{"lunadea", "a9"}), common.ErrNotFoundOffline)
}
