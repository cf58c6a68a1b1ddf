package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/client/reading"
	"github.com/dmitrijs2005/readkeeper/internal/client/services"
	"github.com/dmitrijs2005/readkeeper/internal/client/state"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
)

// Library is the sync orchestrator as the REPL uses it.
type Library interface {
	RefreshDirectory(ctx context.Context) ([]models.OwnerSummary, error)
	Items(ctx context.Context, owner string, opts models.ListOptions) ([]models.ItemSummary, error)
	Item(ctx context.Context, owner, itemID string) (*models.Item, error)
	SetRead(ctx context.Context, owner, itemID string, isRead bool) error
	Retain(ctx context.Context, owner, itemID string) (*models.Item, error)
	Forget(ctx context.Context, owner, itemID string) error

	TriggerQuickSync(ctx context.Context) (models.TriggerResult, error)
	TriggerFullSync(ctx context.Context) (models.TriggerResult, error)
	StartBackground(ctx context.Context, intervalHours float64) (*models.BackgroundStatus, error)
	StopBackground(ctx context.Context) (*models.BackgroundStatus, error)
	Status(ctx context.Context) (*models.SyncStatus, error)
	Interval(ctx context.Context) (float64, error)
	SetInterval(ctx context.Context, hours float64) error
	History(ctx context.Context, owner string, limit int) ([]models.SyncHistoryEntry, error)
}

// Store is the local store as the REPL uses it.
type Store interface {
	ListOwners(ctx context.Context) ([]models.OwnerSummary, error)
	ListAll(ctx context.Context) ([]models.Item, error)
	Stats(ctx context.Context) models.OwnerStats
	Clear(ctx context.Context) error
}

type Deps struct {
	Auth         services.AuthService
	Library      Library
	Store        Store
	Tracker      *reading.Tracker
	Progress     *state.Progress
	Connectivity *state.Connectivity
	Logger       logging.Logger

	// In and Out default to the process stdin and stdout.
	In  io.Reader
	Out io.Writer
}

type App struct {
	auth     services.AuthService
	library  Library
	store    Store
	tracker  *reading.Tracker
	progress *state.Progress
	conn     *state.Connectivity
	log      logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(d Deps) *App {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Progress == nil {
		d.Progress = state.NewProgress()
	}
	if d.Connectivity == nil {
		d.Connectivity = state.NewConnectivity(d.Logger)
	}
	return &App{
		auth:     d.Auth,
		library:  d.Library,
		store:    d.Store,
		tracker:  d.Tracker,
		progress: d.Progress,
		conn:     d.Connectivity,
		log:      d.Logger.With("component", "cli"),
		reader:   bufio.NewReader(d.In),
		out:      d.Out,
	}
}

// Run prints a greeting and serves the REPL until the user exits or ctx is
// cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.tracker.Close()

	a.println("Welcome to readkeeper (type 'help' for commands)")
	if enabled, err := a.auth.AuthEnabled(ctx); err == nil && enabled && !a.auth.LoggedIn(ctx) {
		a.println("The service requires a token, use 'login'.")
	}
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) getStatus() string {
	parts := []string{string(a.conn.Mode())}
	if p := a.progress.Get(); p.InProgress {
		parts = append(parts, "syncing")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
