package client

import (
	"context"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
)

// Client is the contract of the backing reading service.
type Client interface {
	Health(ctx context.Context) (*models.Health, error)
	Ping(ctx context.Context) error
	CheckAuth(ctx context.Context, token string) error

	Directory(ctx context.Context) ([]models.OwnerSummary, error)
	Items(ctx context.Context, owner string, opts models.ListOptions) ([]models.ItemSummary, error)
	Item(ctx context.Context, owner, itemID string) (*models.Item, error)
	SetRead(ctx context.Context, owner, itemID string, isRead bool) error

	SyncStatus(ctx context.Context) (*models.SyncStatus, error)
	SyncProgress(ctx context.Context) (*models.SyncProgress, error)
	TriggerSync(ctx context.Context, kind string) (*models.TriggerResult, error)
	StartBackground(ctx context.Context) (*models.BackgroundStatus, error)
	StopBackground(ctx context.Context) (*models.BackgroundStatus, error)
	Interval(ctx context.Context) (float64, error)
	SetInterval(ctx context.Context, hours float64) error
	History(ctx context.Context, owner string, limit int) ([]models.SyncHistoryEntry, error)
}

// TokenSource holds the bearer credential sent on authenticated calls.
type TokenSource interface {
	// Token returns the held token, if any.
	Token(ctx context.Context) (string, bool)
	// Revoke drops the held token after the service rejected it.
	Revoke(ctx context.Context)
}
