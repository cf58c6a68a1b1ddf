// Package models defines the data exchanged between the reader client, its
// local store and the backing reading service.
package models

import "time"

// Item is a single content unit of an owner, as returned by
// GET /items/{owner}/{item} and as retained in the local store.
type Item struct {
	// ID identifies the item within its owner.
	ID string `json:"id" validate:"required"`

	// OwnerID is the slug of the owner the item belongs to.
	OwnerID string `json:"owner_slug" validate:"required"`

	Title string `json:"title"`

	// Body is the rendered content blob, stored and served verbatim.
	Body string `json:"body"`

	URL string `json:"url"`

	// PublishedDate is optional and kept in the service's own format.
	PublishedDate string `json:"published_date,omitempty"`

	IsRead bool `json:"is_read"`

	PrevItemID string `json:"prev_item_id,omitempty"`
	NextItemID string `json:"next_item_id,omitempty"`

	// DownloadedAt is stamped by the local store on every write. Values
	// supplied by callers are ignored.
	DownloadedAt time.Time `json:"downloaded_at,omitzero"`
}

// Summary returns the list-view projection of the item.
func (i Item) Summary() ItemSummary {
	return ItemSummary{
		ID:            i.ID,
		OwnerID:       i.OwnerID,
		Title:         i.Title,
		PublishedDate: i.PublishedDate,
		IsRead:        i.IsRead,
	}
}

// ItemSummary is one row of GET /items/{owner}.
type ItemSummary struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_slug"`
	Title         string `json:"title"`
	PublishedDate string `json:"published_date,omitempty"`
	IsRead        bool   `json:"is_read"`
}

// ListOptions narrows GET /items/{owner}. Zero values are left out of the
// query string.
type ListOptions struct {
	Limit  int    `validate:"gte=0,lte=200"`
	Offset int    `validate:"gte=0"`
	Search string
}
