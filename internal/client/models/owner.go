package models

// OwnerSummary describes a content source in the directory listing. The local
// store keeps the last successfully fetched copy for offline use.
type OwnerSummary struct {
	Slug        string `json:"slug" validate:"required"`
	Name        string `json:"name"`
	ItemCount   int    `json:"item_count"`
	UnreadCount int    `json:"unread_count"`
	LatestItem  string `json:"latest_item,omitempty"`
}

// OwnerStats is the aggregate reported for the local store.
type OwnerStats struct {
	Count int `json:"count"`
}
