package models

import "time"

// Position is a structural reading coordinate: the index of a block in the
// document's block order, plus the distance of that block's top edge from
// the viewport anchor.
type Position struct {
	ItemID      string    `json:"item_id" validate:"required"`
	BlockIndex  int       `json:"block_index" validate:"gte=0"`
	BlockOffset float64   `json:"block_offset"`
	SavedAt     time.Time `json:"saved_at"`
}
