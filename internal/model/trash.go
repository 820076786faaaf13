package model

import "time"

// TrashBinEntry is the snapshot of a deleted record, owned by the actor who deleted it.
type TrashBinEntry struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"owner_id"`
	ItemType       string         `json:"item_type"`
	OriginalItemID int64          `json:"original_item_id"`
	FieldSnapshot  map[string]any `json:"field_snapshot"`
	DeletedAt      time.Time      `json:"deleted_at"`
}

type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

type BulkDeleteFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

type BulkDeleteResponse struct {
	DeletedCount int                 `json:"deleted_count"`
	Deleted      []int64             `json:"deleted"`
	Failed       []BulkDeleteFailure `json:"failed"`
}

type EmptyTrashResponse struct {
	Purged int `json:"purged"`
}
