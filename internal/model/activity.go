package model

import "time"

// Category hints carried by activity entries. They are presentational only.
const (
	HintCreate  = "create"
	HintUpdate  = "update"
	HintDelete  = "delete"
	HintRestore = "restore"
	HintInfo    = "info"
)

type ActivityLogEntry struct {
	ID           string    `json:"id"`
	Actor        Actor     `json:"actor"`
	Message      string    `json:"message"`
	CategoryHint string    `json:"category_hint"`
	Timestamp    time.Time `json:"timestamp"`
}

type ActivityQuery struct {
	Actor   string
	Message string
	From    string
	To      string
	Sort    string
	Order   string
	Page    int
	Limit   int
}

type ActivityListData struct {
	Items []ActivityLogEntry `json:"items"`
}
