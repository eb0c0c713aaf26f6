package domain

import "time"

// BlockedSearch is a search query that was blocked on a child's device.
type BlockedSearch struct {
	ID          string    `json:"id"`
	SearchQuery string    `json:"search_query"`
	ChildID     string    `json:"child_id"`
	Timestamp   time.Time `json:"timestamp"`
}
