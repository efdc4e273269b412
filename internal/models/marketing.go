package models

import (
	"time"
)

// MarketingStatus represents the lifecycle state of a marketing item.
// Published is terminal.
type MarketingStatus string

const (
	MarketingStatusDraft     MarketingStatus = "draft"
	MarketingStatusApproved  MarketingStatus = "approved"
	MarketingStatusScheduled MarketingStatus = "scheduled"
	MarketingStatusPublished MarketingStatus = "published"
)

// ValidChannels is the set of accepted marketing channels
var ValidChannels = map[string]bool{
	"email":    true,
	"blog":     true,
	"social":   true,
	"newsfeed": true,
}

// MarketingItem is one piece of scheduled marketing content. Scheduled items
// require a non-null ScheduledFor; only the sweep moves them to published.
type MarketingItem struct {
	ID           string          `json:"id"`
	ProjectID    string          `json:"project_id"`
	Channel      string          `json:"channel"`
	Title        string          `json:"title"`
	Body         string          `json:"body,omitempty"`
	Status       MarketingStatus `json:"status"`
	ScheduledFor *time.Time      `json:"scheduled_for,omitempty"`
	PublishedAt  *time.Time      `json:"published_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MarketingQueue is the per-project item list, read and written as a single
// record so a sweep replaces it in one store call.
type MarketingQueue struct {
	Schema    int             `json:"schema"`
	ProjectID string          `json:"project_id"`
	Items     []MarketingItem `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PublishLogEntry is one line of the compact append-and-cap sweep log.
type PublishLogEntry struct {
	ItemID      string    `json:"item_id"`
	Channel     string    `json:"channel"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

// PublishLog is the capped per-project sweep log, bounded to the most recent
// N entries (newest first).
type PublishLog struct {
	Schema    int               `json:"schema"`
	ProjectID string            `json:"project_id"`
	Entries   []PublishLogEntry `json:"entries"`
}
