package models

import (
	"time"
)

// Version is an immutable, timestamped record of one successfully generated
// artifact. Versions are append-only: once written, ContentRef never changes.
type Version struct {
	Schema     int       `json:"schema"`
	ID         string    `json:"version_id"`
	ProjectID  string    `json:"project_id"`
	ContentRef string    `json:"content_ref"`
	Prompt     string    `json:"prompt"`
	CreatedAt  time.Time `json:"created_at"`
}

// VersionIndex is the per-project list of version ids, newest first. It is
// prepended to before the latest pointer moves, so a crash between the two
// writes leaves the pointer behind the index rather than ahead of it.
type VersionIndex struct {
	Schema    int      `json:"schema"`
	ProjectID string   `json:"project_id"`
	IDs       []string `json:"ids"`
}

// RunIndex is the per-project list of run ids, newest first.
type RunIndex struct {
	Schema    int      `json:"schema"`
	ProjectID string   `json:"project_id"`
	IDs       []string `json:"ids"`
}
