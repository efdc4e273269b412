package models

import (
	"time"
)

// SchemaVersion is written into every persisted record. Repositories reject
// records carrying a different version at the read boundary instead of
// trusting ambient JSON shapes.
const SchemaVersion = 1

// Plan represents the billing plan of a project owner
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// ValidPlans is the set of accepted plan values
var ValidPlans = map[Plan]bool{
	PlanFree: true,
	PlanPro:  true,
}

// Project is the aggregate root: runs, versions, the published slot, the
// domain record and the marketing queue all hang off its id by foreign key,
// not by containment.
type Project struct {
	Schema         int       `json:"schema"`
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	Plan           Plan      `json:"plan"`
	VerifiedDomain string    `json:"verified_domain,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LatestPointer is the per-project reference to the most recently generated
// artifact, not yet necessarily published.
type LatestPointer struct {
	Schema     int       `json:"schema"`
	ProjectID  string    `json:"project_id"`
	ContentRef string    `json:"content_ref"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PublishedSlot holds the artifact currently served publicly. At most one
// live value per project; overwritten in place, never historized beyond the
// version log.
type PublishedSlot struct {
	Schema      int       `json:"schema"`
	ProjectID   string    `json:"project_id"`
	ContentRef  string    `json:"content_ref"`
	PublishedAt time.Time `json:"published_at"`
}

// ContentRecord stores one generated HTML document, addressed by contentRef.
type ContentRecord struct {
	Schema    int       `json:"schema"`
	Ref       string    `json:"ref"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"created_at"`
}
