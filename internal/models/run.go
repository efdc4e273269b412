package models

import (
	"time"
)

// RunStatus represents the status of a generation run
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Terminal reports whether a run can no longer change status. Transitions
// are monotonic: queued -> running -> complete|failed, never backwards.
func (s RunStatus) Terminal() bool {
	return s == RunStatusComplete || s == RunStatusFailed
}

// Run is one execution attempt that produces a candidate content artifact
// from a prompt. ArtifactRef is set iff status is complete.
type Run struct {
	Schema      int        `json:"schema"`
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Prompt      string     `json:"prompt"`
	Status      RunStatus  `json:"status"`
	ArtifactRef string     `json:"artifact_ref,omitempty"`
	VersionID   string     `json:"version_id,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
