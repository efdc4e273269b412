package models

import (
	"time"
)

// DomainStatus represents the verification state of an attached domain.
// Status only advances forward (pending_dns -> verifying -> verified ->
// ssl_active) or jumps to error on unrecoverable failure.
type DomainStatus string

const (
	DomainStatusPendingDNS DomainStatus = "pending_dns"
	DomainStatusVerifying  DomainStatus = "verifying"
	DomainStatusVerified   DomainStatus = "verified"
	DomainStatusSSLActive  DomainStatus = "ssl_active"
	DomainStatusError      DomainStatus = "error"
)

// domainRank orders the forward path; error sits outside it.
var domainRank = map[DomainStatus]int{
	DomainStatusPendingDNS: 0,
	DomainStatusVerifying:  1,
	DomainStatusVerified:   2,
	DomainStatusSSLActive:  3,
}

// CanAdvance reports whether moving from s to next is a legal forward step.
// Any state may move to error.
func (s DomainStatus) CanAdvance(next DomainStatus) bool {
	if next == DomainStatusError {
		return true
	}
	from, ok := domainRank[s]
	if !ok {
		return false
	}
	to, ok := domainRank[next]
	if !ok {
		return false
	}
	return to > from
}

// AtLeast reports whether s has reached the given state on the forward path.
func (s DomainStatus) AtLeast(other DomainStatus) bool {
	from, ok := domainRank[s]
	if !ok {
		return false
	}
	to, ok := domainRank[other]
	if !ok {
		return false
	}
	return from >= to
}

// Domain is a candidate custom domain attached to a project, driven to
// ssl_active by the caller re-invoking the check operation (polling, never
// push).
type Domain struct {
	Schema          int          `json:"schema"`
	ID              string       `json:"id"`
	ProjectID       string       `json:"project_id"`
	Domain          string       `json:"domain"`
	Status          DomainStatus `json:"status"`
	Token           string       `json:"token"`
	DNSInstructions string       `json:"dns_instructions"`
	Error           string       `json:"error,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	LastCheckedAt   *time.Time   `json:"last_checked_at,omitempty"`
}
