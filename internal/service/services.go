package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/audit"
	"github.com/siteforge/content-pipeline/internal/clients"
	"github.com/siteforge/content-pipeline/internal/config"
	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/repository"
)

// Outcome codes carried by structured results. Gate denials and precondition
// failures are expected, user-actionable outcomes, not faults.
const (
	CodeNoContent       = "NO_CONTENT"
	CodeNotReady        = "NOT_READY"
	CodeUpgradeRequired = "UPGRADE_REQUIRED"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidDomain   = "INVALID_DOMAIN"
	CodeDomainExists    = "DOMAIN_EXISTS"
	CodeDomainError     = "DOMAIN_ERROR"
	CodeDNSLookupFailed = "DNS_LOOKUP_FAILED"
	CodeInvalidSchedule = "INVALID_SCHEDULE"
	CodeInvalidInput    = "INVALID_INPUT"
)

// CapabilityPublish is the billing capability gating site publication
const CapabilityPublish = "publish"

// ProjectService defines the interface for project lifecycle operations
type ProjectService interface {
	Create(ctx context.Context, ownerID, name string) (*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Delete(ctx context.Context, projectID string) (*DeleteResult, error)
}

// RunService defines the interface for the run/generation engine
type RunService interface {
	CreateRun(ctx context.Context, projectID, prompt string) (*models.Run, error)
	Execute(ctx context.Context, runID string) (*models.Run, error)
	GetRun(ctx context.Context, runID string) (*models.Run, error)
	ListRuns(ctx context.Context, projectID string, limit int) ([]models.Run, error)
}

// VersionService defines the interface for the append-only version store
type VersionService interface {
	Append(ctx context.Context, projectID, contentRef, prompt string) (*models.Version, error)
	List(ctx context.Context, projectID string, limit int) ([]models.Version, error)
	Rollback(ctx context.Context, projectID, versionID string) (*RollbackResult, error)
}

// PublishService defines the interface for the publish gate
type PublishService interface {
	Publish(ctx context.Context, project *models.Project) (*PublishResult, error)
	PublicURL(project *models.Project) string
}

// DomainService defines the interface for domain attachment and verification
type DomainService interface {
	Attach(ctx context.Context, project *models.Project, domain string) (*DomainResult, error)
	Check(ctx context.Context, project *models.Project) (*DomainCheckResult, error)
	Get(ctx context.Context, projectID string) (*models.Domain, error)
}

// MarketingService defines the interface for the marketing queue and sweep
type MarketingService interface {
	CreateItem(ctx context.Context, projectID, channel, title, body string) (*MarketingResult, error)
	Approve(ctx context.Context, projectID, itemID string) (*MarketingResult, error)
	Schedule(ctx context.Context, projectID, itemID string, when time.Time) (*MarketingResult, error)
	List(ctx context.Context, projectID string) ([]models.MarketingItem, error)
	Sweep(ctx context.Context, projectID string) (*SweepResult, error)
}

// DeleteResult reports the outcome of a fan-out project deletion. Partial
// failure is tolerated: failed keys are reported, not rolled back.
type DeleteResult struct {
	Deleted    int      `json:"deleted"`
	FailedKeys []string `json:"failed_keys,omitempty"`
}

// RollbackResult is the structured outcome of a rollback request
type RollbackResult struct {
	OK      bool            `json:"ok"`
	Code    string          `json:"code,omitempty"`
	Version *models.Version `json:"version,omitempty"`
}

// PublishResult is the structured outcome of a publish attempt. Audit is
// returned verbatim on NOT_READY so the caller can remediate.
type PublishResult struct {
	OK         bool          `json:"ok"`
	Code       string        `json:"code,omitempty"`
	Audit      *audit.Result `json:"audit,omitempty"`
	UpgradeURL string        `json:"upgrade_url,omitempty"`
	PublicURL  string        `json:"public_url,omitempty"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
}

// DomainResult is the structured outcome of a domain attach request
type DomainResult struct {
	OK     bool           `json:"ok"`
	Code   string         `json:"code,omitempty"`
	Domain *models.Domain `json:"domain,omitempty"`
}

// DomainCheckResult is the structured outcome of one verification poll. When
// unverified it carries the diagnostic a caller needs to debug propagation:
// the queried host, the expected value and the values actually seen.
type DomainCheckResult struct {
	OK          bool                `json:"ok"`
	Code        string              `json:"code,omitempty"`
	Verified    bool                `json:"verified"`
	Status      models.DomainStatus `json:"status,omitempty"`
	QueriedHost string              `json:"queried_host,omitempty"`
	Expected    string              `json:"expected,omitempty"`
	Seen        []string            `json:"seen,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// MarketingResult is the structured outcome of a marketing item operation
type MarketingResult struct {
	OK   bool                  `json:"ok"`
	Code string                `json:"code,omitempty"`
	Item *models.MarketingItem `json:"item,omitempty"`
}

// SweepResult reports one sweep invocation. A second sweep in the same
// second finds no remaining due items and reports zero published.
type SweepResult struct {
	Published int                    `json:"published"`
	Items     []models.MarketingItem `json:"items"`
}

// Collaborators groups the external services the pipeline consumes
type Collaborators struct {
	Generator clients.Generator
	Billing   clients.Billing
	Resolver  clients.TXTResolver
	Certs     clients.CertProvisioner
}

// Services holds all service interfaces
type Services struct {
	Project   ProjectService
	Run       RunService
	Version   VersionService
	Publish   PublishService
	Domain    DomainService
	Marketing MarketingService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, collab Collaborators, cfg *config.Config, log zerolog.Logger) *Services {
	versionSvc := NewVersionSvc(repos, log)
	return &Services{
		Project:   NewProjectSvc(repos, log),
		Run:       NewRunSvc(repos, versionSvc, collab.Generator, &cfg.Generation, log),
		Version:   versionSvc,
		Publish:   NewPublishSvc(repos, collab.Billing, &cfg.Server, log),
		Domain:    NewDomainSvc(repos, collab.Resolver, collab.Certs, &cfg.DNS, log),
		Marketing: NewMarketingSvc(repos, &cfg.Marketing, log),
	}
}
