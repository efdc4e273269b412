package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/store"
)

// ErrBadRecord indicates a persisted record carried an unexpected schema
// version. Records are rejected at the read boundary rather than trusted.
var ErrBadRecord = errors.New("unexpected record shape")

func checkSchema(key string, got int) error {
	if got != models.SchemaVersion {
		return fmt.Errorf("%w: %s has schema %d, want %d", ErrBadRecord, key, got, models.SchemaVersion)
	}
	return nil
}

// ProjectRepository defines the interface for project data operations
type ProjectRepository interface {
	Save(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	// CollectDependentKeys gathers every key owned by the project: the
	// project-prefixed records plus the run, version and content records
	// they reference. Used by the explicit fan-out delete.
	CollectDependentKeys(ctx context.Context, projectID string) ([]string, error)
	DeleteKey(ctx context.Context, key string) error
}

// RunRepository defines the interface for run data operations
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	Update(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id string) (*models.Run, error)
	ListIDs(ctx context.Context, projectID string) ([]string, error)
}

// VersionRepository defines the interface for version and pointer operations
type VersionRepository interface {
	SaveVersion(ctx context.Context, v *models.Version) error
	GetByID(ctx context.Context, id string) (*models.Version, error)
	PrependIndex(ctx context.Context, projectID, versionID string) error
	ListIDs(ctx context.Context, projectID string) ([]string, error)
	SetLatest(ctx context.Context, pointer *models.LatestPointer) error
	GetLatest(ctx context.Context, projectID string) (*models.LatestPointer, error)
	SetPublished(ctx context.Context, slot *models.PublishedSlot) error
	GetPublished(ctx context.Context, projectID string) (*models.PublishedSlot, error)
}

// ContentRepository defines the interface for content artifact operations
type ContentRepository interface {
	Save(ctx context.Context, rec *models.ContentRecord) error
	Get(ctx context.Context, ref string) (*models.ContentRecord, error)
}

// DomainRepository defines the interface for domain record operations
type DomainRepository interface {
	Save(ctx context.Context, d *models.Domain) error
	Get(ctx context.Context, projectID string) (*models.Domain, error)
}

// MarketingRepository defines the interface for marketing queue operations
type MarketingRepository interface {
	GetQueue(ctx context.Context, projectID string) (*models.MarketingQueue, error)
	SaveQueue(ctx context.Context, q *models.MarketingQueue) error
	GetLog(ctx context.Context, projectID string) (*models.PublishLog, error)
	SaveLog(ctx context.Context, l *models.PublishLog) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Project   ProjectRepository
	Run       RunRepository
	Version   VersionRepository
	Content   ContentRepository
	Domain    DomainRepository
	Marketing MarketingRepository
}

// New creates all repositories over the given record store
func New(rs store.RecordStore) *Repositories {
	return &Repositories{
		Project:   NewProjectRepo(rs),
		Run:       NewRunRepo(rs),
		Version:   NewVersionRepo(rs),
		Content:   NewContentRepo(rs),
		Domain:    NewDomainRepo(rs),
		Marketing: NewMarketingRepo(rs),
	}
}
