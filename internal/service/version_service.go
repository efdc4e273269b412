package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/repository"
)

// VersionSvc maintains the append-only version log and the per-project
// latest pointer.
type VersionSvc struct {
	repos *repository.Repositories
	log   zerolog.Logger

	// Now is swappable for tests
	Now func() time.Time
}

// NewVersionSvc creates the version store
func NewVersionSvc(repos *repository.Repositories, log zerolog.Logger) *VersionSvc {
	return &VersionSvc{
		repos: repos,
		log:   log.With().Str("service", "version").Logger(),
		Now:   time.Now,
	}
}

// Append writes the version record, prepends its id to the project's index,
// and moves the latest pointer, in that order, so a crash between steps
// leaves the pointer behind the index rather than pointing at an
// uncommitted record.
func (s *VersionSvc) Append(ctx context.Context, projectID, contentRef, prompt string) (*models.Version, error) {
	v := &models.Version{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		ContentRef: contentRef,
		Prompt:     prompt,
		CreatedAt:  s.Now().UTC(),
	}
	if err := s.repos.Version.SaveVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("save version: %w", err)
	}
	if err := s.repos.Version.PrependIndex(ctx, projectID, v.ID); err != nil {
		return nil, fmt.Errorf("index version: %w", err)
	}
	if err := s.repos.Version.SetLatest(ctx, &models.LatestPointer{
		ProjectID:  projectID,
		ContentRef: contentRef,
		UpdatedAt:  s.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("move latest pointer: %w", err)
	}

	s.log.Info().Str("version_id", v.ID).Str("project_id", projectID).Msg("Version appended")
	return v, nil
}

// List returns the project's versions, newest first
func (s *VersionSvc) List(ctx context.Context, projectID string, limit int) ([]models.Version, error) {
	ids, err := s.repos.Version.ListIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	versions := make([]models.Version, 0, len(ids))
	for _, id := range ids {
		v, err := s.repos.Version.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if v != nil {
			versions = append(versions, *v)
		}
	}
	return versions, nil
}

// Rollback copies a historical version's content ref into the latest
// pointer. It is a pointer move, not a new version: the log is untouched.
func (s *VersionSvc) Rollback(ctx context.Context, projectID, versionID string) (*RollbackResult, error) {
	v, err := s.repos.Version.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v == nil || v.ProjectID != projectID {
		return &RollbackResult{OK: false, Code: CodeNotFound}, nil
	}

	if err := s.repos.Version.SetLatest(ctx, &models.LatestPointer{
		ProjectID:  projectID,
		ContentRef: v.ContentRef,
		UpdatedAt:  s.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("move latest pointer: %w", err)
	}

	s.log.Info().Str("version_id", versionID).Str("project_id", projectID).Msg("Rolled back latest pointer")
	return &RollbackResult{OK: true, Version: v}, nil
}
