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

// ProjectSvc manages the aggregate root. Deletion is a manual fan-out over
// dependent keys, not a transactional cascade: the store has no
// cross-key transactions, so partial failure is tolerated and reported.
type ProjectSvc struct {
	repos *repository.Repositories
	log   zerolog.Logger

	// Now is swappable for tests
	Now func() time.Time
}

// NewProjectSvc creates the project service
func NewProjectSvc(repos *repository.Repositories, log zerolog.Logger) *ProjectSvc {
	return &ProjectSvc{
		repos: repos,
		log:   log.With().Str("service", "project").Logger(),
		Now:   time.Now,
	}
}

// Create registers a new project on the free plan
func (s *ProjectSvc) Create(ctx context.Context, ownerID, name string) (*models.Project, error) {
	now := s.Now().UTC()
	p := &models.Project{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		Plan:      models.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Project.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	s.log.Info().Str("project_id", p.ID).Str("owner_id", ownerID).Msg("Project created")
	return p, nil
}

// Get retrieves a project by id
func (s *ProjectSvc) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.repos.Project.GetByID(ctx, id)
}

// Delete collects the project's dependent keys and deletes each in turn.
// Keys that fail to delete are reported so the operation can be re-run.
func (s *ProjectSvc) Delete(ctx context.Context, projectID string) (*DeleteResult, error) {
	keys, err := s.repos.Project.CollectDependentKeys(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("collect dependent keys: %w", err)
	}

	result := &DeleteResult{}
	for _, key := range keys {
		if err := s.repos.Project.DeleteKey(ctx, key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("Failed to delete dependent key")
			result.FailedKeys = append(result.FailedKeys, key)
			continue
		}
		result.Deleted++
	}

	s.log.Info().
		Str("project_id", projectID).
		Int("deleted", result.Deleted).
		Int("failed", len(result.FailedKeys)).
		Msg("Project deleted")
	return result, nil
}
