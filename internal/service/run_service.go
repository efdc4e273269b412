package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/clients"
	"github.com/siteforge/content-pipeline/internal/config"
	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/repository"
)

// systemPrompt frames the generation collaborator's task. The engine only
// accepts a complete, self-contained document back.
const systemPrompt = `You are a landing page generator for small businesses.
Produce one complete, self-contained HTML document: a full <html> page with a
<head> (title, meta description) and a <body> with a primary heading and a
clear call to action. Return only the document, no commentary.`

// RunSvc drives a run queued -> running -> complete|failed. It performs no
// automatic retries; retry policy belongs to the caller, which may create a
// new run.
type RunSvc struct {
	repos     *repository.Repositories
	versions  VersionService
	generator clients.Generator
	cfg       *config.GenerationConfig
	log       zerolog.Logger

	// Now is swappable for tests
	Now func() time.Time
}

// NewRunSvc creates the run engine
func NewRunSvc(repos *repository.Repositories, versions VersionService, generator clients.Generator, cfg *config.GenerationConfig, log zerolog.Logger) *RunSvc {
	return &RunSvc{
		repos:     repos,
		versions:  versions,
		generator: generator,
		cfg:       cfg,
		log:       log.With().Str("service", "run").Logger(),
		Now:       time.Now,
	}
}

// CreateRun records a new queued run for the project
func (s *RunSvc) CreateRun(ctx context.Context, projectID, prompt string) (*models.Run, error) {
	run := &models.Run{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Prompt:    prompt,
		Status:    models.RunStatusQueued,
		CreatedAt: s.Now().UTC(),
	}
	if err := s.repos.Run.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	s.log.Info().Str("run_id", run.ID).Str("project_id", projectID).Msg("Run created")
	return run, nil
}

// Execute drives a queued run to a terminal status. Calling it on a run that
// is no longer queued is a no-op returning the run as-is, which makes a
// retried call while still queued safe.
func (s *RunSvc) Execute(ctx context.Context, runID string) (*models.Run, error) {
	run, err := s.repos.Run.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}
	if run.Status != models.RunStatusQueued {
		return run, nil
	}

	run.Status = models.RunStatusRunning
	if err := s.repos.Run.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("mark run running: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	document, err := s.generator.Generate(genCtx, systemPrompt, run.Prompt)
	if err != nil {
		return s.fail(ctx, run, fmt.Sprintf("generation failed: %v", err))
	}
	if !looksLikeDocument(document) {
		return s.fail(ctx, run, "generation returned malformed output: missing expected document markers")
	}

	// Store the artifact, append the version, then settle the run. A crash
	// after the version append leaves the run running; the caller retries
	// with a fresh run.
	content := &models.ContentRecord{
		Ref:       uuid.New().String(),
		HTML:      document,
		CreatedAt: s.Now().UTC(),
	}
	if err := s.repos.Content.Save(ctx, content); err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	version, err := s.versions.Append(ctx, run.ProjectID, content.Ref, run.Prompt)
	if err != nil {
		return nil, fmt.Errorf("append version: %w", err)
	}

	now := s.Now().UTC()
	run.Status = models.RunStatusComplete
	run.ArtifactRef = content.Ref
	run.VersionID = version.ID
	run.CompletedAt = &now
	if err := s.repos.Run.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("complete run: %w", err)
	}

	s.log.Info().
		Str("run_id", run.ID).
		Str("project_id", run.ProjectID).
		Str("version_id", version.ID).
		Msg("Run completed")
	return run, nil
}

// GetRun retrieves a run by id
func (s *RunSvc) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	return s.repos.Run.GetByID(ctx, runID)
}

// ListRuns returns the project's runs, newest first
func (s *RunSvc) ListRuns(ctx context.Context, projectID string, limit int) ([]models.Run, error) {
	ids, err := s.repos.Run.ListIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	runs := make([]models.Run, 0, len(ids))
	for _, id := range ids {
		run, err := s.repos.Run.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if run != nil {
			runs = append(runs, *run)
		}
	}
	return runs, nil
}

func (s *RunSvc) fail(ctx context.Context, run *models.Run, reason string) (*models.Run, error) {
	now := s.Now().UTC()
	run.Status = models.RunStatusFailed
	run.Error = reason
	run.CompletedAt = &now
	if err := s.repos.Run.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("mark run failed: %w", err)
	}

	s.log.Warn().Str("run_id", run.ID).Str("reason", reason).Msg("Run failed")
	return run, nil
}

// looksLikeDocument checks for the markers of a complete HTML document
func looksLikeDocument(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<html") && strings.Contains(lower, "</html>")
}
