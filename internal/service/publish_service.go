package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/audit"
	"github.com/siteforge/content-pipeline/internal/clients"
	"github.com/siteforge/content-pipeline/internal/config"
	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/repository"
)

// PublishSvc is the publish gate: a structural content audit composed with a
// billing entitlement check. Both must pass; the audit runs first so a user
// sees content problems before being asked to pay.
type PublishSvc struct {
	repos   *repository.Repositories
	billing clients.Billing
	cfg     *config.ServerConfig
	log     zerolog.Logger

	// Now is swappable for tests
	Now func() time.Time
}

// NewPublishSvc creates the publish gate
func NewPublishSvc(repos *repository.Repositories, billing clients.Billing, cfg *config.ServerConfig, log zerolog.Logger) *PublishSvc {
	return &PublishSvc{
		repos:   repos,
		billing: billing,
		cfg:     cfg,
		log:     log.With().Str("service", "publish").Logger(),
		Now:     time.Now,
	}
}

// Publish promotes the project's latest content into the published slot if
// both gates allow it. The audit is recomputed on every attempt.
func (s *PublishSvc) Publish(ctx context.Context, project *models.Project) (*PublishResult, error) {
	latest, err := s.repos.Version.GetLatest(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &PublishResult{OK: false, Code: CodeNoContent}, nil
	}

	content, err := s.repos.Content.Get(ctx, latest.ContentRef)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return &PublishResult{OK: false, Code: CodeNoContent}, nil
	}

	res := audit.Check(content.HTML)
	if !res.ReadyToPublish {
		s.log.Info().
			Str("project_id", project.ID).
			Int("missing", len(res.Missing)).
			Msg("Publish blocked by content audit")
		return &PublishResult{OK: false, Code: CodeNotReady, Audit: &res}, nil
	}

	entitled, err := s.billing.IsEntitled(ctx, project.OwnerID, CapabilityPublish)
	if err != nil {
		return nil, fmt.Errorf("entitlement check: %w", err)
	}
	if !entitled {
		url, err := s.billing.CreateUpgradeSession(ctx, project.OwnerID, project.ID)
		if err != nil {
			// The denial stands either way; the upgrade path is best effort.
			s.log.Warn().Err(err).Str("project_id", project.ID).Msg("Failed to create upgrade session")
		}
		return &PublishResult{OK: false, Code: CodeUpgradeRequired, UpgradeURL: url}, nil
	}

	now := s.Now().UTC()
	if err := s.repos.Version.SetPublished(ctx, &models.PublishedSlot{
		ProjectID:   project.ID,
		ContentRef:  latest.ContentRef,
		PublishedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("write published slot: %w", err)
	}

	s.log.Info().Str("project_id", project.ID).Str("content_ref", latest.ContentRef).Msg("Site published")
	return &PublishResult{
		OK:          true,
		PublicURL:   s.PublicURL(project),
		PublishedAt: &now,
	}, nil
}

// PublicURL returns where the published site is served: the verified custom
// domain when routing has flipped, the platform subdomain otherwise.
func (s *PublishSvc) PublicURL(project *models.Project) string {
	if project.VerifiedDomain != "" {
		return "https://" + project.VerifiedDomain
	}
	return fmt.Sprintf("https://%s.%s", project.ID, s.cfg.PublicBaseDomain)
}
