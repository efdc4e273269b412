package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/config"
	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/repository"
)

// MarketingSvc manages the per-project marketing queue and the time-triggered
// sweep that promotes due scheduled items to published.
type MarketingSvc struct {
	repos *repository.Repositories
	cfg   *config.MarketingConfig
	log   zerolog.Logger

	// Now is swappable for tests
	Now func() time.Time
}

// NewMarketingSvc creates the marketing scheduler
func NewMarketingSvc(repos *repository.Repositories, cfg *config.MarketingConfig, log zerolog.Logger) *MarketingSvc {
	return &MarketingSvc{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "marketing").Logger(),
		Now:   time.Now,
	}
}

// CreateItem adds a draft item to the project's queue
func (s *MarketingSvc) CreateItem(ctx context.Context, projectID, channel, title, body string) (*MarketingResult, error) {
	if !models.ValidChannels[channel] {
		return &MarketingResult{OK: false, Code: CodeInvalidInput}, nil
	}

	q, err := s.loadQueue(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	item := models.MarketingItem{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Channel:   channel,
		Title:     title,
		Body:      body,
		Status:    models.MarketingStatusDraft,
		UpdatedAt: now,
	}
	q.Items = append(q.Items, item)
	q.UpdatedAt = now
	if err := s.repos.Marketing.SaveQueue(ctx, q); err != nil {
		return nil, fmt.Errorf("save marketing queue: %w", err)
	}

	return &MarketingResult{OK: true, Item: &item}, nil
}

// Approve moves a draft item to approved
func (s *MarketingSvc) Approve(ctx context.Context, projectID, itemID string) (*MarketingResult, error) {
	return s.updateItem(ctx, projectID, itemID, func(item *models.MarketingItem) string {
		if item.Status != models.MarketingStatusDraft {
			return CodeInvalidInput
		}
		item.Status = models.MarketingStatusApproved
		return ""
	})
}

// Schedule moves a draft or approved item into scheduled. A non-null future
// timestamp is required or the request is rejected.
func (s *MarketingSvc) Schedule(ctx context.Context, projectID, itemID string, when time.Time) (*MarketingResult, error) {
	if when.IsZero() || !when.After(s.Now()) {
		return &MarketingResult{OK: false, Code: CodeInvalidSchedule}, nil
	}
	return s.updateItem(ctx, projectID, itemID, func(item *models.MarketingItem) string {
		if item.Status != models.MarketingStatusDraft && item.Status != models.MarketingStatusApproved {
			return CodeInvalidSchedule
		}
		utc := when.UTC()
		item.Status = models.MarketingStatusScheduled
		item.ScheduledFor = &utc
		return ""
	})
}

// List returns the project's marketing items
func (s *MarketingSvc) List(ctx context.Context, projectID string) ([]models.MarketingItem, error) {
	q, err := s.loadQueue(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return q.Items, nil
}

// Sweep promotes every scheduled item whose time has passed to published,
// writes the full item list back in one call, then appends to the capped
// publish log. A second sweep in the same second finds nothing due and is a
// no-op, which makes the operation idempotent.
func (s *MarketingSvc) Sweep(ctx context.Context, projectID string) (*SweepResult, error) {
	q, err := s.loadQueue(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	var published []models.PublishLogEntry
	for i := range q.Items {
		item := &q.Items[i]
		if item.Status != models.MarketingStatusScheduled {
			continue
		}
		if item.ScheduledFor == nil || item.ScheduledFor.After(now) {
			continue
		}
		item.Status = models.MarketingStatusPublished
		item.PublishedAt = &now
		item.UpdatedAt = now
		published = append(published, models.PublishLogEntry{
			ItemID:      item.ID,
			Channel:     item.Channel,
			Title:       item.Title,
			PublishedAt: now,
		})
	}

	if len(published) > 0 {
		q.UpdatedAt = now
		if err := s.repos.Marketing.SaveQueue(ctx, q); err != nil {
			return nil, fmt.Errorf("save marketing queue: %w", err)
		}
		if err := s.appendLog(ctx, projectID, published); err != nil {
			return nil, err
		}
		s.log.Info().Str("project_id", projectID).Int("published", len(published)).Msg("Sweep published due items")
	}

	return &SweepResult{Published: len(published), Items: q.Items}, nil
}

func (s *MarketingSvc) loadQueue(ctx context.Context, projectID string) (*models.MarketingQueue, error) {
	q, err := s.repos.Marketing.GetQueue(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = &models.MarketingQueue{ProjectID: projectID, Items: []models.MarketingItem{}}
	}
	return q, nil
}

func (s *MarketingSvc) updateItem(ctx context.Context, projectID, itemID string, apply func(*models.MarketingItem) string) (*MarketingResult, error) {
	q, err := s.loadQueue(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for i := range q.Items {
		if q.Items[i].ID != itemID {
			continue
		}
		if code := apply(&q.Items[i]); code != "" {
			return &MarketingResult{OK: false, Code: code, Item: &q.Items[i]}, nil
		}
		now := s.Now().UTC()
		q.Items[i].UpdatedAt = now
		q.UpdatedAt = now
		if err := s.repos.Marketing.SaveQueue(ctx, q); err != nil {
			return nil, fmt.Errorf("save marketing queue: %w", err)
		}
		return &MarketingResult{OK: true, Item: &q.Items[i]}, nil
	}
	return &MarketingResult{OK: false, Code: CodeNotFound}, nil
}

// appendLog prepends new entries and caps the log at the configured bound
func (s *MarketingSvc) appendLog(ctx context.Context, projectID string, entries []models.PublishLogEntry) error {
	l, err := s.repos.Marketing.GetLog(ctx, projectID)
	if err != nil {
		return err
	}
	if l == nil {
		l = &models.PublishLog{ProjectID: projectID}
	}
	l.Entries = append(entries, l.Entries...)
	if len(l.Entries) > s.cfg.PublishLogCap {
		l.Entries = l.Entries[:s.cfg.PublishLogCap]
	}
	if err := s.repos.Marketing.SaveLog(ctx, l); err != nil {
		return fmt.Errorf("save publish log: %w", err)
	}
	return nil
}
