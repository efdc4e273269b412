package repository

import (
	"context"

	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/store"
)

type marketingRepo struct {
	store store.RecordStore
}

// NewMarketingRepo creates a new MarketingRepository
func NewMarketingRepo(rs store.RecordStore) MarketingRepository {
	return &marketingRepo{store: rs}
}

func (r *marketingRepo) GetQueue(ctx context.Context, projectID string) (*models.MarketingQueue, error) {
	key := store.MarketingKey(projectID)
	var q models.MarketingQueue
	found, err := r.store.Get(ctx, key, &q)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := checkSchema(key, q.Schema); err != nil {
		return nil, err
	}
	return &q, nil
}

// SaveQueue replaces the full item list in one store call
func (r *marketingRepo) SaveQueue(ctx context.Context, q *models.MarketingQueue) error {
	q.Schema = models.SchemaVersion
	return r.store.Set(ctx, store.MarketingKey(q.ProjectID), q)
}

func (r *marketingRepo) GetLog(ctx context.Context, projectID string) (*models.PublishLog, error) {
	key := store.MarketingLogKey(projectID)
	var l models.PublishLog
	found, err := r.store.Get(ctx, key, &l)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := checkSchema(key, l.Schema); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *marketingRepo) SaveLog(ctx context.Context, l *models.PublishLog) error {
	l.Schema = models.SchemaVersion
	return r.store.Set(ctx, store.MarketingLogKey(l.ProjectID), l)
}
