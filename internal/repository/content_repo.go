package repository

import (
	"context"

	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/store"
)

type contentRepo struct {
	store store.RecordStore
}

// NewContentRepo creates a new ContentRepository
func NewContentRepo(rs store.RecordStore) ContentRepository {
	return &contentRepo{store: rs}
}

func (r *contentRepo) Save(ctx context.Context, rec *models.ContentRecord) error {
	rec.Schema = models.SchemaVersion
	return r.store.Set(ctx, store.ContentKey(rec.Ref), rec)
}

func (r *contentRepo) Get(ctx context.Context, ref string) (*models.ContentRecord, error) {
	key := store.ContentKey(ref)
	var rec models.ContentRecord
	found, err := r.store.Get(ctx, key, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := checkSchema(key, rec.Schema); err != nil {
		return nil, err
	}
	return &rec, nil
}
