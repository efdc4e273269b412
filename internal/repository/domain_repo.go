package repository

import (
	"context"

	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/store"
)

type domainRepo struct {
	store store.RecordStore
}

// NewDomainRepo creates a new DomainRepository
func NewDomainRepo(rs store.RecordStore) DomainRepository {
	return &domainRepo{store: rs}
}

func (r *domainRepo) Save(ctx context.Context, d *models.Domain) error {
	d.Schema = models.SchemaVersion
	return r.store.Set(ctx, store.DomainKey(d.ProjectID), d)
}

func (r *domainRepo) Get(ctx context.Context, projectID string) (*models.Domain, error) {
	key := store.DomainKey(projectID)
	var d models.Domain
	found, err := r.store.Get(ctx, key, &d)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := checkSchema(key, d.Schema); err != nil {
		return nil, err
	}
	return &d, nil
}
