package repository

import (
	"context"

	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/store"
)

type runRepo struct {
	store store.RecordStore
}

// NewRunRepo creates a new RunRepository
func NewRunRepo(rs store.RecordStore) RunRepository {
	return &runRepo{store: rs}
}

// Create writes the run record and prepends its id to the project's run
// index. The record is written first so a crash between the two leaves an
// addressable run that is simply not listed yet.
func (r *runRepo) Create(ctx context.Context, run *models.Run) error {
	run.Schema = models.SchemaVersion
	if err := r.store.Set(ctx, store.RunKey(run.ID), run); err != nil {
		return err
	}

	idxKey := store.RunIndexKey(run.ProjectID)
	var idx models.RunIndex
	found, err := r.store.Get(ctx, idxKey, &idx)
	if err != nil {
		return err
	}
	if !found {
		idx = models.RunIndex{ProjectID: run.ProjectID}
	}
	idx.Schema = models.SchemaVersion
	idx.IDs = append([]string{run.ID}, idx.IDs...)
	return r.store.Set(ctx, idxKey, &idx)
}

func (r *runRepo) Update(ctx context.Context, run *models.Run) error {
	run.Schema = models.SchemaVersion
	return r.store.Set(ctx, store.RunKey(run.ID), run)
}

func (r *runRepo) GetByID(ctx context.Context, id string) (*models.Run, error) {
	key := store.RunKey(id)
	var run models.Run
	found, err := r.store.Get(ctx, key, &run)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := checkSchema(key, run.Schema); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runRepo) ListIDs(ctx context.Context, projectID string) ([]string, error) {
	var idx models.RunIndex
	found, err := r.store.Get(ctx, store.RunIndexKey(projectID), &idx)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}
	return idx.IDs, nil
}
