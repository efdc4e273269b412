package repository

import (
	"context"

	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/store"
)

type versionRepo struct {
	store store.RecordStore
}

// NewVersionRepo creates a new VersionRepository
func NewVersionRepo(rs store.RecordStore) VersionRepository {
	return &versionRepo{store: rs}
}

func (r *versionRepo) SaveVersion(ctx context.Context, v *models.Version) error {
	v.Schema = models.SchemaVersion
	return r.store.Set(ctx, store.VersionKey(v.ID), v)
}

func (r *versionRepo) GetByID(ctx context.Context, id string) (*models.Version, error) {
	key := store.VersionKey(id)
	var v models.Version
	found, err := r.store.Get(ctx, key, &v)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := checkSchema(key, v.Schema); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *versionRepo) PrependIndex(ctx context.Context, projectID, versionID string) error {
	idxKey := store.VersionIndexKey(projectID)
	var idx models.VersionIndex
	found, err := r.store.Get(ctx, idxKey, &idx)
	if err != nil {
		return err
	}
	if !found {
		idx = models.VersionIndex{ProjectID: projectID}
	}
	idx.Schema = models.SchemaVersion
	idx.IDs = append([]string{versionID}, idx.IDs...)
	return r.store.Set(ctx, idxKey, &idx)
}

func (r *versionRepo) ListIDs(ctx context.Context, projectID string) ([]string, error) {
	var idx models.VersionIndex
	found, err := r.store.Get(ctx, store.VersionIndexKey(projectID), &idx)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}
	return idx.IDs, nil
}

func (r *versionRepo) SetLatest(ctx context.Context, pointer *models.LatestPointer) error {
	pointer.Schema = models.SchemaVersion
	return r.store.Set(ctx, store.LatestKey(pointer.ProjectID), pointer)
}

func (r *versionRepo) GetLatest(ctx context.Context, projectID string) (*models.LatestPointer, error) {
	key := store.LatestKey(projectID)
	var p models.LatestPointer
	found, err := r.store.Get(ctx, key, &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := checkSchema(key, p.Schema); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *versionRepo) SetPublished(ctx context.Context, slot *models.PublishedSlot) error {
	slot.Schema = models.SchemaVersion
	return r.store.Set(ctx, store.PublishedKey(slot.ProjectID), slot)
}

func (r *versionRepo) GetPublished(ctx context.Context, projectID string) (*models.PublishedSlot, error) {
	key := store.PublishedKey(projectID)
	var s models.PublishedSlot
	found, err := r.store.Get(ctx, key, &s)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := checkSchema(key, s.Schema); err != nil {
		return nil, err
	}
	return &s, nil
}
