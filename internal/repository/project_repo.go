package repository

import (
	"context"

	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/store"
)

type projectRepo struct {
	store store.RecordStore
}

// NewProjectRepo creates a new ProjectRepository
func NewProjectRepo(rs store.RecordStore) ProjectRepository {
	return &projectRepo{store: rs}
}

func (r *projectRepo) Save(ctx context.Context, project *models.Project) error {
	project.Schema = models.SchemaVersion
	return r.store.Set(ctx, store.ProjectKey(project.ID), project)
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	key := store.ProjectKey(id)
	var p models.Project
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

func (r *projectRepo) CollectDependentKeys(ctx context.Context, projectID string) ([]string, error) {
	// Every project-scoped record shares the project prefix.
	keys, err := r.store.ListKeys(ctx, store.ProjectPrefix(projectID))
	if err != nil {
		return nil, err
	}

	// Runs and their artifacts live outside the prefix, addressed by id.
	var runIdx models.RunIndex
	if found, err := r.store.Get(ctx, store.RunIndexKey(projectID), &runIdx); err != nil {
		return nil, err
	} else if found {
		for _, id := range runIdx.IDs {
			keys = append(keys, store.RunKey(id))
			var run models.Run
			if ok, err := r.store.Get(ctx, store.RunKey(id), &run); err == nil && ok && run.ArtifactRef != "" {
				keys = append(keys, store.ContentKey(run.ArtifactRef))
			}
		}
	}

	// Same for versions and the content records they reference.
	var verIdx models.VersionIndex
	if found, err := r.store.Get(ctx, store.VersionIndexKey(projectID), &verIdx); err != nil {
		return nil, err
	} else if found {
		for _, id := range verIdx.IDs {
			keys = append(keys, store.VersionKey(id))
			var v models.Version
			if ok, err := r.store.Get(ctx, store.VersionKey(id), &v); err == nil && ok && v.ContentRef != "" {
				keys = append(keys, store.ContentKey(v.ContentRef))
			}
		}
	}

	return dedupe(keys), nil
}

func (r *projectRepo) DeleteKey(ctx context.Context, key string) error {
	return r.store.Delete(ctx, key)
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
