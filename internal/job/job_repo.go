package job

import (
	"context"

	"go-hrdata/internal/storage"

	"gorm.io/gorm"
)

//go:generate mockgen -source=job_repo.go -destination=mock/job_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id int64, activeOnly bool) (*Job, error)
	Upsert(ctx context.Context, job *Job) (*Job, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*Job, error)
	Delete(ctx context.Context, id int64, soft bool) error
	FindAll(ctx context.Context, offset, limit int, active bool) ([]Job, error)
	Count(ctx context.Context, active bool) (int64, error)
	BulkUpsert(ctx context.Context, jobs []Job) (int, error)
}

type repository struct {
	store *storage.Store[Job]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{store: storage.NewStore[Job](db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{store: r.store.WithTx(tx)}
}

func (r *repository) FindByID(ctx context.Context, id int64, activeOnly bool) (*Job, error) {
	return r.store.Read(ctx, id, activeOnly)
}

func (r *repository) Upsert(ctx context.Context, job *Job) (*Job, error) {
	return r.store.Upsert(ctx, job)
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) (*Job, error) {
	return r.store.Update(ctx, id, fields)
}

func (r *repository) Delete(ctx context.Context, id int64, soft bool) error {
	return r.store.Delete(ctx, id, soft)
}

func (r *repository) FindAll(ctx context.Context, offset, limit int, active bool) ([]Job, error) {
	return r.store.All(ctx, offset, limit, storage.Filter{storage.ColumnIsActive: active})
}

func (r *repository) Count(ctx context.Context, active bool) (int64, error) {
	return r.store.Count(ctx, storage.Filter{storage.ColumnIsActive: active})
}

func (r *repository) BulkUpsert(ctx context.Context, jobs []Job) (int, error) {
	return r.store.BulkUpsert(ctx, jobs)
}
