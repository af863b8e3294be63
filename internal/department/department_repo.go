package department

import (
	"context"

	"go-hrdata/internal/storage"

	"gorm.io/gorm"
)

//go:generate mockgen -source=department_repo.go -destination=mock/department_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id int64, activeOnly bool) (*Department, error)
	Upsert(ctx context.Context, dept *Department) (*Department, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*Department, error)
	Delete(ctx context.Context, id int64, soft bool) error
	FindAll(ctx context.Context, offset, limit int, active bool) ([]Department, error)
	Count(ctx context.Context, active bool) (int64, error)
	BulkUpsert(ctx context.Context, depts []Department) (int, error)
}

type repository struct {
	store *storage.Store[Department]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{store: storage.NewStore[Department](db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{store: r.store.WithTx(tx)}
}

func (r *repository) FindByID(ctx context.Context, id int64, activeOnly bool) (*Department, error) {
	return r.store.Read(ctx, id, activeOnly)
}

func (r *repository) Upsert(ctx context.Context, dept *Department) (*Department, error) {
	return r.store.Upsert(ctx, dept)
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) (*Department, error) {
	return r.store.Update(ctx, id, fields)
}

func (r *repository) Delete(ctx context.Context, id int64, soft bool) error {
	return r.store.Delete(ctx, id, soft)
}

func (r *repository) FindAll(ctx context.Context, offset, limit int, active bool) ([]Department, error) {
	return r.store.All(ctx, offset, limit, storage.Filter{storage.ColumnIsActive: active})
}

func (r *repository) Count(ctx context.Context, active bool) (int64, error) {
	return r.store.Count(ctx, storage.Filter{storage.ColumnIsActive: active})
}

func (r *repository) BulkUpsert(ctx context.Context, depts []Department) (int, error) {
	return r.store.BulkUpsert(ctx, depts)
}
