package user

import (
	"context"
	"sort"

	"go-hrdata/internal/department"
	"go-hrdata/internal/job"
	"go-hrdata/internal/storage"

	"gorm.io/gorm"
)

const (
	FieldJobID        = "job_id"
	FieldDepartmentID = "department_id"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id int64, activeOnly bool) (*User, error)
	Upsert(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*User, error)
	Delete(ctx context.Context, id int64, soft bool) error
	FindAll(ctx context.Context, offset, limit int, active bool) ([]User, error)
	Count(ctx context.Context, active bool) (int64, error)
	BulkUpsert(ctx context.Context, users []User) (int, error)
	FindReferences(ctx context.Context, users []User) (References, error)
}

// References holds the active jobs and departments referenced by a set of
// users, keyed by id.
type References struct {
	Jobs        map[int64]job.Job
	Departments map[int64]department.Department
}

type repository struct {
	users       *storage.Store[User]
	jobs        *storage.Store[job.Job]
	departments *storage.Store[department.Department]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		users:       storage.NewStore[User](db),
		jobs:        storage.NewStore[job.Job](db),
		departments: storage.NewStore[department.Department](db),
	}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{
		users:       r.users.WithTx(tx),
		jobs:        r.jobs.WithTx(tx),
		departments: r.departments.WithTx(tx),
	}
}

func (r *repository) FindByID(ctx context.Context, id int64, activeOnly bool) (*User, error) {
	return r.users.Read(ctx, id, activeOnly)
}

func (r *repository) Upsert(ctx context.Context, u *User) (*User, error) {
	if err := r.checkReferences(ctx, []int64{u.JobID}, []int64{u.DepartmentID}); err != nil {
		return nil, err
	}
	return r.users.Upsert(ctx, u)
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) (*User, error) {
	var jobIDs, deptIDs []int64
	if v, ok := fields[FieldJobID].(int64); ok {
		jobIDs = append(jobIDs, v)
	}
	if v, ok := fields[FieldDepartmentID].(int64); ok {
		deptIDs = append(deptIDs, v)
	}
	if err := r.checkReferences(ctx, jobIDs, deptIDs); err != nil {
		return nil, err
	}
	return r.users.Update(ctx, id, fields)
}

func (r *repository) Delete(ctx context.Context, id int64, soft bool) error {
	return r.users.Delete(ctx, id, soft)
}

func (r *repository) FindAll(ctx context.Context, offset, limit int, active bool) ([]User, error) {
	return r.users.All(ctx, offset, limit, storage.Filter{storage.ColumnIsActive: active})
}

func (r *repository) Count(ctx context.Context, active bool) (int64, error) {
	return r.users.Count(ctx, storage.Filter{storage.ColumnIsActive: active})
}

// BulkUpsert checks every distinct reference of the batch once before
// writing any row.
func (r *repository) BulkUpsert(ctx context.Context, users []User) (int, error) {
	jobIDs := make([]int64, 0, len(users))
	deptIDs := make([]int64, 0, len(users))
	for _, u := range users {
		jobIDs = append(jobIDs, u.JobID)
		deptIDs = append(deptIDs, u.DepartmentID)
	}
	if err := r.checkReferences(ctx, jobIDs, deptIDs); err != nil {
		return 0, err
	}
	return r.users.BulkUpsert(ctx, users)
}

func (r *repository) FindReferences(ctx context.Context, users []User) (References, error) {
	refs := References{
		Jobs:        map[int64]job.Job{},
		Departments: map[int64]department.Department{},
	}
	if len(users) == 0 {
		return refs, nil
	}

	jobIDs := make([]int64, 0, len(users))
	deptIDs := make([]int64, 0, len(users))
	for _, u := range users {
		jobIDs = append(jobIDs, u.JobID)
		deptIDs = append(deptIDs, u.DepartmentID)
	}

	jobs, err := r.jobs.Filter(ctx, storage.Filter{storage.ColumnID: distinct(jobIDs)})
	if err != nil {
		return refs, err
	}
	for _, j := range jobs {
		refs.Jobs[j.ID] = j
	}

	depts, err := r.departments.Filter(ctx, storage.Filter{storage.ColumnID: distinct(deptIDs)})
	if err != nil {
		return refs, err
	}
	for _, d := range depts {
		refs.Departments[d.ID] = d
	}
	return refs, nil
}

// checkReferences fails with BadForeignKey on the lowest job or department
// id that has no active row.
func (r *repository) checkReferences(ctx context.Context, jobIDs, deptIDs []int64) error {
	if ids := distinct(jobIDs); len(ids) > 0 {
		jobs, err := r.jobs.Filter(ctx, storage.Filter{storage.ColumnID: ids})
		if err != nil {
			return err
		}
		found := make(map[int64]bool, len(jobs))
		for _, j := range jobs {
			found[j.ID] = true
		}
		if id, ok := firstMissing(ids, found); ok {
			return storage.BadForeignKey(FieldJobID, id)
		}
	}

	if ids := distinct(deptIDs); len(ids) > 0 {
		depts, err := r.departments.Filter(ctx, storage.Filter{storage.ColumnID: ids})
		if err != nil {
			return err
		}
		found := make(map[int64]bool, len(depts))
		for _, d := range depts {
			found[d.ID] = true
		}
		if id, ok := firstMissing(ids, found); ok {
			return storage.BadForeignKey(FieldDepartmentID, id)
		}
	}
	return nil
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func firstMissing(sorted []int64, found map[int64]bool) (int64, bool) {
	for _, id := range sorted {
		if !found[id] {
			return id, true
		}
	}
	return 0, false
}
