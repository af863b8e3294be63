package report

import (
	"context"

	"go-hrdata/internal/storage"
	"go-hrdata/internal/user"

	"gorm.io/gorm"
)

const quarterlyHiresSQL = `
SELECT
	d.department AS department_name,
	j.job AS job_title,
	CAST(EXTRACT(QUARTER FROM u.datetime) AS INTEGER) AS quarter,
	COUNT(*) AS hired
FROM "user" u
	INNER JOIN department d ON d.id = u.department_id
	INNER JOIN job j ON j.id = u.job_id
WHERE u.is_active AND EXTRACT(YEAR FROM u.datetime) = ?
GROUP BY d.department, j.job, EXTRACT(QUARTER FROM u.datetime)
ORDER BY d.department, j.job, EXTRACT(QUARTER FROM u.datetime)`

const departmentHiresSQL = `
SELECT d.id AS id, d.department AS department, COUNT(*) AS hired
FROM "user" u
	INNER JOIN department d ON d.id = u.department_id
WHERE u.is_active AND EXTRACT(YEAR FROM u.datetime) = ?
GROUP BY d.id, d.department
ORDER BY d.id`

//go:generate mockgen -source=report_repo.go -destination=mock/report_repo_mock.go -package=mock
type Repository interface {
	QuarterlyHires(ctx context.Context, year int) ([]QuarterlyCount, error)
	DepartmentHires(ctx context.Context, year int) ([]DepartmentHire, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) QuarterlyHires(ctx context.Context, year int) ([]QuarterlyCount, error) {
	var rows []QuarterlyCount
	if err := r.db.WithContext(ctx).Raw(quarterlyHiresSQL, year).Scan(&rows).Error; err != nil {
		return nil, storage.Classify(err, user.Table)
	}
	return rows, nil
}

func (r *repository) DepartmentHires(ctx context.Context, year int) ([]DepartmentHire, error) {
	var rows []DepartmentHire
	if err := r.db.WithContext(ctx).Raw(departmentHiresSQL, year).Scan(&rows).Error; err != nil {
		return nil, storage.Classify(err, user.Table)
	}
	return rows, nil
}
