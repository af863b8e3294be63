package report_test

import (
	"context"
	"errors"
	"testing"

	"go-hrdata/internal/report"
	"go-hrdata/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (report.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return report.NewRepository(db), mock
}

func TestReportRepository_QuarterlyHires(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`(?s)EXTRACT\(QUARTER FROM u\.datetime\).+FROM "user" u.+WHERE u\.is_active AND EXTRACT\(YEAR FROM u\.datetime\) = \$1`).
		WithArgs(2021).
		WillReturnRows(sqlmock.NewRows([]string{"department_name", "job_title", "quarter", "hired"}).
			AddRow("R&D", "Engineer", 1, 4).
			AddRow("R&D", "Engineer", 3, 1))

	rows, err := repo.QuarterlyHires(context.Background(), 2021)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, report.QuarterlyCount{DepartmentName: "R&D", JobTitle: "Engineer", Quarter: 3, Hired: 1}, rows[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_DepartmentHires(t *testing.T) {
	t.Run("rows", func(t *testing.T) {
		repo, mock := setupRepo(t)

		mock.ExpectQuery(`SELECT d\.id AS id, d\.department AS department, COUNT\(\*\) AS hired`).
			WithArgs(2020).
			WillReturnRows(sqlmock.NewRows([]string{"id", "department", "hired"}).AddRow(7, "Ops", 3))

		rows, err := repo.DepartmentHires(context.Background(), 2020)

		require.NoError(t, err)
		assert.Equal(t, []report.DepartmentHire{{ID: 7, Department: "Ops", Hired: 3}}, rows)
	})

	t.Run("driver error is a database error", func(t *testing.T) {
		repo, mock := setupRepo(t)

		mock.ExpectQuery(`FROM "user" u`).WithArgs(2020).WillReturnError(errors.New("connection reset"))

		_, err := repo.DepartmentHires(context.Background(), 2020)

		assert.Equal(t, storage.KindDatabase, storage.KindOf(err))
	})
}
