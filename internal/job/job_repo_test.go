package job_test

import (
	"context"
	"fmt"
	"testing"

	"go-hrdata/internal/job"
	"go-hrdata/internal/storage"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&job.Job{}))
	return db
}

func TestJobRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := job.NewRepository(openRepoDB(t))

	eng, err := repo.Upsert(ctx, &job.Job{Base: storage.Base{IsActive: true}, Job: "Engineer"})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, &job.Job{Base: storage.Base{IsActive: true}, Job: "Recruiter"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, eng.ID, true))

	active, err := repo.FindAll(ctx, 0, 10, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Recruiter", active[0].Job)

	inactive, err := repo.FindAll(ctx, 0, 10, false)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, eng.ID, inactive[0].ID)

	n, err := repo.BulkUpsert(ctx, []job.Job{
		{Base: storage.Base{IsActive: true}, Job: "Engineer"},
		{Base: storage.Base{IsActive: true}, Job: "Counsel"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := repo.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	got, err := repo.FindByID(ctx, eng.ID, true)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt)
}
