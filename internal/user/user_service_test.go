package user_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go-hrdata/internal/department"
	"go-hrdata/internal/events"
	"go-hrdata/internal/job"
	"go-hrdata/internal/messaging/kafka"
	kafkaMock "go-hrdata/internal/messaging/kafka/mock"
	"go-hrdata/internal/shared/contextutil"
	"go-hrdata/internal/shared/request"
	"go-hrdata/internal/storage"
	"go-hrdata/internal/user"
	userMock "go-hrdata/internal/user/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type serviceDeps struct {
	sqlMock sqlmock.Sqlmock
	service user.Service
	repo    *userMock.MockRepository
	outbox  *kafkaMock.MockOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	repo := userMock.NewMockRepository(ctrl)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)

	return &serviceDeps{
		sqlMock: sqlMock,
		service: user.NewService(db, repo, outbox, zap.NewNop()),
		repo:    repo,
		outbox:  outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

type outboxMatcher struct {
	eventType string
	recordID  int64
	years     []int
}

func (m outboxMatcher) Matches(x any) bool {
	e, ok := x.(kafka.OutboxEvent)
	if !ok {
		return false
	}
	var ev events.RecordEvent
	if err := json.Unmarshal(e.Payload, &ev); err != nil {
		return false
	}
	return e.EventType == m.eventType &&
		e.Topic == events.LifecycleTopic(user.Table) &&
		ev.RecordID == m.recordID &&
		assert.ObjectsAreEqual(m.years, ev.HireYears)
}

func (m outboxMatcher) String() string {
	return fmt.Sprintf("outbox event %s for user %d years %v", m.eventType, m.recordID, m.years)
}

func hiredAt(year int) *time.Time {
	t := time.Date(year, 4, 15, 8, 0, 0, 0, time.UTC)
	return &t
}

func activeUser(id int64, name string, year int) *user.User {
	return &user.User{
		Base:         storage.Base{ID: id, IsActive: true},
		Name:         name,
		Datetime:     hiredAt(year),
		JobID:        1,
		DepartmentID: 2,
	}
}

func refsFor(jobID, deptID int64) user.References {
	return user.References{
		Jobs: map[int64]job.Job{
			jobID: {Base: storage.Base{ID: jobID, IsActive: true}, Job: "Engineer"},
		},
		Departments: map[int64]department.Department{
			deptID: {Base: storage.Base{ID: deptID, IsActive: true}, Department: "R&D"},
		},
	}
}

func TestUserService_Upsert(t *testing.T) {
	t.Run("success embeds references", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := contextutil.WithRequestID(context.Background(), "REQ-7")
		req := user.UpsertUserRequest{Name: "Ada", Datetime: hiredAt(2021), JobID: 1, DepartmentID: 2}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Upsert(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, u *user.User) (*user.User, error) {
				assert.Equal(t, "Ada", u.Name)
				assert.True(t, u.IsActive)
				return activeUser(8, u.Name, 2021), nil
			})
		deps.repo.EXPECT().FindReferences(ctx, gomock.Len(1)).Return(refsFor(1, 2), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, outboxMatcher{eventType: events.RecordUpserted, recordID: 8, years: []int{2021}}).
			Return(nil)

		resp, err := deps.service.Upsert(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, int64(8), resp.ID)
		require.NotNil(t, resp.Job)
		assert.Equal(t, "Engineer", resp.Job.Job)
		require.NotNil(t, resp.Department)
		assert.Equal(t, "R&D", resp.Department.Department)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("bad foreign key rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Upsert(ctx, gomock.Any()).Return(nil, storage.BadForeignKey(user.FieldJobID, 1))

		_, err := deps.service.Upsert(ctx, user.UpsertUserRequest{Name: "Ada", Datetime: hiredAt(2021), JobID: 1, DepartmentID: 2})

		assert.ErrorIs(t, err, storage.ErrBadForeignKey)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestUserService_GetByID(t *testing.T) {
	t.Run("inactive job is omitted", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		deps.repo.EXPECT().FindByID(ctx, int64(3), true).Return(activeUser(3, "Bob", 2020), nil)
		deps.repo.EXPECT().FindReferences(ctx, gomock.Any()).Return(user.References{
			Departments: refsFor(1, 2).Departments,
		}, nil)

		resp, err := deps.service.GetByID(ctx, 3)

		require.NoError(t, err)
		assert.Nil(t, resp.Job)
		assert.NotNil(t, resp.Department)
		assert.Equal(t, int64(1), resp.JobID)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		deps.repo.EXPECT().FindByID(ctx, int64(4), true).Return(nil, storage.NotFound(user.Table, 4))

		_, err := deps.service.GetByID(ctx, 4)

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUserService_GetAll(t *testing.T) {
	deps := setupServiceTest(t)
	ctx := context.Background()

	users := []user.User{*activeUser(1, "Ada", 2021), *activeUser(2, "Bob", 2021)}
	deps.repo.EXPECT().FindAll(ctx, 0, 2, true).Return(users, nil)
	deps.repo.EXPECT().Count(ctx, true).Return(int64(5), nil)
	deps.repo.EXPECT().FindReferences(ctx, users).Return(refsFor(1, 2), nil)

	resp, total, err := deps.service.GetAll(ctx, request.ListParams{Offset: 0, Limit: 2, Active: true})

	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, resp, 2)
	assert.NotNil(t, resp[1].Job)
}

func TestUserService_Update(t *testing.T) {
	t.Run("event carries old and new hire years", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()
		moved := hiredAt(2023)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, int64(6), true).Return(activeUser(6, "Ada", 2021), nil)
		deps.repo.EXPECT().
			Update(ctx, int64(6), map[string]any{"datetime": *moved}).
			Return(activeUser(6, "Ada", 2023), nil)
		deps.repo.EXPECT().FindReferences(ctx, gomock.Any()).Return(refsFor(1, 2), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, outboxMatcher{eventType: events.RecordUpdated, recordID: 6, years: []int{2021, 2023}}).
			Return(nil)

		resp, err := deps.service.Update(ctx, 6, user.UpdateUserRequest{Datetime: moved})

		require.NoError(t, err)
		assert.Equal(t, 2023, resp.Datetime.Year())
	})

	t.Run("reference fields are passed through", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()
		jobID := int64(9)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, int64(6), true).Return(activeUser(6, "Ada", 2021), nil)
		deps.repo.EXPECT().
			Update(ctx, int64(6), map[string]any{user.FieldJobID: int64(9)}).
			Return(nil, storage.BadForeignKey(user.FieldJobID, 9))

		_, err := deps.service.Update(ctx, 6, user.UpdateUserRequest{JobID: &jobID})

		assert.ErrorIs(t, err, storage.ErrBadForeignKey)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("inactive user", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, int64(6), true).Return(nil, storage.NotActive(user.Table, 6))

		_, err := deps.service.Update(ctx, 6, user.UpdateUserRequest{})

		assert.ErrorIs(t, err, storage.ErrNotActive)
	})
}

func TestUserService_Delete(t *testing.T) {
	cases := []struct {
		name      string
		soft      bool
		eventType string
	}{
		{"soft", true, events.RecordDeleted},
		{"hard", false, events.RecordPurged},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := setupServiceTest(t)
			ctx := context.Background()

			expectTx(t, deps.sqlMock, true)
			deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
			deps.repo.EXPECT().FindByID(ctx, int64(4), false).Return(activeUser(4, "Cy", 2019), nil)
			deps.repo.EXPECT().Delete(ctx, int64(4), tc.soft).Return(nil)
			deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
			deps.outbox.EXPECT().
				Create(ctx, outboxMatcher{eventType: tc.eventType, recordID: 4, years: []int{2019}}).
				Return(nil)

			require.NoError(t, deps.service.Delete(ctx, 4, tc.soft))
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestUserService_BulkUpsert(t *testing.T) {
	deps := setupServiceTest(t)
	ctx := context.Background()

	expectTx(t, deps.sqlMock, true)
	deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
	deps.repo.EXPECT().
		BulkUpsert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, rows []user.User) (int, error) {
			require.Len(t, rows, 3)
			return len(rows), nil
		})
	deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
	deps.outbox.EXPECT().
		Create(ctx, outboxMatcher{eventType: events.RecordBulkUpserted, years: []int{2020, 2022}}).
		Return(nil)

	n, err := deps.service.BulkUpsert(ctx, user.BulkUserRequest{Users: []user.UpsertUserRequest{
		{Name: "A", Datetime: hiredAt(2022), JobID: 1, DepartmentID: 2},
		{Name: "B", Datetime: hiredAt(2020), JobID: 1, DepartmentID: 2},
		{Name: "C", Datetime: hiredAt(2022), JobID: 1, DepartmentID: 2},
	}})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
