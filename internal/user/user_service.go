package user

import (
	"context"
	"sort"
	"time"

	"go-hrdata/internal/department"
	"go-hrdata/internal/events"
	"go-hrdata/internal/job"
	"go-hrdata/internal/messaging/kafka"
	"go-hrdata/internal/shared/contextutil"
	"go-hrdata/internal/shared/request"
	"go-hrdata/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Upsert(ctx context.Context, req UpsertUserRequest) (UserResponse, error)
	GetByID(ctx context.Context, id int64) (UserResponse, error)
	GetAll(ctx context.Context, params request.ListParams) ([]UserResponse, int64, error)
	Update(ctx context.Context, id int64, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, id int64, soft bool) error
	BulkUpsert(ctx context.Context, req BulkUserRequest) (int, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

// NewService wires the user service. outbox may be nil.
func NewService(db *gorm.DB, repo Repository, outbox kafka.OutboxRepository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		logger: logger.Named("user.service"),
	}
}

func (s *service) Upsert(ctx context.Context, req UpsertUserRequest) (UserResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("upsert user requested",
		zap.String("request_id", rid),
		zap.String("name", req.Name),
		zap.Int64("job_id", req.JobID),
		zap.Int64("department_id", req.DepartmentID),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("upsert user begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return UserResponse{}, tx.Error
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)
	u, err := repo.Upsert(ctx, &User{
		Base:         storage.Base{IsActive: true},
		Name:         req.Name,
		Datetime:     req.Datetime,
		JobID:        req.JobID,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		s.logger.Warn("upsert user failed", zap.String("request_id", rid), zap.Error(err))
		return UserResponse{}, err
	}

	refs, err := repo.FindReferences(ctx, []User{*u})
	if err != nil {
		s.logger.Error("upsert user load references failed", zap.Int64("user_id", u.ID), zap.Error(err))
		return UserResponse{}, err
	}

	if err := s.appendEvent(ctx, tx, events.RecordUpserted, u.ID, 0, hireYears(*u)); err != nil {
		s.logger.Error("upsert user outbox persist failed", zap.Int64("user_id", u.ID), zap.Error(err))
		return UserResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("upsert user commit failed", zap.String("request_id", rid), zap.Error(err))
		return UserResponse{}, err
	}

	s.logger.Info("upsert user success",
		zap.String("request_id", rid),
		zap.Int64("user_id", u.ID),
	)
	return ToResponse(*u, refs), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (UserResponse, error) {
	s.logger.Debug("get user by id requested", zap.Int64("user_id", id))

	u, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		s.logger.Warn("get user by id failed", zap.Int64("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	refs, err := s.repo.FindReferences(ctx, []User{*u})
	if err != nil {
		s.logger.Error("get user references failed", zap.Int64("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}
	return ToResponse(*u, refs), nil
}

func (s *service) GetAll(ctx context.Context, params request.ListParams) ([]UserResponse, int64, error) {
	s.logger.Debug("get all users requested",
		zap.Int("offset", params.Offset),
		zap.Int("limit", params.Limit),
		zap.Bool("active", params.Active),
	)

	users, err := s.repo.FindAll(ctx, params.Offset, params.Limit, params.Active)
	if err != nil {
		s.logger.Error("get all users failed", zap.Error(err))
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, params.Active)
	if err != nil {
		s.logger.Error("count users failed", zap.Error(err))
		return nil, 0, err
	}
	refs, err := s.repo.FindReferences(ctx, users)
	if err != nil {
		s.logger.Error("get all users references failed", zap.Error(err))
		return nil, 0, err
	}

	res := make([]UserResponse, len(users))
	for i, u := range users {
		res[i] = ToResponse(u, refs)
	}
	return res, total, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateUserRequest) (UserResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update user requested",
		zap.String("request_id", rid),
		zap.Int64("user_id", id),
	)

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Datetime != nil {
		fields["datetime"] = *req.Datetime
	}
	if req.JobID != nil {
		fields[FieldJobID] = *req.JobID
	}
	if req.DepartmentID != nil {
		fields[FieldDepartmentID] = *req.DepartmentID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("update user begin tx failed", zap.Error(tx.Error))
		return UserResponse{}, tx.Error
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)
	before, err := repo.FindByID(ctx, id, true)
	if err != nil {
		s.logger.Warn("update user failed", zap.Int64("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	u, err := repo.Update(ctx, id, fields)
	if err != nil {
		s.logger.Warn("update user failed", zap.Int64("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	refs, err := repo.FindReferences(ctx, []User{*u})
	if err != nil {
		s.logger.Error("update user load references failed", zap.Int64("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	if err := s.appendEvent(ctx, tx, events.RecordUpdated, id, 0, hireYears(*before, *u)); err != nil {
		s.logger.Error("update user outbox persist failed", zap.Int64("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("update user commit failed", zap.Error(err))
		return UserResponse{}, err
	}

	s.logger.Info("update user success", zap.Int64("user_id", id))
	return ToResponse(*u, refs), nil
}

func (s *service) Delete(ctx context.Context, id int64, soft bool) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete user requested",
		zap.String("request_id", rid),
		zap.Int64("user_id", id),
		zap.Bool("soft", soft),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("delete user begin tx failed", zap.Error(tx.Error))
		return tx.Error
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)
	before, err := repo.FindByID(ctx, id, false)
	if err != nil {
		s.logger.Warn("delete user failed", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	if err := repo.Delete(ctx, id, soft); err != nil {
		s.logger.Warn("delete user failed", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	eventType := events.RecordDeleted
	if !soft {
		eventType = events.RecordPurged
	}
	if err := s.appendEvent(ctx, tx, eventType, id, 0, hireYears(*before)); err != nil {
		s.logger.Error("delete user outbox persist failed", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("delete user commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("delete user success", zap.Int64("user_id", id), zap.Bool("soft", soft))
	return nil
}

func (s *service) BulkUpsert(ctx context.Context, req BulkUserRequest) (int, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("bulk upsert users requested",
		zap.String("request_id", rid),
		zap.Int("count", len(req.Users)),
	)

	rows := make([]User, len(req.Users))
	for i, u := range req.Users {
		rows[i] = User{
			Base:         storage.Base{IsActive: true},
			Name:         u.Name,
			Datetime:     u.Datetime,
			JobID:        u.JobID,
			DepartmentID: u.DepartmentID,
		}
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("bulk upsert users begin tx failed", zap.Error(tx.Error))
		return 0, tx.Error
	}
	defer tx.Rollback()

	n, err := s.repo.WithTx(tx).BulkUpsert(ctx, rows)
	if err != nil {
		s.logger.Warn("bulk upsert users failed", zap.String("request_id", rid), zap.Error(err))
		return 0, err
	}

	if err := s.appendEvent(ctx, tx, events.RecordBulkUpserted, 0, n, hireYears(rows...)); err != nil {
		s.logger.Error("bulk upsert users outbox persist failed", zap.Error(err))
		return 0, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("bulk upsert users commit failed", zap.Error(err))
		return 0, err
	}

	s.logger.Info("bulk upsert users success", zap.String("request_id", rid), zap.Int("inserted", n))
	return n, nil
}

func (s *service) appendEvent(ctx context.Context, tx *gorm.DB, eventType string, id int64, count int, years []int) error {
	return kafka.AppendRecordEvent(ctx, s.outbox, tx, events.RecordEvent{
		EventType:  eventType,
		Table:      Table,
		RecordID:   id,
		Count:      count,
		RequestID:  contextutil.GetRequestID(ctx),
		HireYears:  years,
		OccurredAt: time.Now().UTC(),
	})
}

// hireYears returns the distinct known hire years of users, ascending.
func hireYears(users ...User) []int {
	seen := map[int]struct{}{}
	years := []int{}
	for _, u := range users {
		y := u.HireYear()
		if y == 0 {
			continue
		}
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func ToResponse(u User, refs References) UserResponse {
	res := UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Datetime:     u.Datetime,
		JobID:        u.JobID,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		DeletedAt:    u.DeletedAt,
	}
	if j, ok := refs.Jobs[u.JobID]; ok {
		jr := job.ToResponse(j)
		res.Job = &jr
	}
	if d, ok := refs.Departments[u.DepartmentID]; ok {
		dr := department.ToResponse(d)
		res.Department = &dr
	}
	return res
}
