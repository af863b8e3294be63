package department

import (
	"context"
	"time"

	"go-hrdata/internal/events"
	"go-hrdata/internal/messaging/kafka"
	"go-hrdata/internal/shared/contextutil"
	"go-hrdata/internal/shared/request"
	"go-hrdata/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=department_service.go -destination=mock/department_service_mock.go -package=mock
type Service interface {
	Upsert(ctx context.Context, req UpsertDepartmentRequest) (DepartmentResponse, error)
	GetByID(ctx context.Context, id int64) (DepartmentResponse, error)
	GetAll(ctx context.Context, params request.ListParams) ([]DepartmentResponse, int64, error)
	Update(ctx context.Context, id int64, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, id int64, soft bool) error
	BulkUpsert(ctx context.Context, req BulkDepartmentRequest) (int, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

// NewService wires the department service. outbox may be nil.
func NewService(db *gorm.DB, repo Repository, outbox kafka.OutboxRepository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		logger: logger.Named("department.service"),
	}
}

func (s *service) Upsert(ctx context.Context, req UpsertDepartmentRequest) (DepartmentResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("upsert department requested",
		zap.String("request_id", rid),
		zap.String("department", req.Department),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("upsert department begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return DepartmentResponse{}, tx.Error
	}
	defer tx.Rollback()

	dept, err := s.repo.WithTx(tx).Upsert(ctx, &Department{
		Base:       storage.Base{IsActive: true},
		Department: req.Department,
	})
	if err != nil {
		s.logger.Warn("upsert department failed", zap.String("request_id", rid), zap.Error(err))
		return DepartmentResponse{}, err
	}

	if err := s.appendEvent(ctx, tx, events.RecordUpserted, dept.ID, 0); err != nil {
		s.logger.Error("upsert department outbox persist failed", zap.Int64("department_id", dept.ID), zap.Error(err))
		return DepartmentResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("upsert department commit failed", zap.String("request_id", rid), zap.Error(err))
		return DepartmentResponse{}, err
	}

	s.logger.Info("upsert department success",
		zap.String("request_id", rid),
		zap.Int64("department_id", dept.ID),
	)
	return ToResponse(*dept), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (DepartmentResponse, error) {
	s.logger.Debug("get department by id requested", zap.Int64("department_id", id))

	dept, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		s.logger.Warn("get department by id failed", zap.Int64("department_id", id), zap.Error(err))
		return DepartmentResponse{}, err
	}
	return ToResponse(*dept), nil
}

func (s *service) GetAll(ctx context.Context, params request.ListParams) ([]DepartmentResponse, int64, error) {
	s.logger.Debug("get all departments requested",
		zap.Int("offset", params.Offset),
		zap.Int("limit", params.Limit),
		zap.Bool("active", params.Active),
	)

	depts, err := s.repo.FindAll(ctx, params.Offset, params.Limit, params.Active)
	if err != nil {
		s.logger.Error("get all departments failed", zap.Error(err))
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, params.Active)
	if err != nil {
		s.logger.Error("count departments failed", zap.Error(err))
		return nil, 0, err
	}
	return mapToListResponse(depts), total, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update department requested",
		zap.String("request_id", rid),
		zap.Int64("department_id", id),
	)

	fields := map[string]any{}
	if req.Department != nil {
		fields["department"] = *req.Department
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("update department begin tx failed", zap.Error(tx.Error))
		return DepartmentResponse{}, tx.Error
	}
	defer tx.Rollback()

	dept, err := s.repo.WithTx(tx).Update(ctx, id, fields)
	if err != nil {
		s.logger.Warn("update department failed", zap.Int64("department_id", id), zap.Error(err))
		return DepartmentResponse{}, err
	}

	if err := s.appendEvent(ctx, tx, events.RecordUpdated, id, 0); err != nil {
		s.logger.Error("update department outbox persist failed", zap.Int64("department_id", id), zap.Error(err))
		return DepartmentResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("update department commit failed", zap.Error(err))
		return DepartmentResponse{}, err
	}

	s.logger.Info("update department success", zap.Int64("department_id", id))
	return ToResponse(*dept), nil
}

func (s *service) Delete(ctx context.Context, id int64, soft bool) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete department requested",
		zap.String("request_id", rid),
		zap.Int64("department_id", id),
		zap.Bool("soft", soft),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("delete department begin tx failed", zap.Error(tx.Error))
		return tx.Error
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id, soft); err != nil {
		s.logger.Warn("delete department failed", zap.Int64("department_id", id), zap.Error(err))
		return err
	}

	eventType := events.RecordDeleted
	if !soft {
		eventType = events.RecordPurged
	}
	if err := s.appendEvent(ctx, tx, eventType, id, 0); err != nil {
		s.logger.Error("delete department outbox persist failed", zap.Int64("department_id", id), zap.Error(err))
		return err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("delete department commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("delete department success", zap.Int64("department_id", id), zap.Bool("soft", soft))
	return nil
}

func (s *service) BulkUpsert(ctx context.Context, req BulkDepartmentRequest) (int, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("bulk upsert departments requested",
		zap.String("request_id", rid),
		zap.Int("count", len(req.Departments)),
	)

	rows := make([]Department, len(req.Departments))
	for i, d := range req.Departments {
		rows[i] = Department{Base: storage.Base{IsActive: true}, Department: d.Department}
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("bulk upsert departments begin tx failed", zap.Error(tx.Error))
		return 0, tx.Error
	}
	defer tx.Rollback()

	n, err := s.repo.WithTx(tx).BulkUpsert(ctx, rows)
	if err != nil {
		s.logger.Warn("bulk upsert departments failed", zap.String("request_id", rid), zap.Error(err))
		return 0, err
	}

	if err := s.appendEvent(ctx, tx, events.RecordBulkUpserted, 0, n); err != nil {
		s.logger.Error("bulk upsert departments outbox persist failed", zap.Error(err))
		return 0, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("bulk upsert departments commit failed", zap.Error(err))
		return 0, err
	}

	s.logger.Info("bulk upsert departments success", zap.String("request_id", rid), zap.Int("inserted", n))
	return n, nil
}

func (s *service) appendEvent(ctx context.Context, tx *gorm.DB, eventType string, id int64, count int) error {
	return kafka.AppendRecordEvent(ctx, s.outbox, tx, events.RecordEvent{
		EventType:  eventType,
		Table:      Table,
		RecordID:   id,
		Count:      count,
		RequestID:  contextutil.GetRequestID(ctx),
		OccurredAt: time.Now().UTC(),
	})
}

// ToResponse is also used to embed the record in user responses.
func ToResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:         d.ID,
		Department: d.Department,
		IsActive:   d.IsActive,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		DeletedAt:  d.DeletedAt,
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = ToResponse(d)
	}
	return res
}
