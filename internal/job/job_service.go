package job

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

//go:generate mockgen -source=job_service.go -destination=mock/job_service_mock.go -package=mock
type Service interface {
	Upsert(ctx context.Context, req UpsertJobRequest) (JobResponse, error)
	GetByID(ctx context.Context, id int64) (JobResponse, error)
	GetAll(ctx context.Context, params request.ListParams) ([]JobResponse, int64, error)
	Update(ctx context.Context, id int64, req UpdateJobRequest) (JobResponse, error)
	Delete(ctx context.Context, id int64, soft bool) error
	BulkUpsert(ctx context.Context, req BulkJobRequest) (int, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

// NewService wires the job service. outbox may be nil.
func NewService(db *gorm.DB, repo Repository, outbox kafka.OutboxRepository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		logger: logger.Named("job.service"),
	}
}

func (s *service) Upsert(ctx context.Context, req UpsertJobRequest) (JobResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("upsert job requested",
		zap.String("request_id", rid),
		zap.String("job", req.Job),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("upsert job begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return JobResponse{}, tx.Error
	}
	defer tx.Rollback()

	job, err := s.repo.WithTx(tx).Upsert(ctx, &Job{
		Base: storage.Base{IsActive: true},
		Job:  req.Job,
	})
	if err != nil {
		s.logger.Warn("upsert job failed", zap.String("request_id", rid), zap.Error(err))
		return JobResponse{}, err
	}

	if err := s.appendEvent(ctx, tx, events.RecordUpserted, job.ID, 0); err != nil {
		s.logger.Error("upsert job outbox persist failed", zap.Int64("job_id", job.ID), zap.Error(err))
		return JobResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("upsert job commit failed", zap.String("request_id", rid), zap.Error(err))
		return JobResponse{}, err
	}

	s.logger.Info("upsert job success",
		zap.String("request_id", rid),
		zap.Int64("job_id", job.ID),
	)
	return ToResponse(*job), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (JobResponse, error) {
	s.logger.Debug("get job by id requested", zap.Int64("job_id", id))

	job, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		s.logger.Warn("get job by id failed", zap.Int64("job_id", id), zap.Error(err))
		return JobResponse{}, err
	}
	return ToResponse(*job), nil
}

func (s *service) GetAll(ctx context.Context, params request.ListParams) ([]JobResponse, int64, error) {
	s.logger.Debug("get all jobs requested",
		zap.Int("offset", params.Offset),
		zap.Int("limit", params.Limit),
		zap.Bool("active", params.Active),
	)

	jobs, err := s.repo.FindAll(ctx, params.Offset, params.Limit, params.Active)
	if err != nil {
		s.logger.Error("get all jobs failed", zap.Error(err))
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, params.Active)
	if err != nil {
		s.logger.Error("count jobs failed", zap.Error(err))
		return nil, 0, err
	}
	return mapToListResponse(jobs), total, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateJobRequest) (JobResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update job requested",
		zap.String("request_id", rid),
		zap.Int64("job_id", id),
	)

	fields := map[string]any{}
	if req.Job != nil {
		fields["job"] = *req.Job
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("update job begin tx failed", zap.Error(tx.Error))
		return JobResponse{}, tx.Error
	}
	defer tx.Rollback()

	job, err := s.repo.WithTx(tx).Update(ctx, id, fields)
	if err != nil {
		s.logger.Warn("update job failed", zap.Int64("job_id", id), zap.Error(err))
		return JobResponse{}, err
	}

	if err := s.appendEvent(ctx, tx, events.RecordUpdated, id, 0); err != nil {
		s.logger.Error("update job outbox persist failed", zap.Int64("job_id", id), zap.Error(err))
		return JobResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("update job commit failed", zap.Error(err))
		return JobResponse{}, err
	}

	s.logger.Info("update job success", zap.Int64("job_id", id))
	return ToResponse(*job), nil
}

func (s *service) Delete(ctx context.Context, id int64, soft bool) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete job requested",
		zap.String("request_id", rid),
		zap.Int64("job_id", id),
		zap.Bool("soft", soft),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("delete job begin tx failed", zap.Error(tx.Error))
		return tx.Error
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id, soft); err != nil {
		s.logger.Warn("delete job failed", zap.Int64("job_id", id), zap.Error(err))
		return err
	}

	eventType := events.RecordDeleted
	if !soft {
		eventType = events.RecordPurged
	}
	if err := s.appendEvent(ctx, tx, eventType, id, 0); err != nil {
		s.logger.Error("delete job outbox persist failed", zap.Int64("job_id", id), zap.Error(err))
		return err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("delete job commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("delete job success", zap.Int64("job_id", id), zap.Bool("soft", soft))
	return nil
}

func (s *service) BulkUpsert(ctx context.Context, req BulkJobRequest) (int, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("bulk upsert jobs requested",
		zap.String("request_id", rid),
		zap.Int("count", len(req.Jobs)),
	)

	rows := make([]Job, len(req.Jobs))
	for i, j := range req.Jobs {
		rows[i] = Job{Base: storage.Base{IsActive: true}, Job: j.Job}
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("bulk upsert jobs begin tx failed", zap.Error(tx.Error))
		return 0, tx.Error
	}
	defer tx.Rollback()

	n, err := s.repo.WithTx(tx).BulkUpsert(ctx, rows)
	if err != nil {
		s.logger.Warn("bulk upsert jobs failed", zap.String("request_id", rid), zap.Error(err))
		return 0, err
	}

	if err := s.appendEvent(ctx, tx, events.RecordBulkUpserted, 0, n); err != nil {
		s.logger.Error("bulk upsert jobs outbox persist failed", zap.Error(err))
		return 0, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("bulk upsert jobs commit failed", zap.Error(err))
		return 0, err
	}

	s.logger.Info("bulk upsert jobs success", zap.String("request_id", rid), zap.Int("inserted", n))
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
func ToResponse(j Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		Job:       j.Job,
		IsActive:  j.IsActive,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		DeletedAt: j.DeletedAt,
	}
}

func mapToListResponse(jobs []Job) []JobResponse {
	res := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		res[i] = ToResponse(j)
	}
	return res
}
