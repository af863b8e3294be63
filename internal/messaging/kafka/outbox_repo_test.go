package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-hrdata/internal/events"
	"go-hrdata/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestNewRecordOutboxEvent(t *testing.T) {
	ev := events.RecordEvent{
		EventType:  events.RecordDeleted,
		Table:      "user",
		RecordID:   42,
		RequestID:  "rid-1",
		HireYears:  []int{2021},
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	out, err := kafka.NewRecordOutboxEvent(ev)
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "hrdata.user.lifecycle.v1", out.Topic)
	assert.Equal(t, "user:42", out.AggregateID)
	assert.Equal(t, kafka.OutboxStatusPending, out.Status)
	assert.NoError(t, kafka.ValidateOutboxEvent(out))

	var decoded events.RecordEvent
	require.NoError(t, json.Unmarshal(out.Payload, &decoded))
	assert.Equal(t, []int{2021}, decoded.HireYears)
}

func TestOutboxRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := kafka.NewOutboxRepository(db)

	event := kafka.OutboxEvent{
		ID: "8b0f", RequestID: "rid", AggregateType: "job", AggregateID: "job:1",
		EventType: "upserted", Topic: "hrdata.job.lifecycle.v1", Payload: []byte(`{"a":1}`),
		Status: kafka.OutboxStatusPending,
	}

	mock.ExpectExec(`INSERT INTO outbox_events`).
		WithArgs("8b0f", "rid", "job", "job:1", "upserted", "hrdata.job.lifecycle.v1", []byte(`{"a":1}`), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateRejectsInvalid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := kafka.NewOutboxRepository(db)

	err := repo.Create(context.Background(), kafka.OutboxEvent{ID: "x", Topic: "t", Status: "pending"})

	assert.EqualError(t, err, "outbox payload is required")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := kafka.NewOutboxRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "request_id", "aggregate_type", "aggregate_id", "event_type",
		"topic", "payload", "status", "retry_count", "next_retry_at",
	}).AddRow("e1", "rid", "user", "user:3", "updated", "hrdata.user.lifecycle.v1", []byte(`{}`), "failed", 2, now)

	mock.ExpectQuery(`SELECT(.|\n)*FROM outbox_events`).
		WithArgs("pending", "failed", 5).
		WillReturnRows(rows)

	got, err := repo.ListPending(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, 2, got[0].RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_Mark(t *testing.T) {
	db, mock := newMockDB(t)
	repo := kafka.NewOutboxRepository(db)

	mock.ExpectExec(`UPDATE outbox_events`).
		WithArgs("sent", "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE outbox_events(.|\n)*retry_count = retry_count \+ 1`).
		WithArgs("failed", "timeout", "e2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkSent(context.Background(), "e1"))
	require.NoError(t, repo.MarkFailed(context.Background(), "e2", "timeout"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
