package events

import (
	"fmt"
	"time"
)

const (
	RecordUpserted     = "upserted"
	RecordUpdated      = "updated"
	RecordDeleted      = "deleted"
	RecordPurged       = "purged"
	RecordBulkUpserted = "bulk_upserted"
)

// LifecycleTopic is the Kafka topic carrying lifecycle events of table.
func LifecycleTopic(table string) string {
	return fmt.Sprintf("hrdata.%s.lifecycle.v1", table)
}

// RecordEvent is published after a write to department, job or user commits.
// RecordID is zero for bulk events; Count carries the batch size instead.
type RecordEvent struct {
	EventType  string    `json:"event_type"`
	Table      string    `json:"table"`
	RecordID   int64     `json:"record_id,omitempty"`
	Count      int       `json:"count,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	HireYears  []int     `json:"hire_years,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AggregateID keys the Kafka message so events of one record stay ordered.
func (e RecordEvent) AggregateID() string {
	if e.RecordID == 0 {
		return e.Table
	}
	return fmt.Sprintf("%s:%d", e.Table, e.RecordID)
}
