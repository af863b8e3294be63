package storage

import "time"

// Base carries the lifecycle columns shared by every HR table.
type Base struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`
	IsActive  bool       `gorm:"not null;default:true;index"`
}

func (b Base) RecordID() int64 {
	return b.ID
}

func (b Base) Active() bool {
	return b.IsActive
}

// Record is implemented by the entity structs stored through Store.
//
// NaturalKey returns the business-key columns used for upsert matching and
// conflict detection. Values returns every business column (natural key
// included) as it should be written on create or reactivation.
type Record interface {
	TableName() string
	RecordID() int64
	Active() bool
	NaturalKey() map[string]any
	Values() map[string]any
}

// Filter is an equality filter keyed by column name. Unless it names
// ColumnIsActive, queries only match active rows.
type Filter map[string]any

const (
	ColumnID        = "id"
	ColumnIsActive  = "is_active"
	ColumnDeletedAt = "deleted_at"
	ColumnUpdatedAt = "updated_at"
)

func (f Filter) withActiveDefault() map[string]any {
	out := make(map[string]any, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	if _, ok := out[ColumnIsActive]; !ok {
		out[ColumnIsActive] = true
	}
	return out
}
