package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements the row lifecycle of a single table: active-only reads,
// natural-key upserts that reactivate soft-deleted rows, partial updates and
// soft or hard deletes.
type Store[T Record] struct {
	db    *gorm.DB
	table string
	now   func() time.Time
}

func NewStore[T Record](db *gorm.DB) *Store[T] {
	var zero T
	return &Store[T]{db: db, table: zero.TableName(), now: time.Now}
}

// WithTx returns a copy of the store bound to tx.
func (s *Store[T]) WithTx(tx *gorm.DB) *Store[T] {
	return &Store[T]{db: tx, table: s.table, now: s.now}
}

// WithClock overrides the time source used for updated_at and deleted_at.
func (s *Store[T]) WithClock(now func() time.Time) *Store[T] {
	return &Store[T]{db: s.db, table: s.table, now: now}
}

func (s *Store[T]) Table() string {
	return s.table
}

func (s *Store[T]) Read(ctx context.Context, id int64, activeOnly bool) (*T, error) {
	var rec T
	err := s.db.WithContext(ctx).Where(ColumnID+" = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound(s.table, id)
	}
	if err != nil {
		return nil, classify(err, s.table, map[string]any{"id": id})
	}
	if activeOnly && !rec.Active() {
		return nil, NotActive(s.table, id)
	}
	return &rec, nil
}

func (s *Store[T]) Create(ctx context.Context, rec *T) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return classify(err, s.table, (*rec).Values())
	}
	return nil
}

// Update merges fields into an active row and returns the stored result.
func (s *Store[T]) Update(ctx context.Context, id int64, fields map[string]any) (*T, error) {
	rec, err := s.Read(ctx, id, true)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values[ColumnUpdatedAt] = s.now().UTC()

	if err := s.db.WithContext(ctx).Model(rec).Updates(values).Error; err != nil {
		return nil, classify(err, s.table, fields)
	}
	return s.Read(ctx, id, false)
}

// Upsert matches rec by natural key regardless of state. A match is
// reactivated and refreshed with rec's values, otherwise rec is inserted.
func (s *Store[T]) Upsert(ctx context.Context, rec *T) (*T, error) {
	var existing T
	err := s.db.WithContext(ctx).Where((*rec).NaturalKey()).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.Create(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	if err != nil {
		return nil, classify(err, s.table, (*rec).Values())
	}

	values := (*rec).Values()
	values[ColumnIsActive] = true
	values[ColumnDeletedAt] = nil
	values[ColumnUpdatedAt] = s.now().UTC()

	if err := s.db.WithContext(ctx).Model(&existing).Updates(values).Error; err != nil {
		return nil, classify(err, s.table, (*rec).Values())
	}
	return s.Read(ctx, existing.RecordID(), false)
}

// Delete removes the row (soft=false) or flags it inactive. Soft deleting an
// inactive row succeeds without touching it.
func (s *Store[T]) Delete(ctx context.Context, id int64, soft bool) error {
	rec, err := s.Read(ctx, id, false)
	if err != nil {
		return err
	}

	if !soft {
		if err := s.db.WithContext(ctx).Delete(rec).Error; err != nil {
			return classify(err, s.table, map[string]any{"id": id})
		}
		return nil
	}

	if !(*rec).Active() {
		return nil
	}

	now := s.now().UTC()
	err = s.db.WithContext(ctx).Model(rec).Updates(map[string]any{
		ColumnIsActive:  false,
		ColumnDeletedAt: now,
		ColumnUpdatedAt: now,
	}).Error
	if err != nil {
		return classify(err, s.table, map[string]any{"id": id})
	}
	return nil
}

func (s *Store[T]) Filter(ctx context.Context, f Filter) ([]T, error) {
	var out []T
	err := s.db.WithContext(ctx).
		Where(f.withActiveDefault()).
		Order(ColumnID).
		Find(&out).Error
	if err != nil {
		return nil, classify(err, s.table, f)
	}
	return out, nil
}

func (s *Store[T]) All(ctx context.Context, skip, limit int, f Filter) ([]T, error) {
	var out []T
	err := s.db.WithContext(ctx).
		Where(f.withActiveDefault()).
		Order(ColumnID).
		Offset(skip).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, classify(err, s.table, f)
	}
	return out, nil
}

func (s *Store[T]) Count(ctx context.Context, f Filter) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(new(T)).
		Where(f.withActiveDefault()).
		Count(&n).Error
	if err != nil {
		return 0, classify(err, s.table, f)
	}
	return n, nil
}

func (s *Store[T]) Exists(ctx context.Context, id int64, f Filter) (bool, error) {
	where := f.withActiveDefault()
	where[ColumnID] = id

	var n int64
	err := s.db.WithContext(ctx).
		Model(new(T)).
		Where(where).
		Count(&n).Error
	if err != nil {
		return false, classify(err, s.table, where)
	}
	return n > 0, nil
}

// BulkUpsert writes rows in one INSERT. Rows whose natural key already exists
// are reactivated and refreshed instead of failing; within the batch the last
// row for a given natural key wins.
func (s *Store[T]) BulkUpsert(ctx context.Context, rows []T) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	rows = dedupeByNaturalKey(rows)

	var zero T
	keyCols := sortedKeys(zero.NaturalKey())
	conflict := make([]clause.Column, len(keyCols))
	for i, c := range keyCols {
		conflict[i] = clause.Column{Name: c}
	}

	refresh := []string{ColumnUpdatedAt}
	for _, c := range sortedKeys(zero.Values()) {
		if _, isKey := zero.NaturalKey()[c]; !isKey {
			refresh = append(refresh, c)
		}
	}
	updates := clause.AssignmentColumns(refresh)
	updates = append(updates,
		clause.Assignment{Column: clause.Column{Name: ColumnIsActive}, Value: true},
		clause.Assignment{Column: clause.Column{Name: ColumnDeletedAt}, Value: nil},
	)

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: conflict, DoUpdates: updates}).
		Create(&rows).Error
	if err != nil {
		return 0, classify(err, s.table, map[string]any{"rows": len(rows)})
	}
	return len(rows), nil
}

func dedupeByNaturalKey[T Record](rows []T) []T {
	out := make([]T, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for _, r := range rows {
		k := naturalKeyString(r.NaturalKey())
		if i, ok := seen[k]; ok {
			out[i] = r
			continue
		}
		seen[k] = len(out)
		out = append(out, r)
	}
	return out
}

func naturalKeyString(key map[string]any) string {
	var b strings.Builder
	for _, c := range sortedKeys(key) {
		fmt.Fprintf(&b, "%s=%v;", c, key[c])
	}
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
