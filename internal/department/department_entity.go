package department

import "go-hrdata/internal/storage"

const Table = "department"

type Department struct {
	storage.Base
	Department string `gorm:"size:255;not null;uniqueIndex:uq_department_department"`
}

func (Department) TableName() string { return Table }

func (d Department) NaturalKey() map[string]any {
	return map[string]any{"department": d.Department}
}

func (d Department) Values() map[string]any {
	return map[string]any{"department": d.Department}
}
