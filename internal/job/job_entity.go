package job

import "go-hrdata/internal/storage"

const Table = "job"

type Job struct {
	storage.Base
	Job string `gorm:"size:255;not null;uniqueIndex:uq_job_job"`
}

func (Job) TableName() string { return Table }

func (j Job) NaturalKey() map[string]any {
	return map[string]any{"job": j.Job}
}

func (j Job) Values() map[string]any {
	return map[string]any{"job": j.Job}
}
