package job

import "time"

type UpsertJobRequest struct {
	Job string `json:"job" binding:"required,min=1,max=255"`
}

// UpdateJobRequest only changes the fields that are present.
type UpdateJobRequest struct {
	Job *string `json:"job" binding:"omitempty,min=1,max=255"`
}

type BulkJobRequest struct {
	Jobs []UpsertJobRequest `json:"jobs" binding:"required,min=1,max=1000,dive"`
}

type JobResponse struct {
	ID        int64      `json:"id"`
	Job       string     `json:"job"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type BulkResponse struct {
	Inserted int `json:"inserted"`
}
