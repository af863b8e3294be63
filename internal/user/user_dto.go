package user

import (
	"time"

	"go-hrdata/internal/department"
	"go-hrdata/internal/job"
)

type UpsertUserRequest struct {
	Name         string     `json:"name" binding:"required,min=1,max=255"`
	Datetime     *time.Time `json:"datetime" binding:"required"`
	JobID        int64      `json:"job_id" binding:"required,min=1"`
	DepartmentID int64      `json:"department_id" binding:"required,min=1"`
}

// UpdateUserRequest only changes the fields that are present.
type UpdateUserRequest struct {
	Name         *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Datetime     *time.Time `json:"datetime"`
	JobID        *int64     `json:"job_id" binding:"omitempty,min=1"`
	DepartmentID *int64     `json:"department_id" binding:"omitempty,min=1"`
}

type BulkUserRequest struct {
	Users []UpsertUserRequest `json:"users" binding:"required,min=1,max=1000,dive"`
}

// UserResponse embeds the referenced job and department while they are
// active; an inactive reference is rendered as null.
type UserResponse struct {
	ID           int64                          `json:"id"`
	Name         string                         `json:"name"`
	Datetime     *time.Time                     `json:"datetime"`
	JobID        int64                          `json:"job_id"`
	DepartmentID int64                          `json:"department_id"`
	Job          *job.JobResponse               `json:"job"`
	Department   *department.DepartmentResponse `json:"department"`
	IsActive     bool                           `json:"is_active"`
	CreatedAt    time.Time                      `json:"created_at"`
	UpdatedAt    time.Time                      `json:"updated_at"`
	DeletedAt    *time.Time                     `json:"deleted_at,omitempty"`
}

type BulkResponse struct {
	Inserted int `json:"inserted"`
}
