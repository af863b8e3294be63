package department

import "time"

type UpsertDepartmentRequest struct {
	Department string `json:"department" binding:"required,min=1,max=255"`
}

// UpdateDepartmentRequest only changes the fields that are present.
type UpdateDepartmentRequest struct {
	Department *string `json:"department" binding:"omitempty,min=1,max=255"`
}

type BulkDepartmentRequest struct {
	Departments []UpsertDepartmentRequest `json:"departments" binding:"required,min=1,max=1000,dive"`
}

type DepartmentResponse struct {
	ID         int64      `json:"id"`
	Department string     `json:"department"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

type BulkResponse struct {
	Inserted int `json:"inserted"`
}
