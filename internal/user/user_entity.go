package user

import (
	"time"

	"go-hrdata/internal/storage"
)

// Table is quoted by gorm; raw SQL must write "user".
const Table = "user"

// User is a hire: Datetime is the hire timestamp.
type User struct {
	storage.Base
	Name         string     `gorm:"size:255;not null;index;uniqueIndex:uq_user_name_job_department"`
	Datetime     *time.Time `gorm:"column:datetime;index"`
	JobID        int64      `gorm:"not null;uniqueIndex:uq_user_name_job_department"`
	DepartmentID int64      `gorm:"not null;uniqueIndex:uq_user_name_job_department"`
}

func (User) TableName() string { return Table }

func (u User) NaturalKey() map[string]any {
	return map[string]any{
		"name":          u.Name,
		"job_id":        u.JobID,
		"department_id": u.DepartmentID,
	}
}

func (u User) Values() map[string]any {
	return map[string]any{
		"name":          u.Name,
		"datetime":      u.Datetime,
		"job_id":        u.JobID,
		"department_id": u.DepartmentID,
	}
}

// HireYear returns 0 when the hire date is unknown.
func (u User) HireYear() int {
	if u.Datetime == nil {
		return 0
	}
	return u.Datetime.UTC().Year()
}
