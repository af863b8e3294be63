package report

import "fmt"

// QuarterlyCount is one (department, job, quarter) cell of the hires query.
type QuarterlyCount struct {
	DepartmentName string `gorm:"column:department_name"`
	JobTitle       string `gorm:"column:job_title"`
	Quarter        int    `gorm:"column:quarter"`
	Hired          int64  `gorm:"column:hired"`
}

// DepartmentHire is the hire count of one department in a year.
type DepartmentHire struct {
	ID         int64  `json:"id" gorm:"column:id"`
	Department string `json:"department" gorm:"column:department"`
	Hired      int64  `json:"hired" gorm:"column:hired"`
}

type QuarterlyRow struct {
	DepartmentName string  `json:"department_name"`
	JobTitle       string  `json:"job_title"`
	Counts         []int64 `json:"counts"`
}

// QuarterlyReport is the hires pivot: Counts[i] of every row belongs to
// Quarters[i].
type QuarterlyReport struct {
	Year     int            `json:"year"`
	Quarters []int          `json:"quarters"`
	Rows     []QuarterlyRow `json:"rows"`
}

type DepartmentReport struct {
	Year        int              `json:"year"`
	Mean        float64          `json:"mean"`
	Departments []DepartmentHire `json:"departments"`
}

// Table is the tabular form both reports are exported in.
type Table struct {
	Columns []string
	Rows    [][]any
}

func (r QuarterlyReport) Table() Table {
	t := Table{Columns: []string{"department_name", "job_title"}}
	for _, q := range r.Quarters {
		t.Columns = append(t.Columns, fmt.Sprintf("Q%d", q))
	}
	t.Rows = make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		cells := make([]any, 0, len(t.Columns))
		cells = append(cells, row.DepartmentName, row.JobTitle)
		for _, n := range row.Counts {
			cells = append(cells, n)
		}
		t.Rows[i] = cells
	}
	return t
}

func (r DepartmentReport) Table() Table {
	t := Table{Columns: []string{"id", "department", "hired"}}
	t.Rows = make([][]any, len(r.Departments))
	for i, d := range r.Departments {
		t.Rows[i] = []any{d.ID, d.Department, d.Hired}
	}
	return t
}
