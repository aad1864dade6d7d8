package models

import "time"

// Student represents a learner registered in the school. NationalSchoolID is
// the unique school-issued identifier parents use when linking.
type Student struct {
	ID               string     `db:"id" json:"id"`
	NationalSchoolID string     `db:"national_school_id" json:"national_school_id"`
	FullName         string     `db:"full_name" json:"full_name"`
	GradeLevel       string     `db:"grade_level" json:"grade_level"`
	ClassSection     *string    `db:"class_section" json:"class_section,omitempty"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search       string
	GradeLevel   string
	ClassSection string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// ImportResult summarises a bulk CSV import.
type ImportResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
