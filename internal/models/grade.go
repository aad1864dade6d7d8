package models

import "time"

// Grade is an assessment result for a student.
type Grade struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	Subject    string    `db:"subject" json:"subject"`
	GradeType  string    `db:"grade_type" json:"grade_type"`
	GradeValue float64   `db:"grade_value" json:"grade_value"`
	MaxGrade   float64   `db:"max_grade" json:"max_grade"`
	Date       time.Time `db:"date" json:"date"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	RecordedBy string    `db:"recorded_by" json:"recorded_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter selects grades for listing.
type GradeFilter struct {
	StudentID string
	Subject   string
	GradeType string
	Page      int
	PageSize  int
}
