package models

import "time"

// DueBadge marks how close a homework deadline is, in Arabic as displayed to
// parents.
type DueBadge string

const (
	DueBadgeOverdue DueBadge = "متأخر"
	DueBadgeSoon    DueBadge = "قريب الموعد"
	DueBadgeNone    DueBadge = ""
)

// Homework is an assignment published by a teacher for a grade level.
type Homework struct {
	ID            string    `db:"id" json:"id"`
	TeacherID     string    `db:"teacher_id" json:"teacher_id"`
	GradeLevel    string    `db:"grade_level" json:"grade_level"`
	Subject       *string   `db:"subject" json:"subject,omitempty"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	DueDate       time.Time `db:"due_date" json:"due_date"`
	AttachmentURL *string   `db:"attachment_url" json:"attachment_url,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// HomeworkView decorates a homework row with the derived due badge.
type HomeworkView struct {
	Homework
	DueBadge DueBadge `json:"due_badge,omitempty"`
}

// HomeworkFilter selects homework for listing.
type HomeworkFilter struct {
	GradeLevel string
	TeacherID  string
	Subject    string
	Page       int
	PageSize   int
}
