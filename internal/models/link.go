package models

import "time"

// ParentStudentLink associates a parent account with a student record. A
// parent may link to multiple students and a student may have multiple
// linked parents.
type ParentStudentLink struct {
	ParentID     string    `db:"parent_id" json:"parent_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Relationship *string   `db:"relationship" json:"relationship,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// LinkedChild is a student joined with the linking metadata, as shown on the
// parent dashboard.
type LinkedChild struct {
	Student
	Relationship *string `db:"relationship" json:"relationship,omitempty"`
}

// TeacherStudentLink scopes a teacher to an individual student.
type TeacherStudentLink struct {
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TeacherGradeLevel scopes a teacher to a whole grade level.
type TeacherGradeLevel struct {
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
