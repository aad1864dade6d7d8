package models

import "time"

// AttendanceStatus values are stored and displayed in Arabic.
type AttendanceStatus string

const (
	AttendancePresent       AttendanceStatus = "حاضر"
	AttendanceAbsent        AttendanceStatus = "غائب"
	AttendanceExcusedAbsent AttendanceStatus = "غائب بعذر"
	AttendanceLate          AttendanceStatus = "متأخر"
)

// ValidAttendanceStatus reports whether s is one of the known statuses.
func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceExcusedAbsent, AttendanceLate:
		return true
	}
	return false
}

// Attendance is a per-student, per-day record.
type Attendance struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	Date       time.Time        `db:"date" json:"date"`
	Status     AttendanceStatus `db:"status" json:"status"`
	Notes      *string          `db:"notes" json:"notes,omitempty"`
	RecordedBy string           `db:"recorded_by" json:"recorded_by"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter selects records for listing.
type AttendanceFilter struct {
	StudentID    string
	GradeLevel   string
	ClassSection string
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
}

// AttendanceDetail joins student identity for report rendering.
type AttendanceDetail struct {
	Attendance
	StudentName      string `db:"student_name" json:"student_name"`
	NationalSchoolID string `db:"national_school_id" json:"national_school_id"`
}
