package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

// AttendanceRepository manages per-day attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert records attendance for (student, date). Re-recording the same day
// overwrites status, notes and recorder.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO attendance (id, student_id, date, status, notes, recorded_by, created_at, updated_at)
VALUES (:id, :student_id, :date, :status, :notes, :recorded_by, :created_at, :updated_at)
ON CONFLICT (student_id, date) DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// List returns attendance records matching the filter, joined with student
// identity, newest day first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	base := `FROM attendance a JOIN students s ON s.id = a.student_id WHERE 1=1`
	var args []interface{}

	if filter.StudentID != "" {
		base += fmt.Sprintf(" AND a.student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.GradeLevel != "" {
		base += fmt.Sprintf(" AND s.grade_level = $%d", len(args)+1)
		args = append(args, filter.GradeLevel)
	}
	if filter.ClassSection != "" {
		base += fmt.Sprintf(" AND s.class_section = $%d", len(args)+1)
		args = append(args, filter.ClassSection)
	}
	if filter.From != nil {
		base += fmt.Sprintf(" AND a.date >= $%d", len(args)+1)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		base += fmt.Sprintf(" AND a.date <= $%d", len(args)+1)
		args = append(args, *filter.To)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.student_id, a.date, a.status, a.notes, a.recorded_by, a.created_at, a.updated_at,
s.full_name AS student_name, s.national_school_id
%s ORDER BY a.date DESC, s.full_name ASC LIMIT %d OFFSET %d`, base, size, offset)
	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}
