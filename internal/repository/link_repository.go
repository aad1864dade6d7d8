package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

// LinkRepository manages parent-student links and teacher scoping rows.
type LinkRepository struct {
	db *sqlx.DB
}

// NewLinkRepository constructs a LinkRepository.
func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// CreateParentLink inserts a parent-student link. Duplicate links are
// tolerated via the conflict target so re-linking the same child is a no-op.
func (r *LinkRepository) CreateParentLink(ctx context.Context, link *models.ParentStudentLink) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO parent_student_links (parent_id, student_id, relationship, created_at)
VALUES (:parent_id, :student_id, :relationship, :created_at)
ON CONFLICT (parent_id, student_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create parent link: %w", err)
	}
	return nil
}

// ListChildren returns the students linked to the given parent.
func (r *LinkRepository) ListChildren(ctx context.Context, parentID string) ([]models.LinkedChild, error) {
	const query = `SELECT s.id, s.national_school_id, s.full_name, s.grade_level, s.class_section, s.date_of_birth, s.created_at, s.updated_at, l.relationship
FROM parent_student_links l
JOIN students s ON s.id = l.student_id
WHERE l.parent_id = $1
ORDER BY s.full_name ASC`
	var children []models.LinkedChild
	if err := r.db.SelectContext(ctx, &children, query, parentID); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// HasChild reports whether the parent is linked to the student.
func (r *LinkRepository) HasChild(ctx context.Context, parentID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM parent_student_links WHERE parent_id = $1 AND student_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, parentID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check parent link: %w", err)
	}
	return true, nil
}

// ParentIDsByStudent returns all parents linked to the student.
func (r *LinkRepository) ParentIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT parent_id FROM parent_student_links WHERE student_id = $1`, studentID); err != nil {
		return nil, fmt.Errorf("parents by student: %w", err)
	}
	return ids, nil
}

// ParentIDsByGradeLevel returns the distinct parents of every student in the
// grade level, used for group message audience resolution.
func (r *LinkRepository) ParentIDsByGradeLevel(ctx context.Context, gradeLevel string) ([]string, error) {
	const query = `SELECT DISTINCT l.parent_id
FROM parent_student_links l
JOIN students s ON s.id = l.student_id
WHERE s.grade_level = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, gradeLevel); err != nil {
		return nil, fmt.Errorf("parents by grade level: %w", err)
	}
	return ids, nil
}

// TeacherIDs returns every approved teacher account, used for staff-wide
// group message audience resolution.
func (r *LinkRepository) TeacherIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT ra.user_id
FROM role_assignments ra
JOIN users u ON u.id = ra.user_id
WHERE ra.role = 'TEACHER' AND u.approved = true`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("teacher ids: %w", err)
	}
	return ids, nil
}

// AssignTeacherStudent scopes a teacher to a student.
func (r *LinkRepository) AssignTeacherStudent(ctx context.Context, teacherID, studentID string) error {
	const query = `INSERT INTO teacher_student_links (teacher_id, student_id, created_at)
VALUES ($1, $2, $3) ON CONFLICT (teacher_id, student_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, teacherID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign teacher student: %w", err)
	}
	return nil
}

// AssignTeacherGradeLevel scopes a teacher to a whole grade level.
func (r *LinkRepository) AssignTeacherGradeLevel(ctx context.Context, teacherID, gradeLevel string) error {
	const query = `INSERT INTO teacher_grade_levels (teacher_id, grade_level, created_at)
VALUES ($1, $2, $3) ON CONFLICT (teacher_id, grade_level) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, teacherID, gradeLevel, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign teacher grade level: %w", err)
	}
	return nil
}

// TeacherScopesStudent reports whether the teacher may act on the student,
// either through a direct link or through the student's grade level.
func (r *LinkRepository) TeacherScopesStudent(ctx context.Context, teacherID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM students s
WHERE s.id = $2 AND (
    EXISTS (SELECT 1 FROM teacher_student_links t WHERE t.teacher_id = $1 AND t.student_id = s.id)
    OR EXISTS (SELECT 1 FROM teacher_grade_levels g WHERE g.teacher_id = $1 AND g.grade_level = s.grade_level)
) LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, teacherID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher scope: %w", err)
	}
	return true, nil
}

// TeacherGradeLevels returns the grade levels assigned to a teacher.
func (r *LinkRepository) TeacherGradeLevels(ctx context.Context, teacherID string) ([]string, error) {
	var levels []string
	if err := r.db.SelectContext(ctx, &levels, `SELECT grade_level FROM teacher_grade_levels WHERE teacher_id = $1 ORDER BY grade_level`, teacherID); err != nil {
		return nil, fmt.Errorf("teacher grade levels: %w", err)
	}
	return levels, nil
}
