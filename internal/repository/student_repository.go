package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, national_school_id, full_name, grade_level, class_section, date_of_birth, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students WHERE 1=1"
	var args []interface{}

	if filter.GradeLevel != "" {
		base += fmt.Sprintf(" AND grade_level = $%d", len(args)+1)
		args = append(args, filter.GradeLevel)
	}
	if filter.ClassSection != "" {
		base += fmt.Sprintf(" AND class_section = $%d", len(args)+1)
		args = append(args, filter.ClassSection)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR national_school_id LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":          "full_name",
		"national_school_id": "national_school_id",
		"grade_level":        "grade_level",
		"created_at":         "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, base, column, order, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByNationalSchoolID resolves a student by the unique school-issued
// identifier. Returns sql.ErrNoRows when no student matches.
func (r *StudentRepository) FindByNationalSchoolID(ctx context.Context, nationalID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE national_school_id = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, nationalID); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByNationalSchoolID checks uniqueness, optionally excluding an ID.
func (r *StudentRepository) ExistsByNationalSchoolID(ctx context.Context, nationalID string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE national_school_id = $1"
	args := []interface{}{nationalID}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check national school id: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, national_school_id, full_name, grade_level, class_section, date_of_birth, created_at, updated_at)
VALUES (:id, :national_school_id, :full_name, :grade_level, :class_section, :date_of_birth, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// CreateBatch inserts many students inside one transaction, skipping rows
// whose national_school_id already exists.
func (r *StudentRepository) CreateBatch(ctx context.Context, students []models.Student) (int, int, error) {
	if len(students) == 0 {
		return 0, 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin student batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	inserted, skipped := 0, 0
	const query = `INSERT INTO students (id, national_school_id, full_name, grade_level, class_section, date_of_birth, created_at, updated_at)
VALUES (:id, :national_school_id, :full_name, :grade_level, :class_section, :date_of_birth, :created_at, :updated_at)
ON CONFLICT (national_school_id) DO NOTHING`
	for i := range students {
		s := students[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.CreatedAt = now
		s.UpdatedAt = now
		result, err := tx.NamedExecContext(ctx, query, s)
		if err != nil {
			return 0, 0, fmt.Errorf("insert student batch row: %w", err)
		}
		affected, _ := result.RowsAffected()
		if affected == 0 {
			skipped++
		} else {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit student batch: %w", err)
	}
	return inserted, skipped, nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET national_school_id = :national_school_id, full_name = :full_name, grade_level = :grade_level,
class_section = :class_section, date_of_birth = :date_of_birth, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student. Links, attendance and grades cascade via foreign
// keys.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// CountAll returns the total number of students.
func (r *StudentRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}
