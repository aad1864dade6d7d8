package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

// HomeworkRepository manages homework assignments.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs a HomeworkRepository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

const homeworkColumns = `id, teacher_id, grade_level, subject, title, description, due_date, attachment_url, created_at, updated_at`

// Create inserts a homework assignment.
func (r *HomeworkRepository) Create(ctx context.Context, hw *models.Homework) error {
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hw.CreatedAt.IsZero() {
		hw.CreatedAt = now
	}
	hw.UpdatedAt = now
	const query = `INSERT INTO homework (id, teacher_id, grade_level, subject, title, description, due_date, attachment_url, created_at, updated_at)
VALUES (:id, :teacher_id, :grade_level, :subject, :title, :description, :due_date, :attachment_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// Update modifies an existing assignment.
func (r *HomeworkRepository) Update(ctx context.Context, hw *models.Homework) error {
	hw.UpdatedAt = time.Now().UTC()
	const query = `UPDATE homework SET grade_level = :grade_level, subject = :subject, title = :title, description = :description,
due_date = :due_date, attachment_url = :attachment_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("update homework: %w", err)
	}
	return nil
}

// FindByID fetches an assignment by identifier.
func (r *HomeworkRepository) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	query := fmt.Sprintf("SELECT %s FROM homework WHERE id = $1", homeworkColumns)
	var hw models.Homework
	if err := r.db.GetContext(ctx, &hw, query, id); err != nil {
		return nil, err
	}
	return &hw, nil
}

// Delete removes an assignment.
func (r *HomeworkRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM homework WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete homework: %w", err)
	}
	return nil
}

// List returns assignments matching the filter, soonest deadline first.
func (r *HomeworkRepository) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error) {
	base := "FROM homework WHERE 1=1"
	var args []interface{}

	if filter.GradeLevel != "" {
		base += fmt.Sprintf(" AND grade_level = $%d", len(args)+1)
		args = append(args, filter.GradeLevel)
	}
	if filter.TeacherID != "" {
		base += fmt.Sprintf(" AND teacher_id = $%d", len(args)+1)
		args = append(args, filter.TeacherID)
	}
	if filter.Subject != "" {
		base += fmt.Sprintf(" AND subject = $%d", len(args)+1)
		args = append(args, filter.Subject)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY due_date ASC LIMIT %d OFFSET %d", homeworkColumns, base, size, offset)
	var assignments []models.Homework
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list homework: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count homework: %w", err)
	}
	return assignments, total, nil
}
