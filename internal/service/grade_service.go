package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type gradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error)
}

// RecordGradeRequest carries fields for creating or updating a grade.
type RecordGradeRequest struct {
	StudentID  string  `json:"student_id" validate:"required"`
	Subject    string  `json:"subject" validate:"required,max=100"`
	GradeType  string  `json:"grade_type" validate:"required,max=50"`
	GradeValue float64 `json:"grade_value" validate:"gte=0"`
	MaxGrade   float64 `json:"max_grade" validate:"gt=0,gtefield=GradeValue"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Notes      string  `json:"notes" validate:"max=500"`
}

// GradeService records and lists assessment results.
type GradeService struct {
	repo      gradeRepository
	scope     teacherScopeChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(repo gradeRepository, scope teacherScopeChecker, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, scope: scope, validator: validate, logger: logger}
}

// Record inserts a grade. Teachers are limited to students in their scope.
func (s *GradeService) Record(ctx context.Context, recorderID string, asAdmin bool, req RecordGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if !asAdmin {
		allowed, err := s.scope.TeacherScopesStudent(ctx, recorderID, req.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher scope")
		}
		if !allowed {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside teacher scope")
		}
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid grade date")
	}

	grade := &models.Grade{
		StudentID:  req.StudentID,
		Subject:    req.Subject,
		GradeType:  req.GradeType,
		GradeValue: req.GradeValue,
		MaxGrade:   req.MaxGrade,
		Date:       date,
		RecordedBy: recorderID,
	}
	if req.Notes != "" {
		notes := req.Notes
		grade.Notes = &notes
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}
	return grade, nil
}

// Update modifies a grade. Only the original recorder or an admin may edit.
func (s *GradeService) Update(ctx context.Context, editorID string, asAdmin bool, id string, req RecordGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if !asAdmin && grade.RecordedBy != editorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "grade was recorded by another teacher")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid grade date")
	}

	grade.Subject = req.Subject
	grade.GradeType = req.GradeType
	grade.GradeValue = req.GradeValue
	grade.MaxGrade = req.MaxGrade
	grade.Date = date
	grade.Notes = nil
	if req.Notes != "" {
		notes := req.Notes
		grade.Notes = &notes
	}
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	return grade, nil
}

// Delete removes a grade with the same ownership rule as Update.
func (s *GradeService) Delete(ctx context.Context, editorID string, asAdmin bool, id string) error {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if !asAdmin && grade.RecordedBy != editorID {
		return appErrors.Clone(appErrors.ErrForbidden, "grade was recorded by another teacher")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}

// List returns grades matching the filter.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, *models.Pagination, error) {
	grades, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	if grades == nil {
		grades = []models.Grade{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return grades, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
