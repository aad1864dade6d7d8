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

// dueSoonWindow is how far ahead of the deadline the "soon" badge appears.
const dueSoonWindow = 48 * time.Hour

type homeworkRepository interface {
	Create(ctx context.Context, hw *models.Homework) error
	Update(ctx context.Context, hw *models.Homework) error
	FindByID(ctx context.Context, id string) (*models.Homework, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error)
}

// PublishHomeworkRequest carries fields for creating or updating homework.
type PublishHomeworkRequest struct {
	GradeLevel    string `json:"grade_level" validate:"required,max=50"`
	Subject       string `json:"subject" validate:"max=100"`
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"required,max=5000"`
	DueDate       string `json:"due_date" validate:"required,datetime=2006-01-02"`
	AttachmentURL string `json:"attachment_url" validate:"omitempty,max=500"`
}

// HomeworkService publishes assignments and decorates them with due badges.
type HomeworkService struct {
	repo      homeworkRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewHomeworkService constructs a HomeworkService.
func NewHomeworkService(repo homeworkRepository, validate *validator.Validate, logger *zap.Logger) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeworkService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// Publish creates a homework assignment owned by the teacher.
func (s *HomeworkService) Publish(ctx context.Context, teacherID string, req PublishHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid due date")
	}

	hw := &models.Homework{
		TeacherID:   teacherID,
		GradeLevel:  req.GradeLevel,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
	}
	if req.Subject != "" {
		subject := req.Subject
		hw.Subject = &subject
	}
	if req.AttachmentURL != "" {
		url := req.AttachmentURL
		hw.AttachmentURL = &url
	}
	if err := s.repo.Create(ctx, hw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish homework")
	}
	return hw, nil
}

// Update modifies an assignment. Only the publishing teacher or an admin may
// edit.
func (s *HomeworkService) Update(ctx context.Context, editorID string, asAdmin bool, id string, req PublishHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}
	hw, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !asAdmin && hw.TeacherID != editorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "homework belongs to another teacher")
	}
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid due date")
	}

	hw.GradeLevel = req.GradeLevel
	hw.Title = req.Title
	hw.Description = req.Description
	hw.DueDate = due
	hw.Subject = nil
	if req.Subject != "" {
		subject := req.Subject
		hw.Subject = &subject
	}
	hw.AttachmentURL = nil
	if req.AttachmentURL != "" {
		url := req.AttachmentURL
		hw.AttachmentURL = &url
	}
	if err := s.repo.Update(ctx, hw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update homework")
	}
	return hw, nil
}

// Delete removes an assignment with the same ownership rule as Update.
func (s *HomeworkService) Delete(ctx context.Context, editorID string, asAdmin bool, id string) error {
	hw, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !asAdmin && hw.TeacherID != editorID {
		return appErrors.Clone(appErrors.ErrForbidden, "homework belongs to another teacher")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete homework")
	}
	return nil
}

// List returns assignments decorated with due badges.
func (s *HomeworkService) List(ctx context.Context, filter models.HomeworkFilter) ([]models.HomeworkView, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list homework")
	}
	now := s.now().UTC()
	views := make([]models.HomeworkView, 0, len(assignments))
	for _, hw := range assignments {
		views = append(views, models.HomeworkView{Homework: hw, DueBadge: badgeFor(hw.DueDate, now)})
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return views, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *HomeworkService) find(ctx context.Context, id string) (*models.Homework, error) {
	hw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "homework not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homework")
	}
	return hw, nil
}

// badgeFor derives the Arabic deadline badge. Deadlines count to the end of
// the due day.
func badgeFor(due, now time.Time) models.DueBadge {
	endOfDay := time.Date(due.Year(), due.Month(), due.Day(), 23, 59, 59, 0, time.UTC)
	switch {
	case now.After(endOfDay):
		return models.DueBadgeOverdue
	case endOfDay.Sub(now) <= dueSoonWindow:
		return models.DueBadgeSoon
	}
	return models.DueBadgeNone
}
