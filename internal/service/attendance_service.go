package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
}

type teacherScopeChecker interface {
	TeacherScopesStudent(ctx context.Context, teacherID, studentID string) (bool, error)
}

// RecordAttendanceRequest records one student's attendance for a day.
type RecordAttendanceRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required"`
	Notes     string `json:"notes" validate:"max=500"`
}

// AttendanceService records and lists daily attendance.
type AttendanceService struct {
	repo      attendanceRepository
	scope     teacherScopeChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, scope teacherScopeChecker, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, scope: scope, validator: validate, logger: logger}
}

// Record upserts attendance for (student, date). Teachers may only record for
// students they are assigned to; admins pass asAdmin to skip the scope check.
func (s *AttendanceService) Record(ctx context.Context, recorderID string, asAdmin bool, req RecordAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(req.Status)
	if !models.ValidAttendanceStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
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
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance date")
	}

	record := &models.Attendance{
		StudentID:  req.StudentID,
		Date:       date,
		Status:     status,
		RecordedBy: recorderID,
	}
	if req.Notes != "" {
		notes := req.Notes
		record.Notes = &notes
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// List returns attendance records joined with student identity.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	if records == nil {
		records = []models.AttendanceDetail{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
