package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type linkStudentResolver interface {
	FindByNationalSchoolID(ctx context.Context, nationalID string) (*models.Student, error)
}

type linkRepository interface {
	CreateParentLink(ctx context.Context, link *models.ParentStudentLink) error
	ListChildren(ctx context.Context, parentID string) ([]models.LinkedChild, error)
	HasChild(ctx context.Context, parentID, studentID string) (bool, error)
	AssignTeacherStudent(ctx context.Context, teacherID, studentID string) error
	AssignTeacherGradeLevel(ctx context.Context, teacherID, gradeLevel string) error
	TeacherScopesStudent(ctx context.Context, teacherID, studentID string) (bool, error)
	TeacherGradeLevels(ctx context.Context, teacherID string) ([]string, error)
}

// LinkService associates parent accounts with student records and scopes
// teachers to students or grade levels.
type LinkService struct {
	links    linkRepository
	students linkStudentResolver
	logger   *zap.Logger
}

// NewLinkService constructs a LinkService.
func NewLinkService(links linkRepository, students linkStudentResolver, logger *zap.Logger) *LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkService{links: links, students: students, logger: logger}
}

// LinkParentToStudent resolves the student by its unique school-issued
// identifier and creates the link. An unknown identifier surfaces as an
// invalid-student-ID validation error; no link row is created.
func (s *LinkService) LinkParentToStudent(ctx context.Context, parentID, nationalSchoolID, relationship string) error {
	if nationalSchoolID == "" {
		return appErrors.Clone(appErrors.ErrInvalidStudentID, "")
	}
	student, err := s.students.FindByNationalSchoolID(ctx, nationalSchoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidStudentID, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	link := &models.ParentStudentLink{ParentID: parentID, StudentID: student.ID}
	if relationship != "" {
		link.Relationship = &relationship
	}
	if err := s.links.CreateParentLink(ctx, link); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create parent link")
	}
	s.logger.Info("parent linked to student", zap.String("parent_id", parentID), zap.String("student_id", student.ID))
	return nil
}

// ListChildren returns the students linked to the parent.
func (s *LinkService) ListChildren(ctx context.Context, parentID string) ([]models.LinkedChild, error) {
	children, err := s.links.ListChildren(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}
	if children == nil {
		children = []models.LinkedChild{}
	}
	return children, nil
}

// ParentHasChild reports whether the parent is linked to the student.
func (s *LinkService) ParentHasChild(ctx context.Context, parentID, studentID string) (bool, error) {
	ok, err := s.links.HasChild(ctx, parentID, studentID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check parent link")
	}
	return ok, nil
}

// AssignTeacherStudent scopes a teacher to one student.
func (s *LinkService) AssignTeacherStudent(ctx context.Context, teacherID, studentID string) error {
	if err := s.links.AssignTeacherStudent(ctx, teacherID, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign teacher to student")
	}
	return nil
}

// AssignTeacherGradeLevel scopes a teacher to a grade level.
func (s *LinkService) AssignTeacherGradeLevel(ctx context.Context, teacherID, gradeLevel string) error {
	if err := s.links.AssignTeacherGradeLevel(ctx, teacherID, gradeLevel); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign teacher to grade level")
	}
	return nil
}

// TeacherScopesStudent reports whether the teacher may act on the student.
func (s *LinkService) TeacherScopesStudent(ctx context.Context, teacherID, studentID string) (bool, error) {
	ok, err := s.links.TeacherScopesStudent(ctx, teacherID, studentID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher scope")
	}
	return ok, nil
}

// TeacherGradeLevels returns a teacher's assigned grade levels.
func (s *LinkService) TeacherGradeLevels(ctx context.Context, teacherID string) ([]string, error) {
	levels, err := s.links.TeacherGradeLevels(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher grade levels")
	}
	return levels, nil
}
