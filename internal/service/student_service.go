package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByNationalSchoolID(ctx context.Context, nationalID string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	CreateBatch(ctx context.Context, students []models.Student) (int, int, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest carries fields for creating or updating a student.
type CreateStudentRequest struct {
	NationalSchoolID string `json:"national_school_id" validate:"required,max=50"`
	FullName         string `json:"full_name" validate:"required,max=200"`
	GradeLevel       string `json:"grade_level" validate:"required,max=50"`
	ClassSection     string `json:"class_section" validate:"max=50"`
	DateOfBirth      string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// StudentService manages the student roster.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students matching the filter.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create adds a student after enforcing national_school_id uniqueness.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	exists, err := s.repo.ExistsByNationalSchoolID(ctx, req.NationalSchoolID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "national school ID already registered")
	}

	student := &models.Student{
		NationalSchoolID: req.NationalSchoolID,
		FullName:         req.FullName,
		GradeLevel:       req.GradeLevel,
	}
	applyOptional(student, req)
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByNationalSchoolID(ctx, req.NationalSchoolID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "national school ID already registered")
	}

	student.NationalSchoolID = req.NationalSchoolID
	student.FullName = req.FullName
	student.GradeLevel = req.GradeLevel
	student.ClassSection = nil
	student.DateOfBirth = nil
	applyOptional(student, req)
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student and, via foreign keys, its links and records.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

// ConfirmCandidates inserts staged extraction candidates into the roster.
// Rows missing a name or school ID are reported and skipped; duplicates are
// skipped by the batch insert.
func (s *StudentService) ConfirmCandidates(ctx context.Context, gradeLevel string, candidates []models.CandidateStudent) (*models.ImportResult, error) {
	if gradeLevel == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade level is required")
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no candidates to confirm")
	}

	result := &models.ImportResult{}
	var students []models.Student
	for i, candidate := range candidates {
		name := strings.TrimSpace(candidate.FullName)
		schoolID := strings.TrimSpace(candidate.NationalSchoolID)
		if name == "" || schoolID == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("candidate %d: full name and national school ID are required", i+1))
			continue
		}
		student := models.Student{
			NationalSchoolID: schoolID,
			FullName:         name,
			GradeLevel:       gradeLevel,
		}
		if section := strings.TrimSpace(candidate.ClassSection); section != "" {
			student.ClassSection = &section
		}
		students = append(students, student)
	}

	inserted, skipped, err := s.repo.CreateBatch(ctx, students)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm candidates")
	}
	result.Inserted = inserted
	result.Skipped = skipped
	s.logger.Info("extraction candidates confirmed",
		zap.String("grade_level", gradeLevel),
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

// ImportCSV ingests a roster file. Expected header:
// national_school_id,full_name,grade_level,class_section,date_of_birth.
// Rows with missing required fields are reported and skipped; duplicate
// national_school_id rows are skipped by the batch insert.
func (s *StudentService) ImportCSV(ctx context.Context, reader io.Reader) (*models.ImportResult, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty or unreadable CSV file")
	}
	index := columnIndex(header)
	if _, ok := index["national_school_id"]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "CSV header must include national_school_id")
	}
	if _, ok := index["full_name"]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "CSV header must include full_name")
	}

	result := &models.ImportResult{}
	var students []models.Student
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		student, rowErr := parseStudentRow(record, index)
		if rowErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, rowErr))
			continue
		}
		students = append(students, student)
	}

	inserted, skipped, err := s.repo.CreateBatch(ctx, students)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import students")
	}
	result.Inserted = inserted
	result.Skipped = skipped
	s.logger.Info("student import finished",
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

func applyOptional(student *models.Student, req CreateStudentRequest) {
	if req.ClassSection != "" {
		section := req.ClassSection
		student.ClassSection = &section
	}
	if req.DateOfBirth != "" {
		if dob, err := time.Parse("2006-01-02", req.DateOfBirth); err == nil {
			student.DateOfBirth = &dob
		}
	}
}

func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[key] = i
	}
	return index
}

func parseStudentRow(record []string, index map[string]int) (models.Student, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	nationalID := field("national_school_id")
	fullName := field("full_name")
	if nationalID == "" || fullName == "" {
		return models.Student{}, errors.New("national_school_id and full_name are required")
	}

	student := models.Student{
		NationalSchoolID: nationalID,
		FullName:         fullName,
		GradeLevel:       field("grade_level"),
	}
	if section := field("class_section"); section != "" {
		student.ClassSection = &section
	}
	if dob := field("date_of_birth"); dob != "" {
		parsed, err := time.Parse("2006-01-02", dob)
		if err != nil {
			return models.Student{}, fmt.Errorf("invalid date_of_birth %q", dob)
		}
		student.DateOfBirth = &parsed
	}
	return student, nil
}
