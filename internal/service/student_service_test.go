package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type mockStudentRepo struct {
	list         []models.Student
	listTotal    int
	byID         *models.Student
	exists       bool
	created      []*models.Student
	batch        []models.Student
	batchSkipped int
	updated      []*models.Student
	deleted      []string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return m.list, m.listTotal, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockStudentRepo) FindByNationalSchoolID(ctx context.Context, nationalID string) (*models.Student, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockStudentRepo) ExistsByNationalSchoolID(ctx context.Context, nationalID, excludeID string) (bool, error) {
	return m.exists, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = "s1"
	m.created = append(m.created, student)
	return nil
}

func (m *mockStudentRepo) CreateBatch(ctx context.Context, students []models.Student) (int, int, error) {
	m.batch = students
	return len(students) - m.batchSkipped, m.batchSkipped, nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.updated = append(m.updated, student)
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockStudentRepo) CountAll(ctx context.Context) (int, error) {
	return m.listTotal, nil
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		NationalSchoolID: "SCH-1001",
		FullName:         "سارة أحمد",
		GradeLevel:       "الصف الثالث",
		ClassSection:     "أ",
	})
	require.NoError(t, err)
	assert.Equal(t, "SCH-1001", student.NationalSchoolID)
	require.NotNil(t, student.ClassSection)
	assert.Equal(t, "أ", *student.ClassSection)
}

func TestStudentServiceCreateDuplicate(t *testing.T) {
	repo := &mockStudentRepo{exists: true}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		NationalSchoolID: "SCH-1001",
		FullName:         "سارة أحمد",
		GradeLevel:       "الصف الثالث",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceImportCSV(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	csvData := strings.Join([]string{
		"national_school_id,full_name,grade_level,class_section,date_of_birth",
		"SCH-1001,سارة أحمد,الصف الثالث,أ,2017-04-12",
		"SCH-1002,عمر خالد,الصف الثالث,ب,",
		",بدون معرف,الصف الثالث,,",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "line 4")
	require.Len(t, repo.batch, 2)
	assert.Equal(t, "SCH-1001", repo.batch[0].NationalSchoolID)
	require.NotNil(t, repo.batch[0].DateOfBirth)
}

func TestStudentServiceImportCSVBOMHeader(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	csvData := "\ufeffnational_school_id,full_name\nSCH-2001,ليان محمد\n"
	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
}

func TestStudentServiceConfirmCandidates(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	result, err := svc.ConfirmCandidates(context.Background(), "الصف الثالث", []models.CandidateStudent{
		{FullName: "سارة أحمد", NationalSchoolID: "SCH-1001", ClassSection: "أ"},
		{FullName: "بدون معرف"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.Errors, 1)
	require.Len(t, repo.batch, 1)
	assert.Equal(t, "الصف الثالث", repo.batch[0].GradeLevel)
}

func TestStudentServiceConfirmCandidatesEmpty(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, validator.New(), zap.NewNop())

	_, err := svc.ConfirmCandidates(context.Background(), "الصف الثالث", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceImportCSVMissingColumns(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, validator.New(), zap.NewNop())

	_, err := svc.ImportCSV(context.Background(), strings.NewReader("full_name\nسارة\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
