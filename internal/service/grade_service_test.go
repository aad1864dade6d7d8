package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type mockGradeRepo struct {
	created []*models.Grade
	updated []*models.Grade
	deleted []string
	byID    *models.Grade
	list    []models.Grade
	total   int
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	grade.ID = "g1"
	m.created = append(m.created, grade)
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	m.updated = append(m.updated, grade)
	return nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error) {
	return m.list, m.total, nil
}

func TestGradeServiceRecord(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, &mockScopeChecker{allowed: true}, validator.New(), zap.NewNop())

	grade, err := svc.Record(context.Background(), "teacher1", false, RecordGradeRequest{
		StudentID:  "s1",
		Subject:    "رياضيات",
		GradeType:  "اختبار",
		GradeValue: 18,
		MaxGrade:   20,
		Date:       "2026-09-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 18.0, grade.GradeValue)
	assert.Equal(t, "teacher1", grade.RecordedBy)
}

func TestGradeServiceRecordValueAboveMax(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, &mockScopeChecker{allowed: true}, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), "teacher1", false, RecordGradeRequest{
		StudentID:  "s1",
		Subject:    "رياضيات",
		GradeType:  "اختبار",
		GradeValue: 25,
		MaxGrade:   20,
		Date:       "2026-09-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestGradeServiceRecordOutsideScope(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockScopeChecker{allowed: false}, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), "teacher1", false, RecordGradeRequest{
		StudentID:  "s1",
		Subject:    "علوم",
		GradeType:  "واجب",
		GradeValue: 9,
		MaxGrade:   10,
		Date:       "2026-09-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceUpdateOwnership(t *testing.T) {
	repo := &mockGradeRepo{byID: &models.Grade{ID: "g1", RecordedBy: "teacher1"}}
	svc := NewGradeService(repo, &mockScopeChecker{allowed: true}, validator.New(), zap.NewNop())

	req := RecordGradeRequest{
		StudentID:  "s1",
		Subject:    "علوم",
		GradeType:  "واجب",
		GradeValue: 8,
		MaxGrade:   10,
		Date:       "2026-09-02",
	}

	_, err := svc.Update(context.Background(), "teacher2", false, "g1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), "teacher2", true, "g1", req)
	require.NoError(t, err)
	require.Len(t, repo.updated, 1)
}

func TestGradeServiceDeleteNotFound(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockScopeChecker{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "teacher1", true, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
