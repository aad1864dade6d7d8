package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type mockHomeworkRepo struct {
	created   []*models.Homework
	updated   []*models.Homework
	deleted   []string
	byID      *models.Homework
	findErr   error
	list      []models.Homework
	listTotal int
}

func (m *mockHomeworkRepo) Create(ctx context.Context, hw *models.Homework) error {
	hw.ID = "hw1"
	m.created = append(m.created, hw)
	return nil
}

func (m *mockHomeworkRepo) Update(ctx context.Context, hw *models.Homework) error {
	m.updated = append(m.updated, hw)
	return nil
}

func (m *mockHomeworkRepo) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byID, nil
}

func (m *mockHomeworkRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockHomeworkRepo) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error) {
	return m.list, m.listTotal, nil
}

func TestHomeworkServicePublish(t *testing.T) {
	repo := &mockHomeworkRepo{}
	svc := NewHomeworkService(repo, validator.New(), zap.NewNop())

	hw, err := svc.Publish(context.Background(), "teacher1", PublishHomeworkRequest{
		GradeLevel:  "الصف الرابع",
		Subject:     "رياضيات",
		Title:       "تمارين الضرب",
		Description: "حل صفحة ٤٢",
		DueDate:     "2026-09-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "teacher1", hw.TeacherID)
	require.NotNil(t, hw.Subject)
	assert.Equal(t, "رياضيات", *hw.Subject)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), hw.DueDate)
}

func TestHomeworkServiceUpdateOwnership(t *testing.T) {
	repo := &mockHomeworkRepo{byID: &models.Homework{ID: "hw1", TeacherID: "teacher1"}}
	svc := NewHomeworkService(repo, validator.New(), zap.NewNop())

	req := PublishHomeworkRequest{
		GradeLevel:  "الصف الرابع",
		Title:       "تمارين",
		Description: "نص",
		DueDate:     "2026-09-10",
	}

	_, err := svc.Update(context.Background(), "teacher2", false, "hw1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), "teacher2", true, "hw1", req)
	require.NoError(t, err)
	require.Len(t, repo.updated, 1)
}

func TestHomeworkServiceDeleteNotFound(t *testing.T) {
	repo := &mockHomeworkRepo{findErr: sql.ErrNoRows}
	svc := NewHomeworkService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "teacher1", false, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestHomeworkServiceListBadges(t *testing.T) {
	now := time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)
	repo := &mockHomeworkRepo{
		list: []models.Homework{
			{ID: "past", DueDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)},
			{ID: "soon", DueDate: time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)},
			{ID: "far", DueDate: time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)},
		},
		listTotal: 3,
	}
	svc := NewHomeworkService(repo, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return now }

	views, pagination, err := svc.List(context.Background(), models.HomeworkFilter{})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, models.DueBadgeOverdue, views[0].DueBadge)
	assert.Equal(t, models.DueBadgeSoon, views[1].DueBadge)
	assert.Equal(t, models.DueBadgeNone, views[2].DueBadge)
	assert.Equal(t, 3, pagination.TotalCount)
}

func TestBadgeForDueDayCountsWhole(t *testing.T) {
	due := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)

	// Late evening of the due day is still not overdue.
	assert.Equal(t, models.DueBadgeSoon, badgeFor(due, time.Date(2026, 9, 5, 23, 0, 0, 0, time.UTC)))
	// First second of the next day is.
	assert.Equal(t, models.DueBadgeOverdue, badgeFor(due, time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)))
}
