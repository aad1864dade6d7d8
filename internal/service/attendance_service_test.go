package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type mockAttendanceRepo struct {
	upserted []*models.Attendance
	list     []models.AttendanceDetail
	total    int
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.Attendance) error {
	record.ID = "a1"
	m.upserted = append(m.upserted, record)
	return nil
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	return m.list, m.total, nil
}

type mockScopeChecker struct {
	allowed bool
	checked [][2]string
}

func (m *mockScopeChecker) TeacherScopesStudent(ctx context.Context, teacherID, studentID string) (bool, error) {
	m.checked = append(m.checked, [2]string{teacherID, studentID})
	return m.allowed, nil
}

func TestAttendanceServiceRecord(t *testing.T) {
	repo := &mockAttendanceRepo{}
	scope := &mockScopeChecker{allowed: true}
	svc := NewAttendanceService(repo, scope, validator.New(), zap.NewNop())

	record, err := svc.Record(context.Background(), "teacher1", false, RecordAttendanceRequest{
		StudentID: "s1",
		Date:      "2026-09-01",
		Status:    string(models.AttendancePresent),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, record.Status)
	assert.Equal(t, "teacher1", record.RecordedBy)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), record.Date)
	assert.Equal(t, [][2]string{{"teacher1", "s1"}}, scope.checked)
}

func TestAttendanceServiceRecordUnknownStatus(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockScopeChecker{allowed: true}, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), "teacher1", false, RecordAttendanceRequest{
		StudentID: "s1",
		Date:      "2026-09-01",
		Status:    "present",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.upserted)
}

func TestAttendanceServiceRecordOutsideScope(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockScopeChecker{allowed: false}, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), "teacher1", false, RecordAttendanceRequest{
		StudentID: "s1",
		Date:      "2026-09-01",
		Status:    string(models.AttendanceAbsent),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceRecordAdminSkipsScope(t *testing.T) {
	repo := &mockAttendanceRepo{}
	scope := &mockScopeChecker{allowed: false}
	svc := NewAttendanceService(repo, scope, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), "admin1", true, RecordAttendanceRequest{
		StudentID: "s1",
		Date:      "2026-09-01",
		Status:    string(models.AttendanceLate),
	})
	require.NoError(t, err)
	assert.Empty(t, scope.checked)
	require.Len(t, repo.upserted, 1)
}

func TestAttendanceServiceList(t *testing.T) {
	repo := &mockAttendanceRepo{
		list:  []models.AttendanceDetail{{Attendance: models.Attendance{ID: "a1", Status: models.AttendanceExcusedAbsent}, StudentName: "سارة أحمد"}},
		total: 1,
	}
	svc := NewAttendanceService(repo, &mockScopeChecker{}, validator.New(), zap.NewNop())

	records, pagination, err := svc.List(context.Background(), models.AttendanceFilter{StudentID: "s1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, pagination.TotalCount)
}
