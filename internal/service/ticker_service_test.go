package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type mockTickerRepo struct {
	active  []models.NewsTickerItem
	all     []models.NewsTickerItem
	created []*models.NewsTickerItem
	updated []*models.NewsTickerItem
	deleted []string
}

func (m *mockTickerRepo) ListActive(ctx context.Context) ([]models.NewsTickerItem, error) {
	return m.active, nil
}

func (m *mockTickerRepo) ListAll(ctx context.Context) ([]models.NewsTickerItem, error) {
	return m.all, nil
}

func (m *mockTickerRepo) Create(ctx context.Context, item *models.NewsTickerItem) error {
	item.ID = "t1"
	m.created = append(m.created, item)
	return nil
}

func (m *mockTickerRepo) Update(ctx context.Context, item *models.NewsTickerItem) error {
	m.updated = append(m.updated, item)
	return nil
}

func (m *mockTickerRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func TestTickerServiceCreateActivePublishes(t *testing.T) {
	repo := &mockTickerRepo{}
	publisher := &recordingPublisher{}
	svc := NewTickerService(repo, publisher, validator.New(), zap.NewNop())

	item, err := svc.Create(context.Background(), TickerItemRequest{
		Title:    "رحلة مدرسية",
		Content:  "التسجيل يبدأ غدا",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", item.ID)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.AnnouncementsTopic, publisher.events[0].Topic)
	assert.Equal(t, models.EventInsert, publisher.events[0].Type)
}

func TestTickerServiceCreateInactiveSilent(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewTickerService(&mockTickerRepo{}, publisher, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), TickerItemRequest{
		Title:   "مسودة",
		Content: "غير منشورة بعد",
	})
	require.NoError(t, err)
	assert.Empty(t, publisher.events)
}

func TestTickerServiceCreateValidation(t *testing.T) {
	repo := &mockTickerRepo{}
	svc := NewTickerService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), TickerItemRequest{Title: "بدون محتوى"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestTickerServiceUpdatePublishes(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewTickerService(&mockTickerRepo{}, publisher, validator.New(), zap.NewNop())

	item, err := svc.Update(context.Background(), "t1", TickerItemRequest{
		Title:    "تحديث",
		Content:  "نص محدث",
		IsActive: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", item.ID)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.EventUpdate, publisher.events[0].Type)
}

func TestTickerServiceListActiveNeverNil(t *testing.T) {
	svc := NewTickerService(&mockTickerRepo{}, nil, validator.New(), zap.NewNop())

	items, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
