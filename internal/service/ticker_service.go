package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type tickerRepository interface {
	ListActive(ctx context.Context) ([]models.NewsTickerItem, error)
	ListAll(ctx context.Context) ([]models.NewsTickerItem, error)
	Create(ctx context.Context, item *models.NewsTickerItem) error
	Update(ctx context.Context, item *models.NewsTickerItem) error
	Delete(ctx context.Context, id string) error
}

// TickerItemRequest carries fields for creating or updating a ticker item.
type TickerItemRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Content      string `json:"content" validate:"required,max=1000"`
	IconType     string `json:"icon_type" validate:"max=50"`
	BadgeColor   string `json:"badge_color" validate:"max=30"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
	IsActive     bool   `json:"is_active"`
}

// TickerService manages the announcements news ticker.
type TickerService struct {
	repo      tickerRepository
	publisher EventPublisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTickerService constructs a TickerService.
func NewTickerService(repo tickerRepository, publisher EventPublisher, validate *validator.Validate, logger *zap.Logger) *TickerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &TickerService{repo: repo, publisher: publisher, validator: validate, logger: logger}
}

// ListActive returns the items currently shown on the dashboards.
func (s *TickerService) ListActive(ctx context.Context) ([]models.NewsTickerItem, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ticker items")
	}
	if items == nil {
		items = []models.NewsTickerItem{}
	}
	return items, nil
}

// ListAll returns every item for administration.
func (s *TickerService) ListAll(ctx context.Context) ([]models.NewsTickerItem, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ticker items")
	}
	if items == nil {
		items = []models.NewsTickerItem{}
	}
	return items, nil
}

// Create adds a ticker item. Active items raise an announcements event so
// connected dashboards refresh.
func (s *TickerService) Create(ctx context.Context, req TickerItemRequest) (*models.NewsTickerItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ticker payload")
	}
	item := &models.NewsTickerItem{
		Title:        req.Title,
		Content:      req.Content,
		IconType:     req.IconType,
		BadgeColor:   req.BadgeColor,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create ticker item")
	}
	if item.IsActive {
		s.publishAnnouncement(models.EventInsert, item)
	}
	return item, nil
}

// Update modifies a ticker item and raises an announcements event.
func (s *TickerService) Update(ctx context.Context, id string, req TickerItemRequest) (*models.NewsTickerItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ticker payload")
	}
	item := &models.NewsTickerItem{
		ID:           id,
		Title:        req.Title,
		Content:      req.Content,
		IconType:     req.IconType,
		BadgeColor:   req.BadgeColor,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update ticker item")
	}
	s.publishAnnouncement(models.EventUpdate, item)
	return item, nil
}

// Delete removes a ticker item.
func (s *TickerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete ticker item")
	}
	return nil
}

func (s *TickerService) publishAnnouncement(eventType models.EventType, item *models.NewsTickerItem) {
	s.publisher.Publish(models.Event{
		Topic:     models.AnnouncementsTopic,
		Table:     "news_ticker_items",
		Type:      eventType,
		Payload:   item,
		CreatedAt: time.Now().UTC(),
	})
}
