package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

// TickerRepository manages news ticker items.
type TickerRepository struct {
	db *sqlx.DB
}

// NewTickerRepository constructs a TickerRepository.
func NewTickerRepository(db *sqlx.DB) *TickerRepository {
	return &TickerRepository{db: db}
}

const tickerColumns = `id, title, content, icon_type, badge_color, display_order, is_active, created_at, updated_at`

// ListActive returns active items ordered for display.
func (r *TickerRepository) ListActive(ctx context.Context) ([]models.NewsTickerItem, error) {
	query := fmt.Sprintf("SELECT %s FROM news_ticker_items WHERE is_active = true ORDER BY display_order ASC", tickerColumns)
	var items []models.NewsTickerItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list active ticker items: %w", err)
	}
	return items, nil
}

// ListAll returns every item for administration.
func (r *TickerRepository) ListAll(ctx context.Context) ([]models.NewsTickerItem, error) {
	query := fmt.Sprintf("SELECT %s FROM news_ticker_items ORDER BY display_order ASC", tickerColumns)
	var items []models.NewsTickerItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list ticker items: %w", err)
	}
	return items, nil
}

// Create inserts a ticker item.
func (r *TickerRepository) Create(ctx context.Context, item *models.NewsTickerItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	const query = `INSERT INTO news_ticker_items (id, title, content, icon_type, badge_color, display_order, is_active, created_at, updated_at)
VALUES (:id, :title, :content, :icon_type, :badge_color, :display_order, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create ticker item: %w", err)
	}
	return nil
}

// Update modifies a ticker item.
func (r *TickerRepository) Update(ctx context.Context, item *models.NewsTickerItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE news_ticker_items SET title = :title, content = :content, icon_type = :icon_type,
badge_color = :badge_color, display_order = :display_order, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update ticker item: %w", err)
	}
	return nil
}

// Delete removes a ticker item.
func (r *TickerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM news_ticker_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete ticker item: %w", err)
	}
	return nil
}
