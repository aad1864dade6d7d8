package models

import "time"

// NewsTickerItem is a rotating headline shown on the dashboards. Active items
// render ordered by DisplayOrder.
type NewsTickerItem struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Content      string    `db:"content" json:"content"`
	IconType     string    `db:"icon_type" json:"icon_type"`
	BadgeColor   string    `db:"badge_color" json:"badge_color"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
