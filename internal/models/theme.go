package models

import "time"

// ThemeSetting selects the UI theme. Exactly one row is active at a time; the
// switch is performed as a single conditional update so two concurrent
// switches cannot leave zero or two active rows.
type ThemeSetting struct {
	ThemeName string    `db:"theme_name" json:"theme_name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
