package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

// ThemeRepository manages theme settings.
type ThemeRepository struct {
	db *sqlx.DB
}

// NewThemeRepository constructs a ThemeRepository.
func NewThemeRepository(db *sqlx.DB) *ThemeRepository {
	return &ThemeRepository{db: db}
}

// List returns all theme rows.
func (r *ThemeRepository) List(ctx context.Context) ([]models.ThemeSetting, error) {
	var themes []models.ThemeSetting
	if err := r.db.SelectContext(ctx, &themes, `SELECT theme_name, is_active, updated_at FROM theme_settings ORDER BY theme_name`); err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	return themes, nil
}

// ActiveName returns the currently active theme.
func (r *ThemeRepository) ActiveName(ctx context.Context) (string, error) {
	var name string
	if err := r.db.GetContext(ctx, &name, `SELECT theme_name FROM theme_settings WHERE is_active = true LIMIT 1`); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("active theme: %w", err)
	}
	return name, nil
}

// Activate switches the active theme in one statement: the target row is
// activated and every other row deactivated, so concurrent switches cannot
// leave zero or two active rows. Returns sql.ErrNoRows when the theme does
// not exist (the guard clause makes the statement touch no rows).
func (r *ThemeRepository) Activate(ctx context.Context, themeName string) error {
	const query = `UPDATE theme_settings SET is_active = (theme_name = $1), updated_at = $2
WHERE EXISTS (SELECT 1 FROM theme_settings t WHERE t.theme_name = $1)`
	result, err := r.db.ExecContext(ctx, query, themeName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("activate theme: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate theme rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
