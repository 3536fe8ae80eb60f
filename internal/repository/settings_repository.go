package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenderdesk/api/internal/models"
)

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the settings row for userID, falling back to defaults when
// the account has never saved any.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (models.UserSettings, error) {
	const query = `
		SELECT user_id, theme, language, timezone, email_notifications, security_alerts, updated_at
		FROM user_settings WHERE user_id = $1
	`
	row := r.pool.QueryRow(ctx, query, userID)
	var s models.UserSettings
	if err := row.Scan(
		&s.UserID,
		&s.Theme,
		&s.Language,
		&s.Timezone,
		&s.EmailNotifications,
		&s.SecurityAlerts,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DefaultSettings(userID), nil
		}
		return models.UserSettings{}, err
	}
	return s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s models.UserSettings) error {
	const query = `
		INSERT INTO user_settings (user_id, theme, language, timezone, email_notifications, security_alerts, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			theme = EXCLUDED.theme,
			language = EXCLUDED.language,
			timezone = EXCLUDED.timezone,
			email_notifications = EXCLUDED.email_notifications,
			security_alerts = EXCLUDED.security_alerts,
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query,
		s.UserID,
		s.Theme,
		s.Language,
		s.Timezone,
		s.EmailNotifications,
		s.SecurityAlerts,
	)
	return err
}
