package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"tenderdesk/api/internal/models"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Create(ctx context.Context, entry models.ActivityLog) error {
	const query = `
		INSERT INTO activity_logs (id, user_id, action, description, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.Description,
		entry.IPAddress,
		entry.UserAgent,
	)
	return err
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit int, offset int) ([]models.ActivityLog, error) {
	const query = `
		SELECT id, user_id, action, description, ip_address, user_agent, created_at
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ActivityLog
	for rows.Next() {
		var entry models.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Description,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
