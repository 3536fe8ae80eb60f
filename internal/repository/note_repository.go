package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenderdesk/api/internal/models"
)

var ErrNoteNotFound = errors.New("note not found")

type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

func (r *NoteRepository) Create(ctx context.Context, note models.Note) error {
	const query = `
		INSERT INTO notes (id, user_id, title, content, color, is_pinned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.Color,
		note.IsPinned,
	)
	return err
}

// GetByID scopes the lookup to userID so one account can never read
// another account's note.
func (r *NoteRepository) GetByID(ctx context.Context, userID string, id string) (models.Note, error) {
	const query = `
		SELECT id, user_id, title, content, color, is_pinned, created_at, updated_at
		FROM notes WHERE id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	var note models.Note
	if err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.Color,
		&note.IsPinned,
		&note.CreatedAt,
		&note.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}
	return note, nil
}

func (r *NoteRepository) ListByUser(ctx context.Context, userID string) ([]models.Note, error) {
	const query = `
		SELECT id, user_id, title, content, color, is_pinned, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		ORDER BY is_pinned DESC, updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(
			&note.ID,
			&note.UserID,
			&note.Title,
			&note.Content,
			&note.Color,
			&note.IsPinned,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) Update(ctx context.Context, note models.Note) error {
	const query = `
		UPDATE notes
		SET title = $3, content = $4, color = $5, is_pinned = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	cmd, err := r.pool.Exec(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.Color,
		note.IsPinned,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, userID string, id string) error {
	const query = `DELETE FROM notes WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}
