package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenderdesk/api/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, doc models.Document) error {
	const query = `
		INSERT INTO documents (id, user_id, original_name, object_key, mime_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.UserID,
		doc.OriginalName,
		doc.ObjectKey,
		doc.MimeType,
		doc.SizeBytes,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, userID string, id string) (models.Document, error) {
	const query = `
		SELECT id, user_id, original_name, object_key, mime_type, size_bytes, created_at
		FROM documents WHERE id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	var doc models.Document
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.OriginalName,
		&doc.ObjectKey,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Document{}, ErrDocumentNotFound
		}
		return models.Document{}, err
	}
	return doc, nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const query = `
		SELECT id, user_id, original_name, object_key, mime_type, size_bytes, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.OriginalName,
			&doc.ObjectKey,
			&doc.MimeType,
			&doc.SizeBytes,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) Delete(ctx context.Context, userID string, id string) error {
	const query = `DELETE FROM documents WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
