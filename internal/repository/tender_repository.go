package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenderdesk/api/internal/models"
)

var ErrTenderNotFound = errors.New("tender not found")

const tenderColumns = `
	id, reference, title, description, category, budget_cents, deadline, status, created_at, updated_at
`

type TenderRepository struct {
	pool *pgxpool.Pool
}

func NewTenderRepository(pool *pgxpool.Pool) *TenderRepository {
	return &TenderRepository{pool: pool}
}

func scanTender(row pgx.Row) (models.Tender, error) {
	var t models.Tender
	err := row.Scan(
		&t.ID,
		&t.Reference,
		&t.Title,
		&t.Description,
		&t.Category,
		&t.BudgetCents,
		&t.Deadline,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tender{}, ErrTenderNotFound
		}
		return models.Tender{}, err
	}
	return t, nil
}

func (r *TenderRepository) Create(ctx context.Context, t models.Tender) error {
	const query = `
		INSERT INTO tenders (id, reference, title, description, category, budget_cents, deadline, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.Reference,
		t.Title,
		t.Description,
		t.Category,
		t.BudgetCents,
		t.Deadline,
		t.Status,
	)
	return err
}

func (r *TenderRepository) GetByID(ctx context.Context, id string) (models.Tender, error) {
	const query = `SELECT ` + tenderColumns + ` FROM tenders WHERE id = $1`
	return scanTender(r.pool.QueryRow(ctx, query, id))
}

// List returns tenders, optionally filtered by status. An empty status
// returns everything.
func (r *TenderRepository) List(ctx context.Context, status models.TenderStatus, limit int, offset int) ([]models.Tender, error) {
	const query = `
		SELECT ` + tenderColumns + `
		FROM tenders
		WHERE ($1 = '' OR status = $1)
		ORDER BY deadline ASC NULLS LAST, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, t)
	}
	return tenders, rows.Err()
}

func (r *TenderRepository) Update(ctx context.Context, t models.Tender) (models.Tender, error) {
	const query = `
		UPDATE tenders
		SET title = $2, description = $3, category = $4, budget_cents = $5, deadline = $6, status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + tenderColumns
	return scanTender(r.pool.QueryRow(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		t.Category,
		t.BudgetCents,
		t.Deadline,
		t.Status,
	))
}

func (r *TenderRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tenders WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTenderNotFound
	}
	return nil
}
