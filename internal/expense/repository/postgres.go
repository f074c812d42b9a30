package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"finboard/internal/expense/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an expense repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns non-deleted expenses matching the filter, newest incurred date
// first with id as the tiebreak.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.Expense, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, description, amount::text, to_char(incurred_on, 'YYYY-MM-DD'),
			created_by, created_at, updated_at
		 FROM expenses
		 WHERE deleted_at IS NULL AND ($1 = '' OR category = $1)
		 ORDER BY incurred_on DESC, id DESC
		 LIMIT $2 OFFSET $3`, f.Category, limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Expense
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.IncurredOn,
			&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// GetByID returns the expense, or nil if not found or soft-deleted.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category, description, amount::text, to_char(incurred_on, 'YYYY-MM-DD'),
			created_by, created_at, updated_at
		 FROM expenses WHERE id = $1 AND deleted_at IS NULL`, id)
	var e domain.Expense
	err := row.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.IncurredOn,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// Create inserts the expense and fills in its generated id.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Expense) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO expenses (category, description, amount, incurred_on, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3::numeric, $4::date, $5, $6, $6)
		 RETURNING id`,
		e.Category, e.Description, e.Amount, e.IncurredOn, e.CreatedBy, e.CreatedAt).Scan(&e.ID)
}

// Update applies the sparse patch in one statement; absent fields fall through
// COALESCE to the current column values. Returns the updated row, or nil when
// the expense does not exist.
func (r *PostgresRepository) Update(ctx context.Context, id int64, p domain.Patch) (*domain.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE expenses SET
			category    = COALESCE($2, category),
			description = COALESCE($3, description),
			amount      = COALESCE($4::numeric, amount),
			incurred_on = COALESCE($5::date, incurred_on),
			updated_at  = $6
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING id, category, description, amount::text, to_char(incurred_on, 'YYYY-MM-DD'),
			created_by, created_at, updated_at`,
		id, p.Category, p.Description, p.Amount, p.IncurredOn, time.Now().UTC())
	var e domain.Expense
	err := row.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.IncurredOn,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// Delete soft-deletes the expense. Returns false when it was already gone.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
