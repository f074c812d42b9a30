package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a report repository that reads from the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// RevenueTrend returns per-day expense totals for the trailing period.
// Days without activity are absent from the result.
func (r *PostgresRepository) RevenueTrend(ctx context.Context, periodDays int) ([]TrendPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(incurred_on, 'YYYY-MM-DD'), SUM(amount)::text
		 FROM expenses
		 WHERE deleted_at IS NULL
		   AND incurred_on >= CURRENT_DATE - $1::int
		 GROUP BY incurred_on
		 ORDER BY incurred_on`, periodDays)
	if err != nil {
		return nil, fmt.Errorf("revenue trend query: %w", err)
	}
	defer rows.Close()

	out := []TrendPoint{}
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Date, &p.Amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CategoryPerformance returns the top categories by total spend.
func (r *PostgresRepository) CategoryPerformance(ctx context.Context, limit int) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount)::text, COUNT(*)
		 FROM expenses
		 WHERE deleted_at IS NULL
		 GROUP BY category
		 ORDER BY SUM(amount) DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("category performance query: %w", err)
	}
	defer rows.Close()

	out := []CategoryTotal{}
	for rows.Next() {
		var c CategoryTotal
		if err := rows.Scan(&c.Category, &c.Total, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CashFlow returns per-month outgoing totals for the trailing period.
func (r *PostgresRepository) CashFlow(ctx context.Context, periodDays int) ([]MonthlyFlow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(date_trunc('month', incurred_on), 'YYYY-MM'), SUM(amount)::text
		 FROM expenses
		 WHERE deleted_at IS NULL
		   AND incurred_on >= CURRENT_DATE - $1::int
		 GROUP BY date_trunc('month', incurred_on)
		 ORDER BY date_trunc('month', incurred_on)`, periodDays)
	if err != nil {
		return nil, fmt.Errorf("cash flow query: %w", err)
	}
	defer rows.Close()

	out := []MonthlyFlow{}
	for rows.Next() {
		var m MonthlyFlow
		if err := rows.Scan(&m.Month, &m.Outgoing); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
