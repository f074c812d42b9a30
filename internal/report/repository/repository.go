// Package repository runs the read-only aggregation queries behind the
// reporting endpoints.
package repository

import "context"

// TrendPoint is one day in the revenue trend.
type TrendPoint struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Amount string `json:"amount"`
}

// CategoryTotal is one category's aggregate in the performance report.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int64  `json:"count"`
}

// MonthlyFlow is one month of cash movement.
type MonthlyFlow struct {
	Month    string `json:"month"` // YYYY-MM
	Outgoing string `json:"outgoing"`
}

// Repository is the reporting read contract. All amounts come back as
// decimal strings straight from NUMERIC columns.
type Repository interface {
	RevenueTrend(ctx context.Context, periodDays int) ([]TrendPoint, error)
	CategoryPerformance(ctx context.Context, limit int) ([]CategoryTotal, error)
	CashFlow(ctx context.Context, periodDays int) ([]MonthlyFlow, error)
}
