// Package domain holds the expense model.
package domain

import "time"

// Expense is one recorded expenditure. Amount is carried as a decimal string
// to avoid float rounding on money; the database column is NUMERIC(12,2).
type Expense struct {
	ID          int64      `json:"id"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Amount      string     `json:"amount"`
	IncurredOn  string     `json:"incurred_on"` // YYYY-MM-DD
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// Patch is a sparse update: nil fields are left untouched. Updates never
// build SQL strings conditionally; the repository applies COALESCE per column.
type Patch struct {
	Category    *string
	Description *string
	Amount      *string
	IncurredOn  *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Category == nil && p.Description == nil && p.Amount == nil && p.IncurredOn == nil
}
