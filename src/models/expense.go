package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts go over the wire as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Expense struct {
	ID                  string          `json:"id"`
	Description         string          `json:"description"`
	Amount              decimal.Decimal `json:"amount"`
	Category            Category        `json:"category"`
	Date                time.Time       `json:"date"`
	BusinessArea        BusinessArea    `json:"business_area"`
	Notes               *string         `json:"notes"`
	ReceiptURL          *string         `json:"receipt_url"`
	SourceTransactionID *string         `json:"source_transaction_id"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ExpenseFilter narrows a ledger listing. Zero values mean "no constraint".
type ExpenseFilter struct {
	Search   string
	Category Category
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// ExpenseTotal is one row of a ledger summary.
type ExpenseTotal struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type ExpenseSummary struct {
	Count          int             `json:"count"`
	Total          decimal.Decimal `json:"total"`
	ByCategory     []ExpenseTotal  `json:"by_category"`
	ByBusinessArea []ExpenseTotal  `json:"by_business_area"`
}
