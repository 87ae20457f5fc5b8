package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the review state of a staged bank transaction.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusAdded   TransactionStatus = "ADDED"
	StatusIgnored TransactionStatus = "IGNORED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s TransactionStatus) Terminal() bool {
	return s == StatusAdded || s == StatusIgnored
}

// RawRow is the original CSV record keyed by normalized header name.
type RawRow map[string]string

// StagedTransaction is a bank statement line awaiting categorization.
type StagedTransaction struct {
	ID          string            `json:"id"`
	ImportID    string            `json:"import_id"`
	Line        int               `json:"line"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"` // sign as exported by the bank
	Status      TransactionStatus `json:"status"`
	Raw         RawRow            `json:"raw,omitempty"`
}

// CommitSelection picks a staged transaction to turn into an expense.
type CommitSelection struct {
	TransactionID string `json:"transaction_id"`
	Category      string `json:"category"`
	BusinessArea  string `json:"business_area"`
	Notes         string `json:"notes,omitempty"`
}
