package reconcile

import (
	"context"

	"mpdee-accounts/src/models"
)

// Store persists import batches, their staged transactions and the expenses
// committed from them. Implementations return errors wrapping
// models.ErrNotFound for unknown batches.
type Store interface {
	// CreateImport stores the batch and all of its rows atomically.
	CreateImport(ctx context.Context, batch *models.ImportBatch, txns []models.StagedTransaction) error
	GetImport(ctx context.Context, importID string) (*models.ImportBatch, error)
	ListImports(ctx context.Context) ([]models.ImportSummary, error)
	// ListTransactions returns the batch rows by date descending, then line.
	ListTransactions(ctx context.Context, importID string) ([]models.StagedTransaction, error)
	// IgnoreTransactions flips PENDING rows among ids to IGNORED and reports
	// how many changed.
	IgnoreTransactions(ctx context.Context, importID string, ids []string) (int, error)
	// ClaimTransaction flips one PENDING row to ADDED and returns it as it was
	// before the flip. It returns nil, nil when the row is missing, belongs to
	// another batch or is no longer PENDING.
	ClaimTransaction(ctx context.Context, importID, id string) (*models.StagedTransaction, error)
	CreateExpense(ctx context.Context, e *models.Expense) error
	// WithTx runs fn against a Store bound to a single transaction, committing
	// if fn returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// ListingCache holds per-batch transaction listings between writes.
type ListingCache interface {
	GetTransactions(importID string) ([]models.StagedTransaction, bool)
	SetTransactions(importID string, txns []models.StagedTransaction)
	DelTransactions(importID string)
}

type noCache struct{}

func (noCache) GetTransactions(string) ([]models.StagedTransaction, bool) { return nil, false }
func (noCache) SetTransactions(string, []models.StagedTransaction)        {}
func (noCache) DelTransactions(string)                                     {}
