package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"mpdee-accounts/src/models"
	"mpdee-accounts/src/reconcile"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every query helper
// runs the same way inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the Postgres implementation of the reconcile and ledger stores.
type Store struct {
	q DBTX
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{q: pool}
}

// WithTx runs fn against a Store bound to one transaction. Nested calls use a
// savepoint.
func (s *Store) WithTx(ctx context.Context, fn func(tx reconcile.Store) error) error {
	return pgx.BeginFunc(ctx, s.q, func(tx pgx.Tx) error {
		return fn(&Store{q: tx})
	})
}

func (s *Store) CreateImport(ctx context.Context, batch *models.ImportBatch, txns []models.StagedTransaction) error {
	return pgx.BeginFunc(ctx, s.q, func(tx pgx.Tx) error {
		if err := InsertImportSQL(ctx, tx, batch); err != nil {
			return err
		}
		return InsertTransactionsSQL(ctx, tx, txns)
	})
}

func (s *Store) GetImport(ctx context.Context, importID string) (*models.ImportBatch, error) {
	return GetImportByIDSQL(ctx, s.q, importID)
}

func (s *Store) ListImports(ctx context.Context) ([]models.ImportSummary, error) {
	return ListImportsSQL(ctx, s.q)
}

func (s *Store) ListTransactions(ctx context.Context, importID string) ([]models.StagedTransaction, error) {
	return GetTransactionsForImportSQL(ctx, s.q, importID)
}

func (s *Store) IgnoreTransactions(ctx context.Context, importID string, ids []string) (int, error) {
	return IgnoreTransactionsSQL(ctx, s.q, importID, ids)
}

func (s *Store) ClaimTransaction(ctx context.Context, importID, id string) (*models.StagedTransaction, error) {
	return ClaimTransactionSQL(ctx, s.q, importID, id)
}

func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	return InsertExpenseSQL(ctx, s.q, e)
}

func (s *Store) ListExpenses(ctx context.Context, f models.ExpenseFilter) ([]models.Expense, int, error) {
	return ListExpensesSQL(ctx, s.q, f)
}

func (s *Store) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	return GetExpenseByIDSQL(ctx, s.q, id)
}

func (s *Store) UpdateExpense(ctx context.Context, e *models.Expense) error {
	return UpdateExpenseSQL(ctx, s.q, e)
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return DeleteExpenseSQL(ctx, s.q, id)
}

func (s *Store) SummarizeExpenses(ctx context.Context, from, to *time.Time) (*models.ExpenseSummary, error) {
	return SummarizeExpensesSQL(ctx, s.q, from, to)
}

// Numerics travel as text in both directions.
func parseNumeric(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func encodeRaw(raw models.RawRow) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func decodeRaw(s *string) (models.RawRow, error) {
	if s == nil {
		return nil, nil
	}
	var raw models.RawRow
	if err := json.Unmarshal([]byte(*s), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
