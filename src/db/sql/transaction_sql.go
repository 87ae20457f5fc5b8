package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"mpdee-accounts/src/models"
)

const transactionColumns = `id, import_id, line, date, description, amount::text, status, raw::text`

// InsertTransactionsSQL queues one insert per row and sends them as a single
// batch.
func InsertTransactionsSQL(ctx context.Context, q DBTX, txns []models.StagedTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	query := `
		INSERT INTO bank_transactions (id, import_id, line, date, description, amount, status, raw)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::jsonb)
	`
	batch := &pgx.Batch{}
	for _, t := range txns {
		raw, err := encodeRaw(t.Raw)
		if err != nil {
			return err
		}
		batch.Queue(query, t.ID, t.ImportID, t.Line, t.Date, t.Description, t.Amount.String(), string(t.Status), raw)
	}

	br := q.SendBatch(ctx, batch)
	for range txns {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

func GetTransactionsForImportSQL(ctx context.Context, q DBTX, importID string) ([]models.StagedTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM bank_transactions
		WHERE import_id = $1
		ORDER BY date DESC, line ASC
	`
	rows, err := q.Query(ctx, query, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []models.StagedTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func IgnoreTransactionsSQL(ctx context.Context, q DBTX, importID string, ids []string) (int, error) {
	query := `
		UPDATE bank_transactions
		SET status = 'IGNORED'
		WHERE import_id = $1 AND id = ANY($2) AND status = 'PENDING'
	`
	cmd, err := q.Exec(ctx, query, importID, ids)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

// ClaimTransactionSQL flips a single PENDING row to ADDED. The WHERE clause is
// the guard: a row already claimed by a concurrent commit matches nothing.
func ClaimTransactionSQL(ctx context.Context, q DBTX, importID, id string) (*models.StagedTransaction, error) {
	query := `
		UPDATE bank_transactions
		SET status = 'ADDED'
		WHERE id = $1 AND import_id = $2 AND status = 'PENDING'
		RETURNING ` + transactionColumns

	t, err := scanTransaction(q.QueryRow(ctx, query, id, importID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.Status = models.StatusPending
	return t, nil
}

func scanTransaction(row pgx.Row) (*models.StagedTransaction, error) {
	var (
		t      models.StagedTransaction
		amount string
		status string
		raw    *string
	)
	err := row.Scan(&t.ID, &t.ImportID, &t.Line, &t.Date, &t.Description, &amount, &status, &raw)
	if err != nil {
		return nil, err
	}
	if t.Amount, err = parseNumeric(amount); err != nil {
		return nil, err
	}
	t.Status = models.TransactionStatus(status)
	if t.Raw, err = decodeRaw(raw); err != nil {
		return nil, err
	}
	return &t, nil
}
