package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"mpdee-accounts/src/models"
)

func InsertImportSQL(ctx context.Context, q DBTX, batch *models.ImportBatch) error {
	query := `
		INSERT INTO bank_statement_imports (id, filename, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := q.Exec(ctx, query, batch.ID, batch.Filename, batch.CreatedAt)
	return err
}

func GetImportByIDSQL(ctx context.Context, q DBTX, importID string) (*models.ImportBatch, error) {
	query := `SELECT id, filename, created_at FROM bank_statement_imports WHERE id = $1`

	var b models.ImportBatch
	err := q.QueryRow(ctx, query, importID).Scan(&b.ID, &b.Filename, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFound("import %s not found", importID)
		}
		return nil, err
	}
	return &b, nil
}

func ListImportsSQL(ctx context.Context, q DBTX) ([]models.ImportSummary, error) {
	query := `
		SELECT i.id, i.filename, i.created_at,
			COUNT(t.id) FILTER (WHERE t.status = 'PENDING'),
			COUNT(t.id) FILTER (WHERE t.status = 'ADDED'),
			COUNT(t.id) FILTER (WHERE t.status = 'IGNORED')
		FROM bank_statement_imports i
		LEFT JOIN bank_transactions t ON t.import_id = i.id
		GROUP BY i.id, i.filename, i.created_at
		ORDER BY i.created_at DESC
	`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	imports := []models.ImportSummary{}
	for rows.Next() {
		var s models.ImportSummary
		err := rows.Scan(&s.ID, &s.Filename, &s.CreatedAt, &s.Pending, &s.Added, &s.Ignored)
		if err != nil {
			return nil, err
		}
		imports = append(imports, s)
	}
	return imports, rows.Err()
}
