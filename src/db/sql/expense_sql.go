package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"mpdee-accounts/src/models"
)

const expenseColumns = `id, description, amount::text, category, date, business_area, notes, receipt_url, source_transaction_id, created_at, updated_at`

func InsertExpenseSQL(ctx context.Context, q DBTX, e *models.Expense) error {
	query := `
		INSERT INTO expenses (id, description, amount, category, date, business_area,
			notes, receipt_url, source_transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := q.Exec(ctx, query,
		e.ID, e.Description, e.Amount.String(), string(e.Category), e.Date, string(e.BusinessArea),
		e.Notes, e.ReceiptURL, e.SourceTransactionID, e.CreatedAt, e.UpdatedAt)
	return err
}

func GetExpenseByIDSQL(ctx context.Context, q DBTX, id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFound("expense %s not found", id)
		}
		return nil, err
	}
	return e, nil
}

func ListExpensesSQL(ctx context.Context, q DBTX, f models.ExpenseFilter) ([]models.Expense, int, error) {
	where, args := expenseWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM expenses` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses` + where +
		fmt.Sprintf(` ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := q.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, total, rows.Err()
}

func UpdateExpenseSQL(ctx context.Context, q DBTX, e *models.Expense) error {
	query := `
		UPDATE expenses
		SET description = $2, amount = $3::numeric, category = $4, date = $5,
			business_area = $6, notes = $7, receipt_url = $8, updated_at = $9
		WHERE id = $1
	`
	cmd, err := q.Exec(ctx, query,
		e.ID, e.Description, e.Amount.String(), string(e.Category), e.Date, string(e.BusinessArea),
		e.Notes, e.ReceiptURL, e.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.NotFound("expense %s not found", e.ID)
	}
	return nil
}

func DeleteExpenseSQL(ctx context.Context, q DBTX, id string) error {
	cmd, err := q.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.NotFound("expense %s not found", id)
	}
	return nil
}

func SummarizeExpensesSQL(ctx context.Context, q DBTX, from, to *time.Time) (*models.ExpenseSummary, error) {
	where, args := expenseWhere(models.ExpenseFilter{From: from, To: to})

	byCategory, err := expenseTotalsSQL(ctx, q, "category", where, args)
	if err != nil {
		return nil, err
	}
	byArea, err := expenseTotalsSQL(ctx, q, "business_area", where, args)
	if err != nil {
		return nil, err
	}

	sum := &models.ExpenseSummary{
		Total:          decimal.Zero,
		ByCategory:     byCategory,
		ByBusinessArea: byArea,
	}
	for _, t := range byCategory {
		sum.Count += t.Count
		sum.Total = sum.Total.Add(t.Total)
	}
	return sum, nil
}

// column is one of a fixed set of names, never caller input.
func expenseTotalsSQL(ctx context.Context, q DBTX, column, where string, args []any) ([]models.ExpenseTotal, error) {
	query := `
		SELECT ` + column + `, COUNT(*), COALESCE(SUM(amount), 0)::text
		FROM expenses` + where + `
		GROUP BY ` + column + `
		ORDER BY ` + column

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []models.ExpenseTotal{}
	for rows.Next() {
		var (
			t     models.ExpenseTotal
			total string
		)
		if err := rows.Scan(&t.Key, &t.Count, &total); err != nil {
			return nil, err
		}
		if t.Total, err = parseNumeric(total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// likeEscaper makes a search term match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func expenseWhere(f models.ExpenseFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Search)+"%")
		conds = append(conds, fmt.Sprintf(
			`(description ILIKE $%d ESCAPE '\' OR COALESCE(notes, '') ILIKE $%d ESCAPE '\')`,
			len(args), len(args)))
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		conds = append(conds, fmt.Sprintf(`category = $%d`, len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf(`date >= $%d`, len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf(`date <= $%d`, len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var (
		e            models.Expense
		amount       string
		category     string
		businessArea string
	)
	err := row.Scan(&e.ID, &e.Description, &amount, &category, &e.Date, &businessArea,
		&e.Notes, &e.ReceiptURL, &e.SourceTransactionID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.Amount, err = parseNumeric(amount); err != nil {
		return nil, err
	}
	e.Category = models.Category(category)
	e.BusinessArea = models.BusinessArea(businessArea)
	return &e, nil
}
