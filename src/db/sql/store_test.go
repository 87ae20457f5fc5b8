package db_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdb "mpdee-accounts/src/db"
	db "mpdee-accounts/src/db/sql"
	"mpdee-accounts/src/models"
	"mpdee-accounts/src/reconcile"
)

// newStore connects to TEST_DATABASE_URL. The tests are skipped without it.
func newStore(t *testing.T) *db.Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := appdb.Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, appdb.Migrate(ctx, pool))
	return db.NewStore(pool)
}

func seedImport(t *testing.T, store *db.Store) (*models.ImportBatch, []models.StagedTransaction) {
	t.Helper()
	batch := &models.ImportBatch{ID: uuid.NewString(), Filename: "statement.csv", CreatedAt: time.Now().UTC()}
	txns := []models.StagedTransaction{
		{
			ID: uuid.NewString(), ImportID: batch.ID, Line: 2,
			Date:        time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
			Description: "Coffee", Amount: decimal.RequireFromString("-4.50"),
			Status: models.StatusPending, Raw: models.RawRow{"description": "Coffee"},
		},
		{
			ID: uuid.NewString(), ImportID: batch.ID, Line: 3,
			Date:        time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC),
			Description: "Refund", Amount: decimal.RequireFromString("10.00"),
			Status: models.StatusPending,
		},
	}
	require.NoError(t, store.CreateImport(context.Background(), batch, txns))
	return batch, txns
}

func TestStoreImportRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	batch, _ := seedImport(t, store)

	got, err := store.GetImport(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "statement.csv", got.Filename)

	txns, err := store.ListTransactions(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "Refund", txns[0].Description)
	assert.True(t, decimal.RequireFromString("-4.50").Equal(txns[1].Amount))
	assert.Equal(t, "Coffee", txns[1].Raw["description"])

	_, err = store.GetImport(ctx, uuid.NewString())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStoreClaimIsConditional(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	batch, txns := seedImport(t, store)

	claimed, err := store.ClaimTransaction(ctx, batch.ID, txns[0].ID)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, models.StatusPending, claimed.Status)

	again, err := store.ClaimTransaction(ctx, batch.ID, txns[0].ID)
	require.NoError(t, err)
	assert.Nil(t, again)

	n, err := store.IgnoreTransactions(ctx, batch.ID, []string{txns[0].ID, txns[1].ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreWithTxRollsBack(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	batch, txns := seedImport(t, store)
	expenseID := uuid.NewString()

	err := store.WithTx(ctx, func(tx reconcile.Store) error {
		if _, err := tx.ClaimTransaction(ctx, batch.ID, txns[0].ID); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.CreateExpense(ctx, &models.Expense{
			ID: expenseID, Description: "Coffee", Amount: decimal.RequireFromString("4.50"),
			Category: models.CategoryOther, Date: txns[0].Date, BusinessArea: models.BusinessAreaCreative,
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = store.GetExpense(ctx, expenseID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	listed, err := store.ListTransactions(ctx, batch.ID)
	require.NoError(t, err)
	for _, txn := range listed {
		assert.Equal(t, models.StatusPending, txn.Status)
	}
}
