// Package reconcile runs the bank statement pipeline: staging imported rows,
// letting a reviewer ignore them, and committing chosen rows as expenses.
package reconcile

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mpdee-accounts/src/ingest"
	"mpdee-accounts/src/models"
)

type Service struct {
	store Store
	cache ListingCache
	log   zerolog.Logger
	now   func() time.Time
}

type Option func(*Service)

// WithCache serves transaction listings from c until the batch changes.
func WithCache(c ListingCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithClock overrides the time source used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		cache: noCache{},
		log:   log.With().Str("component", "reconcile").Logger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportResult reports the outcome of a statement upload.
type ImportResult struct {
	ImportID string `json:"import_id"`
	Created  int    `json:"created"`
	Skipped  int    `json:"skipped"`
}

// Import parses a statement and stages every usable row as PENDING under a
// new batch. Unusable rows are counted in Skipped, never fatal.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	filename = strings.TrimSpace(filename)
	if r == nil || filename == "" {
		return nil, models.InvalidInput("no file uploaded")
	}

	parsed, err := ingest.Parse(r)
	if err != nil {
		return nil, models.InvalidInput("unreadable upload: %v", err)
	}

	batch := &models.ImportBatch{
		ID:        uuid.NewString(),
		Filename:  filename,
		CreatedAt: s.now().UTC(),
	}
	txns := make([]models.StagedTransaction, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		txns = append(txns, models.StagedTransaction{
			ID:          uuid.NewString(),
			ImportID:    batch.ID,
			Line:        row.Line,
			Date:        row.Date,
			Description: row.Description,
			Amount:      row.Amount,
			Status:      models.StatusPending,
			Raw:         row.Raw,
		})
	}

	if err := s.store.CreateImport(ctx, batch, txns); err != nil {
		return nil, models.Persistence("creating import", err)
	}

	s.log.Info().
		Str("import_id", batch.ID).
		Str("filename", filename).
		Int("created", len(txns)).
		Int("skipped", parsed.Skipped).
		Msg("Imported bank statement")

	return &ImportResult{ImportID: batch.ID, Created: len(txns), Skipped: parsed.Skipped}, nil
}

func (s *Service) GetImport(ctx context.Context, importID string) (*models.ImportBatch, error) {
	batch, err := s.store.GetImport(ctx, importID)
	if err != nil {
		return nil, models.Persistence("getting import", err)
	}
	return batch, nil
}

func (s *Service) ListImports(ctx context.Context) ([]models.ImportSummary, error) {
	imports, err := s.store.ListImports(ctx)
	if err != nil {
		return nil, models.Persistence("listing imports", err)
	}
	return imports, nil
}

// ListTransactions returns every row of a batch, newest first.
func (s *Service) ListTransactions(ctx context.Context, importID string) ([]models.StagedTransaction, error) {
	if _, err := s.GetImport(ctx, importID); err != nil {
		return nil, err
	}
	if cached, ok := s.cache.GetTransactions(importID); ok {
		return cached, nil
	}
	txns, err := s.store.ListTransactions(ctx, importID)
	if err != nil {
		return nil, models.Persistence("listing transactions", err)
	}
	if txns == nil {
		txns = []models.StagedTransaction{}
	}
	s.cache.SetTransactions(importID, txns)
	return txns, nil
}

// Ignore marks PENDING rows of the batch as IGNORED. Rows already ADDED or
// IGNORED are left alone.
func (s *Service) Ignore(ctx context.Context, importID string, ids []string) (int, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return 0, models.InvalidInput("no transactions provided")
	}
	if _, err := s.GetImport(ctx, importID); err != nil {
		return 0, err
	}

	n, err := s.store.IgnoreTransactions(ctx, importID, ids)
	if err != nil {
		return 0, models.Persistence("ignoring transactions", err)
	}
	s.cache.DelTransactions(importID)

	s.log.Info().
		Str("import_id", importID).
		Int("requested", len(ids)).
		Int("ignored", n).
		Msg("Ignored transactions")
	return n, nil
}

// CommitResult reports how many expenses a commit created.
type CommitResult struct {
	Added int `json:"added"`
}

type resolvedSelection struct {
	transactionID string
	category      models.Category
	area          models.BusinessArea
	notes         *string
}

// Commit turns the selected PENDING rows into expenses inside one
// transaction. Selections whose row is missing from the batch or no longer
// PENDING are skipped. Any store failure undoes the whole commit.
func (s *Service) Commit(ctx context.Context, importID string, selections []models.CommitSelection) (*CommitResult, error) {
	if len(selections) == 0 {
		return nil, models.InvalidInput("no selections")
	}
	resolved, err := resolveSelections(selections)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetImport(ctx, importID); err != nil {
		return nil, err
	}

	added := 0
	err = s.store.WithTx(ctx, func(tx Store) error {
		added = 0
		for _, sel := range resolved {
			src, err := tx.ClaimTransaction(ctx, importID, sel.transactionID)
			if err != nil {
				return err
			}
			if src == nil {
				s.log.Debug().
					Str("import_id", importID).
					Str("transaction_id", sel.transactionID).
					Msg("Skipping selection, transaction not pending in import")
				continue
			}

			now := s.now().UTC()
			sourceID := src.ID
			expense := &models.Expense{
				ID:                  uuid.NewString(),
				Description:         src.Description,
				Amount:              src.Amount.Abs(),
				Category:            sel.category,
				Date:                src.Date,
				BusinessArea:        sel.area,
				Notes:               sel.notes,
				SourceTransactionID: &sourceID,
				CreatedAt:           now,
				UpdatedAt:           now,
			}
			if err := tx.CreateExpense(ctx, expense); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	// The listing may have been read while the transaction was open.
	s.cache.DelTransactions(importID)
	if err != nil {
		s.log.Error().Err(err).Str("import_id", importID).Msg("Commit rolled back")
		return nil, models.Persistence("committing transactions", err)
	}

	s.log.Info().
		Str("import_id", importID).
		Int("selections", len(selections)).
		Int("added", added).
		Msg("Committed transactions")
	return &CommitResult{Added: added}, nil
}

func resolveSelections(selections []models.CommitSelection) ([]resolvedSelection, error) {
	out := make([]resolvedSelection, 0, len(selections))
	for i, sel := range selections {
		id := strings.TrimSpace(sel.TransactionID)
		if id == "" {
			return nil, models.InvalidInput("selection %d has no transaction_id", i)
		}
		category, err := models.ParseCategory(sel.Category)
		if err != nil {
			return nil, err
		}
		area, err := models.ParseBusinessArea(sel.BusinessArea)
		if err != nil {
			return nil, err
		}
		var notes *string
		if n := strings.TrimSpace(sel.Notes); n != "" {
			notes = &n
		}
		out = append(out, resolvedSelection{
			transactionID: id,
			category:      category,
			area:          area,
			notes:         notes,
		})
	}
	return out, nil
}

// compactIDs trims ids and drops blanks and repeats, keeping order.
func compactIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
