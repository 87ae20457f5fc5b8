// Package ledger manages committed expenses: manual entry, listing and
// reporting.
package ledger

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"mpdee-accounts/src/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit within an int.
	MaxPage = math.MaxInt / MaxLimit
)

// Store is the durable expense ledger.
type Store interface {
	ListExpenses(ctx context.Context, f models.ExpenseFilter) ([]models.Expense, int, error)
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	CreateExpense(ctx context.Context, e *models.Expense) error
	UpdateExpense(ctx context.Context, e *models.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	SummarizeExpenses(ctx context.Context, from, to *time.Time) (*models.ExpenseSummary, error)
}

type Service struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "ledger").Logger(),
		now:   time.Now,
	}
}

// Query selects a page of expenses.
type Query struct {
	Page     int
	Limit    int
	Search   string
	Category string
	From     *time.Time
	To       *time.Time
}

type Page struct {
	Data  []models.Expense `json:"expenses"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// Input is the caller-supplied part of a manually entered expense.
type Input struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	Date         time.Time       `json:"date"`
	BusinessArea string          `json:"business_area"`
	Notes        string          `json:"notes"`
	ReceiptURL   string          `json:"receipt_url"`
}

func (s *Service) List(ctx context.Context, q Query) (*Page, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	f := models.ExpenseFilter{
		Search: strings.TrimSpace(q.Search),
		From:   q.From,
		To:     q.To,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if q.Category != "" {
		c, err := models.ParseCategory(q.Category)
		if err != nil {
			return nil, err
		}
		f.Category = c
	}

	expenses, total, err := s.store.ListExpenses(ctx, f)
	if err != nil {
		return nil, models.Persistence("listing expenses", err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return &Page{Data: expenses, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, models.Persistence("getting expense", err)
	}
	return e, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Expense, error) {
	e, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, models.Persistence("creating expense", err)
	}
	s.log.Info().Str("expense_id", e.ID).Str("category", e.Category.String()).Msg("Created expense")
	return e, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*models.Expense, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	e, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	e.SourceTransactionID = existing.SourceTransactionID
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, models.Persistence("updating expense", err)
	}
	s.log.Info().Str("expense_id", e.ID).Msg("Updated expense")
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return models.Persistence("deleting expense", err)
	}
	s.log.Info().Str("expense_id", id).Msg("Deleted expense")
	return nil
}

// Summary totals the ledger per category and business area. Nil bounds are
// open.
func (s *Service) Summary(ctx context.Context, from, to *time.Time) (*models.ExpenseSummary, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, models.InvalidInput("date_to is before date_from")
	}
	sum, err := s.store.SummarizeExpenses(ctx, from, to)
	if err != nil {
		return nil, models.Persistence("summarizing expenses", err)
	}
	return sum, nil
}

func (s *Service) fromInput(in Input) (*models.Expense, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, models.InvalidInput("description is required")
	}
	if !in.Amount.IsPositive() {
		return nil, models.InvalidInput("amount must be greater than zero")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, models.InvalidInput("category is required")
	}
	category, err := models.ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, models.InvalidInput("date is required")
	}
	area, err := models.ParseBusinessArea(in.BusinessArea)
	if err != nil {
		return nil, err
	}

	return &models.Expense{
		Description:  desc,
		Amount:       in.Amount,
		Category:     category,
		Date:         time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, time.UTC),
		BusinessArea: area,
		Notes:        optional(in.Notes),
		ReceiptURL:   optional(in.ReceiptURL),
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
