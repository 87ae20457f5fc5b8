// Package memory is an in-process store used by tests and by STORE=memory
// deployments. Data does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"mpdee-accounts/src/models"
	"mpdee-accounts/src/reconcile"
)

type state struct {
	imports  map[string]models.ImportBatch
	txns     map[string]models.StagedTransaction
	expenses map[string]models.Expense
}

func newState() *state {
	return &state{
		imports:  make(map[string]models.ImportBatch),
		txns:     make(map[string]models.StagedTransaction),
		expenses: make(map[string]models.Expense),
	}
}

func (st *state) clone() *state {
	c := &state{
		imports:  make(map[string]models.ImportBatch, len(st.imports)),
		txns:     make(map[string]models.StagedTransaction, len(st.txns)),
		expenses: make(map[string]models.Expense, len(st.expenses)),
	}
	for k, v := range st.imports {
		c.imports[k] = v
	}
	for k, v := range st.txns {
		c.txns[k] = v
	}
	for k, v := range st.expenses {
		c.expenses[k] = v
	}
	return c
}

// Store implements reconcile.Store and ledger.Store. A transaction holds the
// store lock for its whole run and works on a copy of the data that replaces
// the original only when the callback succeeds.
type Store struct {
	mu *sync.Mutex // nil when bound to a transaction
	st *state
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState()}
}

func (s *Store) lock() func() {
	if s.mu == nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithTx(ctx context.Context, fn func(tx reconcile.Store) error) error {
	defer s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(&Store{st: work}); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

func (s *Store) CreateImport(ctx context.Context, batch *models.ImportBatch, txns []models.StagedTransaction) error {
	defer s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := s.st.imports[batch.ID]; ok {
		return fmt.Errorf("import %s already exists", batch.ID)
	}
	for _, t := range txns {
		if _, ok := s.st.txns[t.ID]; ok {
			return fmt.Errorf("transaction %s already exists", t.ID)
		}
		if t.ImportID != batch.ID {
			return fmt.Errorf("transaction %s belongs to import %s", t.ID, t.ImportID)
		}
	}

	s.st.imports[batch.ID] = *batch
	for _, t := range txns {
		s.st.txns[t.ID] = t
	}
	return nil
}

func (s *Store) GetImport(ctx context.Context, importID string) (*models.ImportBatch, error) {
	defer s.lock()()
	b, ok := s.st.imports[importID]
	if !ok {
		return nil, models.NotFound("import %s not found", importID)
	}
	return &b, nil
}

func (s *Store) ListImports(ctx context.Context) ([]models.ImportSummary, error) {
	defer s.lock()()
	counts := make(map[string]*models.ImportSummary, len(s.st.imports))
	out := make([]models.ImportSummary, 0, len(s.st.imports))
	for _, b := range s.st.imports {
		counts[b.ID] = &models.ImportSummary{ImportBatch: b}
	}
	for _, t := range s.st.txns {
		sum, ok := counts[t.ImportID]
		if !ok {
			continue
		}
		switch t.Status {
		case models.StatusPending:
			sum.Pending++
		case models.StatusAdded:
			sum.Added++
		case models.StatusIgnored:
			sum.Ignored++
		}
	}
	for _, sum := range counts {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListTransactions(ctx context.Context, importID string) ([]models.StagedTransaction, error) {
	defer s.lock()()
	out := []models.StagedTransaction{}
	for _, t := range s.st.txns {
		if t.ImportID == importID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Line < out[j].Line
	})
	return out, nil
}

func (s *Store) IgnoreTransactions(ctx context.Context, importID string, ids []string) (int, error) {
	defer s.lock()()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		t, ok := s.st.txns[id]
		if !ok || t.ImportID != importID || t.Status != models.StatusPending {
			continue
		}
		t.Status = models.StatusIgnored
		s.st.txns[id] = t
		n++
	}
	return n, nil
}

func (s *Store) ClaimTransaction(ctx context.Context, importID, id string) (*models.StagedTransaction, error) {
	defer s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := s.st.txns[id]
	if !ok || t.ImportID != importID || t.Status != models.StatusPending {
		return nil, nil
	}
	claimed := t
	claimed.Status = models.StatusAdded
	s.st.txns[id] = claimed
	return &t, nil
}

func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	defer s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := s.st.expenses[e.ID]; ok {
		return fmt.Errorf("expense %s already exists", e.ID)
	}
	s.st.expenses[e.ID] = *e
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, f models.ExpenseFilter) ([]models.Expense, int, error) {
	defer s.lock()()
	var matched []models.Expense
	for _, e := range s.st.expenses {
		if matches(e, f) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	total := len(matched)
	start := max(0, min(f.Offset, total))
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return append([]models.Expense{}, matched[start:end]...), total, nil
}

func matches(e models.Expense, f models.ExpenseFilter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		if !strings.Contains(strings.ToLower(e.Description), needle) &&
			!strings.Contains(strings.ToLower(notes), needle) {
			return false
		}
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return true
}

func (s *Store) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	defer s.lock()()
	e, ok := s.st.expenses[id]
	if !ok {
		return nil, models.NotFound("expense %s not found", id)
	}
	return &e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e *models.Expense) error {
	defer s.lock()()
	existing, ok := s.st.expenses[e.ID]
	if !ok {
		return models.NotFound("expense %s not found", e.ID)
	}
	updated := *e
	updated.SourceTransactionID = existing.SourceTransactionID
	updated.CreatedAt = existing.CreatedAt
	s.st.expenses[e.ID] = updated
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	defer s.lock()()
	if _, ok := s.st.expenses[id]; !ok {
		return models.NotFound("expense %s not found", id)
	}
	delete(s.st.expenses, id)
	return nil
}

func (s *Store) SummarizeExpenses(ctx context.Context, from, to *time.Time) (*models.ExpenseSummary, error) {
	defer s.lock()()
	f := models.ExpenseFilter{From: from, To: to}
	byCategory := map[string]*models.ExpenseTotal{}
	byArea := map[string]*models.ExpenseTotal{}
	sum := &models.ExpenseSummary{Total: decimal.Zero}

	for _, e := range s.st.expenses {
		if !matches(e, f) {
			continue
		}
		sum.Count++
		sum.Total = sum.Total.Add(e.Amount)
		addTotal(byCategory, string(e.Category), e.Amount)
		addTotal(byArea, string(e.BusinessArea), e.Amount)
	}
	sum.ByCategory = sortedTotals(byCategory)
	sum.ByBusinessArea = sortedTotals(byArea)
	return sum, nil
}

func addTotal(m map[string]*models.ExpenseTotal, key string, amount decimal.Decimal) {
	t, ok := m[key]
	if !ok {
		t = &models.ExpenseTotal{Key: key, Total: decimal.Zero}
		m[key] = t
	}
	t.Count++
	t.Total = t.Total.Add(amount)
}

func sortedTotals(m map[string]*models.ExpenseTotal) []models.ExpenseTotal {
	out := make([]models.ExpenseTotal, 0, len(m))
	for _, t := range m {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
