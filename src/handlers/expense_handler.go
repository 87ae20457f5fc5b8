package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"mpdee-accounts/src/ingest"
	"mpdee-accounts/src/ledger"
	"mpdee-accounts/src/models"
	"mpdee-accounts/src/util"
)

type expenseRequest struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	Date         string          `json:"date"`
	BusinessArea string          `json:"business_area"`
	Notes        string          `json:"notes"`
	ReceiptURL   string          `json:"receipt_url"`
}

func (req expenseRequest) input() (ledger.Input, error) {
	in := ledger.Input{
		Description:  req.Description,
		Amount:       req.Amount,
		Category:     req.Category,
		BusinessArea: req.BusinessArea,
		Notes:        req.Notes,
		ReceiptURL:   req.ReceiptURL,
	}
	if s := strings.TrimSpace(req.Date); s != "" {
		d, ok := ingest.ParseDate(s)
		if !ok {
			return in, models.InvalidInput("date %q is not a valid date", s)
		}
		in.Date = d
	}
	return in, nil
}

func decodeExpense(r *http.Request) (ledger.Input, error) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ledger.Input{}, models.InvalidInput("invalid request")
	}
	return req.input()
}

func ListExpenses(svc *ledger.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := util.QueryInt(q, "page")
		if err != nil {
			util.WriteServiceError(w, log, err, "list expenses")
			return
		}
		limit, err := util.QueryInt(q, "limit")
		if err != nil {
			util.WriteServiceError(w, log, err, "list expenses")
			return
		}
		from, err := util.QueryDate(q, "date_from")
		if err != nil {
			util.WriteServiceError(w, log, err, "list expenses")
			return
		}
		to, err := util.QueryDate(q, "date_to")
		if err != nil {
			util.WriteServiceError(w, log, err, "list expenses")
			return
		}

		res, err := svc.List(r.Context(), ledger.Query{
			Page:     page,
			Limit:    limit,
			Search:   q.Get("search"),
			Category: q.Get("category"),
			From:     from,
			To:       to,
		})
		if err != nil {
			util.WriteServiceError(w, log, err, "list expenses")
			return
		}
		util.WriteJSON(w, http.StatusOK, res)
	}
}

func GetExpense(svc *ledger.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "expense_id")
		if !util.ValidateID(id) {
			util.WriteError(w, http.StatusNotFound, "expense not found")
			return
		}
		e, err := svc.Get(r.Context(), id)
		if err != nil {
			util.WriteServiceError(w, log, err, "get expense")
			return
		}
		util.WriteJSON(w, http.StatusOK, e)
	}
}

func CreateExpense(svc *ledger.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeExpense(r)
		if err != nil {
			util.WriteServiceError(w, log, err, "create expense")
			return
		}
		e, err := svc.Create(r.Context(), in)
		if err != nil {
			util.WriteServiceError(w, log, err, "create expense")
			return
		}
		util.WriteJSON(w, http.StatusCreated, e)
	}
}

func UpdateExpense(svc *ledger.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "expense_id")
		if !util.ValidateID(id) {
			util.WriteError(w, http.StatusNotFound, "expense not found")
			return
		}
		in, err := decodeExpense(r)
		if err != nil {
			util.WriteServiceError(w, log, err, "update expense")
			return
		}
		e, err := svc.Update(r.Context(), id, in)
		if err != nil {
			util.WriteServiceError(w, log, err, "update expense")
			return
		}
		util.WriteJSON(w, http.StatusOK, e)
	}
}

func DeleteExpense(svc *ledger.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "expense_id")
		if !util.ValidateID(id) {
			util.WriteError(w, http.StatusNotFound, "expense not found")
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			util.WriteServiceError(w, log, err, "delete expense")
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
	}
}

func ExpenseSummary(svc *ledger.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from, err := util.QueryDate(q, "date_from")
		if err != nil {
			util.WriteServiceError(w, log, err, "summarize expenses")
			return
		}
		to, err := util.QueryDate(q, "date_to")
		if err != nil {
			util.WriteServiceError(w, log, err, "summarize expenses")
			return
		}
		sum, err := svc.Summary(r.Context(), from, to)
		if err != nil {
			util.WriteServiceError(w, log, err, "summarize expenses")
			return
		}
		util.WriteJSON(w, http.StatusOK, sum)
	}
}
