package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	appdb "mpdee-accounts/src/db"
	"mpdee-accounts/src/handlers"
	"mpdee-accounts/src/ledger"
	"mpdee-accounts/src/middleware"
	"mpdee-accounts/src/reconcile"
)

type Deps struct {
	Reconcile *reconcile.Service
	Ledger    *ledger.Service
	// Cache is optional; without it the cache admin route is not mounted.
	Cache *appdb.Cache
	// Ping backs the health check.
	Ping func(ctx context.Context) error

	Auth           handlers.AuthConfig
	AllowedOrigins []string
	MaxUploadBytes int64
	ReadOnly       bool
	Log            zerolog.Logger
}

func NewRouter(d Deps) *chi.Mux {
	log := d.Log.With().Str("component", "api").Logger()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware(d.AllowedOrigins))
	r.Use(middleware.ReadOnlyMiddleware(d.ReadOnly))

	r.Get("/health", handlers.Health(d.Ping, log))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", handlers.Login(d.Auth, log))
		r.Post("/auth/logout", handlers.Logout())
		r.Get("/auth/check", handlers.CheckAuth(d.Auth.Secret))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(d.Auth.Secret)).Group(func(r chi.Router) {
			// Statement imports
			r.Post("/expenses/import", handlers.ImportStatement(d.Reconcile, log, d.MaxUploadBytes))
			r.Get("/expenses/import", handlers.ListImports(d.Reconcile, log))
			r.Get("/expenses/import/{import_id}/transactions", handlers.ListImportTransactions(d.Reconcile, log))
			r.Post("/expenses/import/{import_id}/ignore", handlers.IgnoreTransactions(d.Reconcile, log))
			r.Post("/expenses/import/{import_id}/commit", handlers.CommitTransactions(d.Reconcile, log))

			// Expenses
			r.Get("/expenses", handlers.ListExpenses(d.Ledger, log))
			r.Post("/expenses", handlers.CreateExpense(d.Ledger, log))
			r.Get("/expenses/summary", handlers.ExpenseSummary(d.Ledger, log))
			r.Get("/expenses/{expense_id}", handlers.GetExpense(d.Ledger, log))
			r.Put("/expenses/{expense_id}", handlers.UpdateExpense(d.Ledger, log))
			r.Delete("/expenses/{expense_id}", handlers.DeleteExpense(d.Ledger, log))

			// Cache
			if d.Cache != nil {
				r.Post("/admin/cache/clear", handlers.ClearCache(d.Cache, log))
			}
		})
	})

	return r
}
