package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mpdee-accounts/src/api"
	appdb "mpdee-accounts/src/db"
	"mpdee-accounts/src/handlers"
	"mpdee-accounts/src/ledger"
	"mpdee-accounts/src/reconcile"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	cache, err := appdb.NewCache(cfg.CacheMaxCost)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer cache.Close()

	router := api.NewRouter(api.Deps{
		Reconcile: reconcile.NewService(st.reconcile, log, reconcile.WithCache(cache)),
		Ledger:    ledger.NewService(st.ledger, log),
		Cache:     cache,
		Ping:      st.ping,
		Auth: handlers.AuthConfig{
			Username:     cfg.AdminUsername,
			PasswordHash: cfg.AdminPasswordHash,
			Secret:       []byte(cfg.JWTSecret),
			SessionTTL:   cfg.SessionTTL,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		ReadOnly:       cfg.ReadOnly,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Bool("read_only", cfg.ReadOnly).Msg("API server running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
