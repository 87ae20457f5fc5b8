package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mpdee-accounts/src/config"
	appdb "mpdee-accounts/src/db"
	"mpdee-accounts/src/db/memory"
	db "mpdee-accounts/src/db/sql"
	"mpdee-accounts/src/ledger"
	"mpdee-accounts/src/logger"
	"mpdee-accounts/src/reconcile"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Bank statement import and expense ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newHashPasswordCommand())

	return rootCmd
}

// stores is the storage wiring shared by every subcommand.
type stores struct {
	reconcile reconcile.Store
	ledger    ledger.Store
	ping      func(ctx context.Context) error
	close     func()
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogPretty), nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		m := memory.New()
		return &stores{reconcile: m, ledger: m, close: func() {}}, nil
	}

	pool, err := appdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := appdb.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	s := db.NewStore(pool)
	return &stores{
		reconcile: s,
		ledger:    s,
		ping:      pool.Ping,
		close:     pool.Close,
	}, nil
}
