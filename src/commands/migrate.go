package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"mpdee-accounts/src/config"
	appdb "mpdee-accounts/src/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return fmt.Errorf("migrate needs STORE=%s", config.StorePostgres)
			}

			pool, err := appdb.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			if err := appdb.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			log.Info().Msg("Schema is up to date")
			return nil
		},
	}
}
