package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mpdee-accounts/src/reconcile"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Stage a bank statement CSV for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer f.Close()

			st, err := openStores(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer st.close()

			svc := reconcile.NewService(st.reconcile, log)
			res, err := svc.Import(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "import %s: %d staged, %d skipped\n", res.ImportID, res.Created, res.Skipped)
			return nil
		},
	}
}
