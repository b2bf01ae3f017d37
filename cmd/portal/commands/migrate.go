package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/pkg/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or report the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(db.Up), string(db.Down), string(db.Status)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := db.Up
			if len(args) == 1 {
				dir = db.Direction(args[0])
			}
			if !cfg.DB.Enabled() {
				return errNoDatabase
			}
			ctx := cmd.Context()
			pool, err := db.Connect(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := store.Migrate(ctx, pool, dir, cfg.DB.MigrationsTable, log); err != nil {
				return fmt.Errorf("migrate %s: %w", dir, err)
			}
			return nil
		},
	}
}
