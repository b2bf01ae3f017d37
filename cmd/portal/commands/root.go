// Package commands is the portal command line: the web server, the job
// worker, schema migrations and a few admin chores.
package commands

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/royalton/portal/internal/config"
	"github.com/royalton/portal/middlewares"
	"github.com/royalton/portal/pkg/logger"
)

var (
	cfg config.Config
	log *slog.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:          "portal",
		Short:        "Royalton Logistics customer portal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			log = logger.New(cfg.Log, middlewares.RequestIDExtractor())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Flush(2 * time.Second)
		},
	}

	root.AddCommand(serveCmd(), workerCmd(), migrateCmd(), adminCmd(), routesCmd())
	return root.Execute()
}
