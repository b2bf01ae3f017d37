package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var errNoJobs = errors.New("background jobs need DATABASE_URL")

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Work background jobs without serving HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return work(cmd.Context())
		},
	}
}

func work(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := connect(ctx, false)
	if err != nil {
		return err
	}
	defer b.close(context.WithoutCancel(ctx))

	m, err := newJobs(b)
	if err != nil {
		return err
	}
	if m == nil {
		return errNoJobs
	}
	if err := m.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	log.Info("worker started", "max_workers", cfg.JobWorkers)

	<-ctx.Done()
	log.Info("worker stopping")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	return m.Stop(shutdownCtx)
}
