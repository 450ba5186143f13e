package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"autoremote/internal/server"

	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP bridge for editors and scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.cfg.ValidateServe(); err != nil {
				return err
			}

			e.logger.Info("Starting AutoRemote bridge", "version", version)
			srv := server.New(e.cfg, e.dispatcher, e.logger, version)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serverErr := make(chan error, 1)
			go func() {
				serverErr <- srv.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				e.logger.Info("Received shutdown signal")
				return <-serverErr
			case err := <-serverErr:
				return err
			}
		},
	}
}
