package main

import (
	"fmt"
	"log/slog"
	"os"

	"autoremote/internal/config"
	"autoremote/internal/dispatch"
	"autoremote/internal/settings"
	"autoremote/internal/util"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

func init() {
	_ = godotenv.Load() //nolint:errcheck // .env is optional
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger := util.NewLogger(false)
		logger.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "autoremote",
		Short:         "Send messages, notifications and intents to your phone through AutoRemote",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSendCommand(),
		newPresetCommand(),
		newKeyCommand(),
		newSettingsCommand(),
		newServeCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "autoremote %s (%s)\n", version, commit)
			},
		},
	)

	return root
}

// env bundles what every command needs. Close releases the settings store.
type env struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *settings.Store
	dispatcher *dispatch.Dispatcher
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := util.NewLogger(cfg.VerboseLogging)

	store, err := settings.Open(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}

	d, err := dispatch.New(store, cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, store: store, dispatcher: d}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("Failed to close settings store", "error", err)
	}
}
