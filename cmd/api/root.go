package main

import (
	"TodoAPI/internal/config"
	"TodoAPI/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	serve := newServeCmd(opts)

	root := &cobra.Command{
		Use:           "todo-api",
		Short:         "Todo/Item HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		// no subcommand: serve
		RunE: serve.RunE,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional .env file with configuration")
	root.AddCommand(serve, newMigrateCmd(opts))
	return root
}

// load reads the configuration and builds the logger. Errors are logged
// before being returned since the root command silences them.
func (o *rootOptions) load() (config.Config, *log.Logger, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		log.Error("config", "err", err)
		return config.Config{}, nil, err
	}
	return cfg, logging.New(cfg.Log), nil
}
