package main

import (
	"fmt"

	"TodoAPI/internal/migrations"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var rebuild bool
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status|version|rebuild]",
		Short:     "Run schema migrations",
		Long:      "Run goose schema migrations against the configured database. Defaults to up.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{migrations.CmdUp, migrations.CmdDown, migrations.CmdStatus, migrations.CmdVersion, migrations.CmdRebuild},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := migrations.CmdUp
			if len(args) == 1 {
				command = args[0]
			}
			if rebuild {
				if len(args) == 1 && command != migrations.CmdRebuild {
					return fmt.Errorf("--rebuild conflicts with %q", command)
				}
				command = migrations.CmdRebuild
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if err := migrations.Apply(cmd.Context(), cfg.DB, command, logger); err != nil {
				logger.Error("migrate", "command", command, "err", err)
				return err
			}
			logger.Info("migrate done", "command", command, "driver", cfg.DB.Driver)
			return nil
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "drop every migration and apply them again")
	return cmd
}
