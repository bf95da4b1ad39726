package main

import (
	"fmt"
	"strings"

	"github.com/phrazzld/lexis/internal/app"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/platform/sqlstore"
	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "migrate [up|down|reset|status|version]",
		Short:       "Manage the database schema",
		Long:        "Run a schema migration command against the configured database. The default is up.",
		Args:        cobra.MaximumNArgs(1),
		ValidArgs:   []string{sqlstore.MigrateUp, sqlstore.MigrateDown, sqlstore.MigrateReset, sqlstore.MigrateStatus, sqlstore.MigrateVersion},
		Annotations: map[string]string{skipApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := sqlstore.MigrateUp
			if len(args) == 1 {
				command = strings.ToLower(args[0])
			}

			cfg, err := c.settings()
			if err != nil {
				return err
			}
			l, err := logger.SetupWithWriter(cfg.Server, c.errOut)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			db, dialect, err := app.OpenDatabase(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			version, err := sqlstore.RunMigrations(cmd.Context(), db, dialect, command, l)
			if err != nil {
				return err
			}
			return c.emit(map[string]interface{}{"command": command, "version": version}, func() {
				fmt.Fprintf(c.out, "Schema version %d (%s)\n", version, dialect.Name())
			})
		},
	}
}
