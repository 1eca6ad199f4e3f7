package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/adventofai/backend/src/app"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	driver string
	dsn    string
	path   string
}

// NewMigrateCommand creates the migrate command. It only needs database settings.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:       "migrate <up|down|version>",
		Short:     "Apply or roll back the ledger schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cobra.OnlyValidArgs(cmd, args); err != nil {
				return err
			}
			if err := loadEnv(rootOpts); err != nil {
				return err
			}
			opts.resolve()
			if opts.dsn == "" {
				return fmt.Errorf("database url is required: set DB_URL or --dsn")
			}

			out := cmd.OutOrStdout()
			switch args[0] {
			case "up":
				if err := app.MigrationUp(opts.driver, opts.dsn, opts.path); err != nil {
					return err
				}
				fmt.Fprintln(out, "migrations applied")
			case "down":
				if err := app.MigrationDown(opts.driver, opts.dsn, opts.path); err != nil {
					return err
				}
				fmt.Fprintln(out, "migrations rolled back")
			case "version":
				version, dirty, err := app.MigrationVersion(opts.driver, opts.dsn, opts.path)
				if err != nil {
					return err
				}
				if rootOpts.Format == "json" {
					return writeJSON(out, map[string]interface{}{"version": version, "dirty": dirty})
				}
				fmt.Fprintf(out, "version %d (dirty: %t)\n", version, dirty)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.driver, "driver", "", "ledger driver, postgres or sqlite (default $DB_DRIVER or postgres)")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "database url (default $DB_URL)")
	cmd.Flags().StringVar(&opts.path, "path", "", "migration source url (default $MIGRATION_PATH or file://migrations/<driver>)")

	return cmd
}

// resolve fills unset flags from the environment
func (o *migrateOptions) resolve() {
	if o.driver == "" {
		o.driver = os.Getenv("DB_DRIVER")
	}
	o.driver = strings.ToLower(o.driver)
	if o.driver == "" {
		o.driver = app.DriverPostgres
	}
	if o.dsn == "" {
		o.dsn = os.Getenv("DB_URL")
	}
	if o.path == "" {
		o.path = os.Getenv("MIGRATION_PATH")
	}
	if o.path == "" {
		o.path = "file://migrations/" + o.driver
	}
}
