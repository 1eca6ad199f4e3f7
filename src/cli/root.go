package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/adventofai/backend/src/app"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	EnvFile string
	Format  string // "json" | "text"
}

var validFormats = []string{"text", "json"}

// NewRootCommand creates the operator command tree
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "advent",
		Short: "Operate the Advent of AI challenge ledger",
		Long: `Unlock challenges, inspect the ledger and run schema migrations
against the same database and GitHub repository the API server uses.

Configuration is read from the environment, optionally loaded from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded when present")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewUnlockCommand(opts))
	cmd.AddCommand(NewUnlockTodayCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// loadEnv overlays the dotenv file on the process environment when it exists
func loadEnv(opts *RootOptions) error {
	if opts.EnvFile == "" {
		return nil
	}
	if _, err := os.Stat(opts.EnvFile); err != nil {
		return nil
	}
	if err := godotenv.Overload(opts.EnvFile); err != nil {
		return fmt.Errorf("error loading %s: %w", opts.EnvFile, err)
	}
	return nil
}

// openApplication wires the full application without the HTTP server
func openApplication(cmd *cobra.Command, opts *RootOptions) (context.Context, *app.Application, error) {
	if err := loadEnv(opts); err != nil {
		return nil, nil, err
	}

	config := app.NewAppConfig()

	// operator output goes to stdout, logs go to stderr
	level, err := zerolog.ParseLevel(*config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: "15:04:05"}).
		Level(level).With().Timestamp().Str("service", "advent-cli").Logger()
	log.SetOutput(cmd.ErrOrStderr())

	ctx := logger.WithContext(cmd.Context())

	application, err := app.NewApplication(ctx, *config)
	if err != nil {
		return nil, nil, err
	}
	return ctx, application, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
