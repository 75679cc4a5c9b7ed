// Package main provides the rulesquery binary.
// It inspects coding rules queries on the command line and serves the rules search API.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/coding-rules-query-go/config"
)

const (
	Version = "0.1.0"
	appName = "rulesquery"
)

// errQueriesDiffer makes the process exit with code 1 without printing an error.
var errQueriesDiffer = errors.New("queries differ")

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errQueriesDiffer) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by all commands.
type globalFlags struct {
	logLevel string
	envFile  string
}

// logger builds a JSON logger on stderr. The --log-level flag wins over fallback.
func (f *globalFlags) logger(cmd *cobra.Command, fallback slog.Level) (*slog.Logger, error) {
	level := fallback

	if f.logLevel != "" {
		parsed, err := config.ParseLogLevel(f.logLevel)
		if err != nil {
			return nil, err
		}

		level = parsed
	}

	return config.NewLogger(cmd.ErrOrStderr(), level), nil
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Parse, normalize and search coding rules queries",
		Long: `rulesquery works with the URL query strings that describe a coding rules search.

It parses and normalizes queries, compares them, tells which facets are counted
by the server and serves a rules search API backed by PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides "+config.EnvLogLevel)
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Optional dotenv file read before the environment")

	cmd.AddCommand(parseCmd())
	cmd.AddCommand(normalizeCmd())
	cmd.AddCommand(equalCmd())
	cmd.AddCommand(facetCmd())
	cmd.AddCommand(serveCmd(flags))
	cmd.AddCommand(searchCmd(flags))

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}
