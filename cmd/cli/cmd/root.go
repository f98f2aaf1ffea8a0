// Package cmd provides the CLI commands for shipquote.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"shipquote/db"
	"shipquote/internal/config"
	"shipquote/internal/logging"
)

// version is overridden at build time with -ldflags
var version = "1.0.0"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shipquote",
	Short: "Operate the shipquote pricing service",
	Long: `shipquote manages the shipping rate table and quotes against it.

Every command talks to the same Postgres database as the API server.

Examples:
  shipquote quote --from Nigeria --to Ghana --weight 2 --package-type document
  shipquote pricing export --format csv > rates.csv
  shipquote pricing import --dry-run rates.csv`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "JSON config file (defaults plus environment when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	// CLI output goes to stdout; logs stay on stderr
	cfg.Logging.Output = "stderr"
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// openDB connects with the configured pool settings
func openDB(ctx context.Context) (*pgxpool.Pool, error) {
	return db.Connect(ctx, cfg.Database, logging.Logger)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shipquote version %s\n", version)
	},
}
