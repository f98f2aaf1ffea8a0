// Package cmd - pricing table management
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"shipquote/db"
	"shipquote/db/ingestion"
	"shipquote/internal/logging"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Rate table management (operator only)",
	Long: `Rate table management commands.

Imports replace the whole table. A backup of the current table is written
before anything is committed.`,
}

var pricingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every pricing rule",
	RunE:  runPricingList,
}

var pricingExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the rate table as CSV or checksummed JSON",
	RunE:  runPricingExport,
}

var pricingImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Replace the rate table from a CSV file",
	Long: `Replace the rate table from a CSV file.

The import runs five phases:
  1. PARSE     - Read CSV records
  2. NORMALIZE - Build rules, collecting row errors
  3. VALIDATE  - Reject duplicate routes
  4. BACKUP    - Write the current table to a JSON backup
  5. COMMIT    - Replace the table in one transaction

--dry-run stops after VALIDATE.`,
	Args: cobra.ExactArgs(1),
	RunE: runPricingImport,
}

var pricingRestoreCmd = &cobra.Command{
	Use:   "restore <backup.json>",
	Short: "Restore the rate table from a backup",
	Long: `Restore the rate table from a JSON backup or export.

The backup checksum is verified before anything is written, and the
current table is itself backed up first.`,
	Args: cobra.ExactArgs(1),
	RunE: runPricingRestore,
}

var (
	pricingDryRun  bool
	pricingConfirm bool
	pricingFormat  string
	pricingOutput  string
	pricingTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(pricingCmd)
	pricingCmd.AddCommand(pricingListCmd, pricingExportCmd, pricingImportCmd, pricingRestoreCmd)

	pricingExportCmd.Flags().StringVarP(&pricingFormat, "format", "f", "csv", "output format (csv, json)")
	pricingExportCmd.Flags().StringVarP(&pricingOutput, "output", "o", "", "output file (default stdout)")

	for _, c := range []*cobra.Command{pricingImportCmd, pricingRestoreCmd} {
		c.Flags().BoolVar(&pricingDryRun, "dry-run", false, "validate only, no database writes")
		c.Flags().BoolVar(&pricingConfirm, "confirm", false, "skip the interactive confirmation")
		c.Flags().DurationVar(&pricingTimeout, "timeout", 5*time.Minute, "timeout for the whole run")
	}
}

func newPricingStore(pool *pgxpool.Pool) *db.PricingStore {
	return db.NewPricingStore(pool)
}

// confirm asks before a live table replacement
func confirm(cmd *cobra.Command, action string) bool {
	if pricingDryRun || pricingConfirm {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s replaces every live pricing rule.\nType 'yes' to confirm: ", action)
	input, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if strings.TrimSpace(strings.ToLower(input)) != "yes" {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return false
	}
	return true
}

func runPricingList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	rules, err := newPricingStore(pool).ListRules(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTO\tPACKAGE\tUSD BASE\tUSD/KG\tNGN BASE\tNGN/KG")
	for _, r := range rules {
		nBase, nPerKg := "-", "-"
		if r.NGN != nil {
			nBase, nPerKg = r.NGN.Base.StringFixed(2), r.NGN.PerKg.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Route.From, r.Route.To, r.Route.PackageType,
			r.USD.Base.StringFixed(2), r.USD.PerKg.StringFixed(2), nBase, nPerKg)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d rules\n", len(rules))
	return nil
}

func runPricingExport(cmd *cobra.Command, args []string) error {
	if pricingFormat != "csv" && pricingFormat != "json" {
		return fmt.Errorf("unknown format %q (want csv or json)", pricingFormat)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	rules, err := newPricingStore(pool).ListRules(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if pricingOutput != "" {
		f, err := os.Create(pricingOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if pricingFormat == "json" {
		return ingestion.WriteJSON(out, ingestion.NewBackup(rules))
	}
	return ingestion.WriteCSV(out, rules)
}

func runPricingImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if !confirm(cmd, "Importing "+args[0]) {
		return nil
	}

	ctx := context.Background()
	pool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	pipeline := ingestion.NewPipeline(newPricingStore(pool), logging.Logger)
	result, err := pipeline.Execute(ctx, f, ingestion.Config{
		BackupDir: cfg.Pricing.BackupDir,
		DryRun:    pricingDryRun,
		Timeout:   pricingTimeout,
	})
	printImportResult(cmd, result)
	return err
}

func printImportResult(cmd *cobra.Command, result *ingestion.Result) {
	if result == nil {
		return
	}
	out := cmd.OutOrStdout()

	for _, phase := range ingestion.Phases {
		mark := " "
		for _, done := range result.PhasesCompleted {
			if done == phase {
				mark = "✓"
			}
		}
		if phase == result.FailedPhase {
			mark = "✗"
		}
		fmt.Fprintf(out, "  [%s] %s\n", mark, phase)
	}
	fmt.Fprintln(out)

	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, e := range result.RowErrors {
		fmt.Fprintf(out, "error:   %s\n", e)
	}
	if result.Checksum != "" {
		fmt.Fprintf(out, "Checksum: %s\n", result.Checksum)
	}
	if result.BackupPath != "" {
		fmt.Fprintf(out, "Backup:   %s\n", result.BackupPath)
	}
	fmt.Fprintln(out, result.Summary())
}

func runPricingRestore(cmd *cobra.Command, args []string) error {
	backup, err := ingestion.NewBackupManager().ReadBackup(args[0])
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	rules, err := backup.PricingRules()
	if err != nil {
		return fmt.Errorf("backup holds an invalid rule: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backup taken: %s\n", backup.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(out, "Rules:        %d\n", backup.RuleCount)
	fmt.Fprintf(out, "Checksum:     %s (verified)\n", backup.Checksum)

	if pricingDryRun {
		fmt.Fprintln(out, "dry run: nothing written")
		return nil
	}
	if !confirm(cmd, "Restoring "+args[0]) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pricingTimeout)
	defer cancel()

	pool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	store := newPricingStore(pool)

	current, err := store.ListRules(ctx)
	if err != nil {
		return err
	}
	path, err := ingestion.NewBackupManager().WriteBackup(cfg.Pricing.BackupDir, ingestion.NewBackup(current))
	if err != nil {
		return fmt.Errorf("backing up current table: %w", err)
	}
	fmt.Fprintf(out, "Previous table saved to %s\n", path)

	n, err := store.ReplaceRules(ctx, rules)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d pricing rules restored\n", n)
	return nil
}
