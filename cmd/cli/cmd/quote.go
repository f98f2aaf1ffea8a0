// Package cmd - quote command
package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"shipquote/core/output"
	"shipquote/core/pricing"
	"shipquote/core/types"
	"shipquote/internal/logging"
)

var (
	quoteFrom        string
	quoteTo          string
	quoteWeight      string
	quotePackageType string
	quoteCurrency    string
	quoteFormat      string
)

// quoteCmd prices a shipment against the live rate table without an API key
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a shipment against the rate table",
	Long: `Resolve a quote exactly as the pricing endpoint would, minus the API key check.

Examples:
  shipquote quote --from Nigeria --to Ghana --weight 2 --package-type document
  shipquote quote --from Nigeria --to UK --weight 1.5 --package-type fashion --currency NGN --format json`,
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteFrom, "from", "", "origin country")
	quoteCmd.Flags().StringVar(&quoteTo, "to", "", "destination country")
	quoteCmd.Flags().StringVar(&quoteWeight, "weight", "", "weight in kg")
	quoteCmd.Flags().StringVar(&quotePackageType, "package-type", "", "package category")
	quoteCmd.Flags().StringVar(&quoteCurrency, "currency", "USD", "USD or NGN")
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "cli", "output format (cli, json)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	resolver := pricing.NewResolver(newPricingStore(pool), logging.Logger)
	result, err := resolver.Resolve(ctx, types.QuoteRequest{
		Route:    types.RouteKey{From: quoteFrom, To: quoteTo, PackageType: quotePackageType},
		Weight:   quoteWeight,
		Currency: types.ParseCurrency(quoteCurrency),
	})
	if err != nil {
		return err
	}

	formatter, err := output.ForFormat(output.Format(quoteFormat))
	if err != nil {
		return err
	}
	return formatter.Render(cmd.OutOrStdout(), result, types.ParseCurrency(quoteCurrency))
}
