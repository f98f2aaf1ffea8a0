// Package output renders quote results for terminals and scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"shipquote/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes result; requested is the currency the caller asked for
	Render(w io.Writer, result *types.QuoteResult, requested types.Currency) error
}

// ForFormat returns the formatter for f
func ForFormat(f Format) (Formatter, error) {
	switch f {
	case FormatCLI, "":
		return cliFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want cli or json)", f)
	}
}

type cliFormatter struct{}

func (cliFormatter) Format() Format { return FormatCLI }

func (cliFormatter) Render(w io.Writer, result *types.QuoteResult, requested types.Currency) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Route:\t%s (%s)\n", result.Route, result.Route.PackageType)
	fmt.Fprintf(tw, "Weight:\t%s kg\n", result.Weight)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CURRENCY\tBASE\tWEIGHT COST\tTOTAL")
	row := func(c types.Currency, b types.CostBreakdown) {
		marker := ""
		if c == result.Currency {
			marker = " *"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", c, marker,
			b.BasePrice.StringFixed(2), b.WeightCost.StringFixed(2), b.Total.StringFixed(2))
	}
	row(types.CurrencyUSD, result.USD)
	if result.NGN != nil {
		row(types.CurrencyNGN, *result.NGN)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if requested != result.Currency {
		_, err := fmt.Fprintf(w, "\nNo %s pricing on this route; quoted in %s\n", requested, result.Currency)
		return err
	}
	return nil
}

type jsonFormatter struct{}

func (jsonFormatter) Format() Format { return FormatJSON }

// quoteJSON fixes the money fields at two decimals
type quoteJSON struct {
	Route       string    `json:"route"`
	PackageType string    `json:"package_type"`
	Weight      string    `json:"weight"`
	Currency    string    `json:"currency"`
	Total       string    `json:"total"`
	USD         costJSON  `json:"usd"`
	NGN         *costJSON `json:"ngn"`
}

type costJSON struct {
	BasePrice  string `json:"base_price"`
	WeightCost string `json:"weight_cost"`
	Total      string `json:"total"`
}

func newCostJSON(b types.CostBreakdown) costJSON {
	return costJSON{
		BasePrice:  b.BasePrice.StringFixed(2),
		WeightCost: b.WeightCost.StringFixed(2),
		Total:      b.Total.StringFixed(2),
	}
}

func (jsonFormatter) Render(w io.Writer, result *types.QuoteResult, _ types.Currency) error {
	out := quoteJSON{
		Route:       result.Route.String(),
		PackageType: result.Route.PackageType,
		Weight:      result.Weight.String(),
		Currency:    result.Currency.String(),
		Total:       result.Breakdown.Total.StringFixed(2),
		USD:         newCostJSON(result.USD),
	}
	if result.NGN != nil {
		ngn := newCostJSON(*result.NGN)
		out.NGN = &ngn
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
