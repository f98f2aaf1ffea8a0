package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"shipquote/core/types"
)

// Column order shared by import and export
const (
	colFrom = iota
	colTo
	colPackageType
	colBasePrice
	colPricePerKg
	colNairaBase
	colNairaPerKg
)

// minCells is the shortest row that is considered at all
const minCells = 4

// CSVHeader is written by exports and skipped by imports
var CSVHeader = []string{
	"From Country", "To Country", "Package Type",
	"USD Base Price", "USD Price per KG", "NGN Base Price", "NGN Price per KG",
}

// RawRow is one data record with the file line it started on
type RawRow struct {
	Line  int
	Cells []string
}

// ParseCSV reads every record after the header row
func ParseCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []RawRow
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, RawRow{Line: line, Cells: record})
	}
	return rows, nil
}

// Candidate is a normalized row awaiting validation
type Candidate struct {
	Line int
	Rule *types.PricingRule
}

// Normalized is the output of Normalize
type Normalized struct {
	Candidates []Candidate
	Errors     []string
	Warnings   []string
	Ignored    int
}

// Normalize trims and parses raw rows into rules. Short rows are ignored;
// rows with missing or invalid values are reported as "Row N: ..." and skipped.
func Normalize(rows []RawRow) *Normalized {
	out := &Normalized{}
	for _, row := range rows {
		if len(row.Cells) < minCells {
			out.Ignored++
			continue
		}

		in, warning, err := normalizeRow(row)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: %s", row.Line, err))
			continue
		}
		if warning != "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("Row %d: %s", row.Line, warning))
		}

		rule, err := types.NewPricingRule(in)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: %s", row.Line, err))
			continue
		}
		out.Candidates = append(out.Candidates, Candidate{Line: row.Line, Rule: rule})
	}
	return out
}

func normalizeRow(row RawRow) (types.RuleInput, string, error) {
	cell := func(i int) string {
		if i >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[i])
	}

	in := types.RuleInput{
		From:        cell(colFrom),
		To:          cell(colTo),
		PackageType: cell(colPackageType),
	}
	if in.From == "" || in.To == "" || in.PackageType == "" || cell(colPricePerKg) == "" {
		return in, "", errors.New("Missing required fields")
	}

	perKg, err := decimal.NewFromString(cell(colPricePerKg))
	if err != nil || !perKg.IsPositive() {
		return in, "", errors.New("Invalid USD price per kg")
	}
	in.PricePerKg = &perKg

	if raw := cell(colBasePrice); raw != "" {
		base, err := decimal.NewFromString(raw)
		if err != nil || base.IsNegative() {
			return in, "", errors.New("Invalid USD base price")
		}
		in.BasePrice = &base
	}

	nairaBase, nairaPerKg := cell(colNairaBase), cell(colNairaPerKg)
	switch {
	case nairaBase == "" && nairaPerKg == "":
		return in, "", nil
	case nairaBase == "" || nairaPerKg == "":
		return in, "incomplete NGN pricing ignored", nil
	}

	nb, err := decimal.NewFromString(nairaBase)
	if err != nil || nb.IsNegative() {
		return in, "", errors.New("Invalid NGN base price")
	}
	nk, err := decimal.NewFromString(nairaPerKg)
	if err != nil || !nk.IsPositive() {
		return in, "", errors.New("Invalid NGN price per kg")
	}
	in.NairaBase, in.NairaPerKg = &nb, &nk
	return in, "", nil
}

// WriteCSV exports rules in the import format
func WriteCSV(w io.Writer, rules []*types.PricingRule) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range rules {
		record := []string{
			r.Route.From, r.Route.To, r.Route.PackageType,
			r.USD.Base.String(), r.USD.PerKg.String(), "", "",
		}
		if r.NGN != nil {
			record[colNairaBase] = r.NGN.Base.String()
			record[colNairaPerKg] = r.NGN.PerKg.String()
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
