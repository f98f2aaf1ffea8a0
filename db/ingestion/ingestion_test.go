package ingestion

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

type memTable struct {
	rules      []*types.PricingRule
	replaced   bool
	replaceErr error
}

func (m *memTable) ListRules(context.Context) ([]*types.PricingRule, error) {
	return m.rules, nil
}

func (m *memTable) ReplaceRules(_ context.Context, rules []*types.PricingRule) (int, error) {
	if m.replaceErr != nil {
		return 0, m.replaceErr
	}
	m.rules = rules
	m.replaced = true
	return len(rules), nil
}

const sampleCSV = `from_country,to_country,package_type,base_price,price_per_kg,naira_base_price,naira_price_per_kg
Nigeria,Ghana,document,15,25,,
Nigeria,UK,fashion,20,8.5,30000,12500
Nigeria,UK,food,10,5,15000,
short,row
,Ghana,document,1,2
Nigeria,Kenya,document,1,0
Nigeria,Ghana,document,99,99
`

func TestNormalizeAndValidate(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, 2, rows[0].Line, "line numbers count the header")

	n := Normalize(rows)
	assert.Equal(t, 1, n.Ignored)
	assert.Equal(t, []string{
		"Row 6: Missing required fields",
		"Row 7: Invalid USD price per kg",
	}, n.Errors)
	assert.Equal(t, []string{"Row 4: incomplete NGN pricing ignored"}, n.Warnings)
	require.Len(t, n.Candidates, 4)

	v := Validate(n.Candidates)
	require.Len(t, v.Rules, 3)
	require.Len(t, v.Errors, 1)
	assert.Contains(t, v.Errors[0], "Row 8: duplicate route")
	assert.Contains(t, v.Errors[0], "row 2")

	assert.Equal(t, "15", v.Rules[0].USD.Base.String(), "first occurrence wins")
	assert.Nil(t, v.Rules[2].NGN, "partial naira pair drops naira pricing")
	require.NotNil(t, v.Rules[1].NGN)
	assert.Equal(t, "12500", v.Rules[1].NGN.PerKg.String())
}

func TestNormalizeEmptyBaseReadsAsZero(t *testing.T) {
	n := Normalize([]RawRow{{Line: 2, Cells: []string{" Nigeria ", "Ghana", "parcel", "", "3"}}})
	require.Empty(t, n.Errors)
	require.Len(t, n.Candidates, 1)

	rule := n.Candidates[0].Rule
	assert.Equal(t, "Nigeria", rule.Route.From, "cells are trimmed")
	assert.True(t, rule.USD.Base.IsZero())
}

func TestExecuteCommitsAfterBackup(t *testing.T) {
	old := mustRule(t, "Nigeria", "Ghana", "document", "1", "1")
	table := &memTable{rules: []*types.PricingRule{old}}
	dir := t.TempDir()

	result, err := NewPipeline(table, nil).Execute(context.Background(), strings.NewReader(sampleCSV), Config{BackupDir: dir})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, Phases, result.PhasesCompleted)
	assert.Equal(t, 3, result.Committed)
	assert.Equal(t, 3, result.Stats.RowsRejected)
	assert.Equal(t, 1, result.Stats.PreviousRules)
	assert.True(t, table.replaced)
	assert.Equal(t, CalculateChecksum(table.rules), result.Checksum)

	backup, err := NewBackupManager().ReadBackup(result.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, 1, backup.RuleCount)
	assert.Equal(t, "Nigeria", backup.Rules[0].From)
}

func TestExecuteDryRunLeavesTableAlone(t *testing.T) {
	table := &memTable{}

	result, err := NewPipeline(table, nil).Execute(context.Background(), strings.NewReader(sampleCSV), Config{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []Phase{PhaseParse, PhaseNormalize, PhaseValidate}, result.PhasesCompleted)
	assert.False(t, table.replaced)
	assert.Empty(t, result.BackupPath)
}

func TestExecuteWithoutValidRowsAborts(t *testing.T) {
	table := &memTable{}
	csv := "header\nNigeria,Ghana,document,1,-2\n"

	result, err := NewPipeline(table, nil).Execute(context.Background(), strings.NewReader(csv), Config{BackupDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeInvalidInput))

	assert.False(t, result.Success)
	assert.Equal(t, PhaseValidate, result.FailedPhase)
	assert.Equal(t, []string{"Row 2: Invalid USD price per kg"}, result.RowErrors)
	assert.False(t, table.replaced)
}

func TestExecuteCommitFailureIsInternal(t *testing.T) {
	table := &memTable{replaceErr: errors.New("deadlock")}

	result, err := NewPipeline(table, nil).Execute(context.Background(), strings.NewReader(sampleCSV), Config{BackupDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeInternal))
	assert.Equal(t, PhaseCommit, result.FailedPhase)
	assert.NotEmpty(t, result.BackupPath, "backup is written before the commit is attempted")
}

func TestExportRoundTrip(t *testing.T) {
	rules := []*types.PricingRule{
		mustRule(t, "Nigeria", "Ghana", "document", "15", "25"),
		mustNairaRule(t, "Nigeria", "UK", "fashion", "20", "8.5", "30000", "12500"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rules))

	rows, err := ParseCSV(&buf)
	require.NoError(t, err)
	n := Normalize(rows)
	require.Empty(t, n.Errors)
	require.Empty(t, n.Warnings)

	v := Validate(n.Candidates)
	assert.Equal(t, CalculateChecksum(rules), CalculateChecksum(v.Rules))
}

func TestBackupVerifyDetectsTampering(t *testing.T) {
	b := NewBackup([]*types.PricingRule{mustRule(t, "Nigeria", "Ghana", "document", "15", "25")})
	require.NoError(t, b.Verify())

	b.Rules[0].PricePerKg = b.Rules[0].PricePerKg.Add(b.Rules[0].PricePerKg)
	assert.Error(t, b.Verify())
}

func TestChecksumIgnoresOrder(t *testing.T) {
	a := mustRule(t, "A", "B", "x", "1", "2")
	b := mustRule(t, "C", "D", "y", "3", "4")

	assert.Equal(t, CalculateChecksum([]*types.PricingRule{a, b}), CalculateChecksum([]*types.PricingRule{b, a}))
}

func mustRule(t *testing.T, from, to, pkg, base, perKg string) *types.PricingRule {
	t.Helper()
	n := Normalize([]RawRow{{Line: 1, Cells: []string{from, to, pkg, base, perKg}}})
	require.Empty(t, n.Errors)
	require.Len(t, n.Candidates, 1)
	return n.Candidates[0].Rule
}

func mustNairaRule(t *testing.T, from, to, pkg, base, perKg, nBase, nPerKg string) *types.PricingRule {
	t.Helper()
	n := Normalize([]RawRow{{Line: 1, Cells: []string{from, to, pkg, base, perKg, nBase, nPerKg}}})
	require.Empty(t, n.Errors)
	require.Len(t, n.Candidates, 1)
	return n.Candidates[0].Rule
}
