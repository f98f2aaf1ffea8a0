// Package ingestion imports pricing tables in bulk.
// Phases run strictly in order: parse → normalize → validate → backup → commit.
// Nothing reaches the live table unless every earlier phase succeeded and
// the current table has been backed up.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

// Phase is one step of the import lifecycle
type Phase string

const (
	PhaseParse     Phase = "parse"
	PhaseNormalize Phase = "normalize"
	PhaseValidate  Phase = "validate"
	PhaseBackup    Phase = "backup"
	PhaseCommit    Phase = "commit"
)

// Phases lists the lifecycle in execution order
var Phases = []Phase{PhaseParse, PhaseNormalize, PhaseValidate, PhaseBackup, PhaseCommit}

// RuleTable is the live pricing table
type RuleTable interface {
	ListRules(ctx context.Context) ([]*types.PricingRule, error)

	// ReplaceRules swaps the whole table atomically
	ReplaceRules(ctx context.Context, rules []*types.PricingRule) (int, error)
}

// Config controls one import run
type Config struct {
	// BackupDir receives the pre-commit backup of the live table
	BackupDir string

	// DryRun stops after validation
	DryRun bool

	// Timeout bounds the whole run; zero means none
	Timeout time.Duration
}

// Stats counts what each phase saw
type Stats struct {
	RowsRead      int `json:"rows_read"`
	RowsIgnored   int `json:"rows_ignored"`
	RowsRejected  int `json:"rows_rejected"`
	RulesAccepted int `json:"rules_accepted"`
	PreviousRules int `json:"previous_rules"`
}

// Result reports an import run
type Result struct {
	Success         bool          `json:"success"`
	DryRun          bool          `json:"dry_run"`
	PhasesCompleted []Phase       `json:"phases_completed"`
	FailedPhase     Phase         `json:"failed_phase,omitempty"`
	Error           string        `json:"error,omitempty"`
	RowErrors       []string      `json:"row_errors,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
	Stats           Stats         `json:"stats"`
	Checksum        string        `json:"checksum,omitempty"`
	BackupPath      string        `json:"backup_path,omitempty"`
	Committed       int           `json:"committed"`
	Duration        time.Duration `json:"duration"`
}

// Pipeline runs pricing imports against a RuleTable
type Pipeline struct {
	table   RuleTable
	backups *BackupManager
	logger  *zap.Logger
}

// NewPipeline creates an import pipeline
func NewPipeline(table RuleTable, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		table:   table,
		backups: NewBackupManager(),
		logger:  logger.Named("ingestion"),
	}
}

// Execute imports the CSV in src. A failed run leaves the live table
// untouched and returns the partial Result together with a typed error.
func (p *Pipeline) Execute(ctx context.Context, src io.Reader, cfg Config) (*Result, error) {
	start := time.Now()
	result := &Result{DryRun: cfg.DryRun}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	fail := func(phase Phase, err error) (*Result, error) {
		result.FailedPhase = phase
		result.Error = err.Error()
		result.Duration = time.Since(start)
		p.logger.Warn("pricing import failed", zap.String("phase", string(phase)), zap.Error(err))
		return result, err
	}

	// Phase 1: parse
	rows, err := ParseCSV(src)
	if err != nil {
		return fail(PhaseParse, apperrors.Wrap(apperrors.TypeInvalidInput, "unreadable CSV", err))
	}
	result.Stats.RowsRead = len(rows)
	result.PhasesCompleted = append(result.PhasesCompleted, PhaseParse)

	// Phase 2: normalize
	normalized := Normalize(rows)
	result.Stats.RowsIgnored = normalized.Ignored
	result.RowErrors = append(result.RowErrors, normalized.Errors...)
	result.Warnings = append(result.Warnings, normalized.Warnings...)
	result.PhasesCompleted = append(result.PhasesCompleted, PhaseNormalize)

	// Phase 3: validate
	validation := Validate(normalized.Candidates)
	result.RowErrors = append(result.RowErrors, validation.Errors...)
	result.Stats.RowsRejected = len(result.RowErrors)
	result.Stats.RulesAccepted = len(validation.Rules)
	if len(validation.Rules) == 0 {
		return fail(PhaseValidate, apperrors.InvalidInput("No valid pricing data found in the file"))
	}
	result.Checksum = CalculateChecksum(validation.Rules)
	result.PhasesCompleted = append(result.PhasesCompleted, PhaseValidate)

	if cfg.DryRun {
		result.Success = true
		result.Duration = time.Since(start)
		return result, nil
	}

	// Phase 4: backup
	current, err := p.table.ListRules(ctx)
	if err != nil {
		return fail(PhaseBackup, apperrors.Internal("reading current pricing failed", err))
	}
	result.Stats.PreviousRules = len(current)
	path, err := p.backups.WriteBackup(cfg.BackupDir, NewBackup(current))
	if err != nil {
		return fail(PhaseBackup, apperrors.Internal("writing pricing backup failed", err))
	}
	result.BackupPath = path
	result.PhasesCompleted = append(result.PhasesCompleted, PhaseBackup)

	// Phase 5: commit
	n, err := p.table.ReplaceRules(ctx, validation.Rules)
	if err != nil {
		return fail(PhaseCommit, apperrors.Internal("replacing pricing failed", err))
	}
	result.Committed = n
	result.PhasesCompleted = append(result.PhasesCompleted, PhaseCommit)
	result.Success = true
	result.Duration = time.Since(start)

	p.logger.Info("pricing import committed",
		zap.Int("rules", n),
		zap.Int("previous_rules", len(current)),
		zap.Int("rejected_rows", result.Stats.RowsRejected),
		zap.String("checksum", result.Checksum),
		zap.String("backup", path))
	return result, nil
}

// Summary renders a one-line description of the run
func (r *Result) Summary() string {
	if !r.Success {
		return fmt.Sprintf("import failed at %s: %s", r.FailedPhase, r.Error)
	}
	if r.DryRun {
		return fmt.Sprintf("dry run: %d rules valid, %d rows rejected", r.Stats.RulesAccepted, r.Stats.RowsRejected)
	}
	return fmt.Sprintf("%d pricing rules uploaded successfully, %d rows rejected", r.Committed, r.Stats.RowsRejected)
}
