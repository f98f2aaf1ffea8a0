package ingestion

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shipquote/core/types"
)

const backupSchemaVersion = "1"

// RuleRecord is the portable form of a pricing rule
type RuleRecord struct {
	From        string           `json:"from_country"`
	To          string           `json:"to_country"`
	PackageType string           `json:"package_type"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	PricePerKg  decimal.Decimal  `json:"price_per_kg"`
	NairaBase   *decimal.Decimal `json:"naira_base_price"`
	NairaPerKg  *decimal.Decimal `json:"naira_price_per_kg"`
}

// Backup is a checksummed copy of a pricing table
type Backup struct {
	SchemaVersion string       `json:"schema_version"`
	Timestamp     time.Time    `json:"timestamp"`
	Checksum      string       `json:"checksum"`
	RuleCount     int          `json:"rule_count"`
	Rules         []RuleRecord `json:"rules"`
}

// NewBackup captures rules
func NewBackup(rules []*types.PricingRule) *Backup {
	b := &Backup{
		SchemaVersion: backupSchemaVersion,
		Timestamp:     time.Now().UTC(),
		Checksum:      CalculateChecksum(rules),
		RuleCount:     len(rules),
		Rules:         make([]RuleRecord, 0, len(rules)),
	}
	for _, r := range rules {
		rec := RuleRecord{
			From:        r.Route.From,
			To:          r.Route.To,
			PackageType: r.Route.PackageType,
			BasePrice:   r.USD.Base,
			PricePerKg:  r.USD.PerKg,
		}
		if r.NGN != nil {
			base, perKg := r.NGN.Base, r.NGN.PerKg
			rec.NairaBase, rec.NairaPerKg = &base, &perKg
		}
		b.Rules = append(b.Rules, rec)
	}
	return b
}

// PricingRules rebuilds validated rules from the backup
func (b *Backup) PricingRules() ([]*types.PricingRule, error) {
	out := make([]*types.PricingRule, 0, len(b.Rules))
	for i, rec := range b.Rules {
		base, perKg := rec.BasePrice, rec.PricePerKg
		rule, err := types.NewPricingRule(types.RuleInput{
			From:        rec.From,
			To:          rec.To,
			PackageType: rec.PackageType,
			BasePrice:   &base,
			PricePerKg:  &perKg,
			NairaBase:   rec.NairaBase,
			NairaPerKg:  rec.NairaPerKg,
		})
		if err != nil {
			return nil, fmt.Errorf("backup rule %d: %w", i, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

// Verify recomputes the checksum and compares it with the recorded one
func (b *Backup) Verify() error {
	rules, err := b.PricingRules()
	if err != nil {
		return err
	}
	if len(rules) != b.RuleCount {
		return fmt.Errorf("backup records %d rules but holds %d", b.RuleCount, len(rules))
	}
	if sum := CalculateChecksum(rules); sum != b.Checksum {
		return fmt.Errorf("backup checksum mismatch: recorded %s, computed %s", b.Checksum, sum)
	}
	return nil
}

// BackupManager writes and reads backup files
type BackupManager struct {
	now func() time.Time
}

// NewBackupManager creates a backup manager
func NewBackupManager() *BackupManager {
	return &BackupManager{now: time.Now}
}

// WriteBackup writes b into dir and returns the file path
func (m *BackupManager) WriteBackup(dir string, b *Backup) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	name := fmt.Sprintf("pricing_%s_%s.json",
		m.now().UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteJSON(f, b); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// ReadBackup loads and verifies the backup at path
func (m *BackupManager) ReadBackup(path string) (*Backup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var b Backup
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("decoding backup: %w", err)
	}
	if err := b.Verify(); err != nil {
		return nil, err
	}
	return &b, nil
}

// WriteJSON writes b as indented JSON
func WriteJSON(w io.Writer, b *Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}
