package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

const ruleColumns = `id::text, from_country, to_country, package_type,
	base_price::text, price_per_kg::text, naira_base_price::text, naira_price_per_kg::text,
	created_at`

// PricingStore reads and writes the pricing table
type PricingStore struct {
	db *pgxpool.Pool
}

// NewPricingStore creates a store over db
func NewPricingStore(db *pgxpool.Pool) *PricingStore {
	return &PricingStore{db: db}
}

func scanRule(row rowScanner) (*types.PricingRule, error) {
	var in types.RuleInput
	var basePrice, perKg, nairaBase, nairaPerKg *string
	if err := row.Scan(&in.ID, &in.From, &in.To, &in.PackageType,
		&basePrice, &perKg, &nairaBase, &nairaPerKg, &in.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if in.BasePrice, err = parseNumeric(basePrice); err != nil {
		return nil, err
	}
	if in.PricePerKg, err = parseNumeric(perKg); err != nil {
		return nil, err
	}
	if in.NairaBase, err = parseNumeric(nairaBase); err != nil {
		return nil, err
	}
	if in.NairaPerKg, err = parseNumeric(nairaPerKg); err != nil {
		return nil, err
	}

	rule, err := types.NewPricingRule(in)
	if err != nil {
		return nil, fmt.Errorf("stored rule %s is malformed: %w", in.ID, err)
	}
	return rule, nil
}

// parseNumeric reads a NUMERIC column selected as text. NULL stays nil.
func parseNumeric(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("parsing numeric %q: %w", *s, err)
	}
	return &d, nil
}

// nullable converts an optional rate into NULL-able column values
func nullable(r *types.Rate) (base, perKg decimal.NullDecimal) {
	if r == nil {
		return decimal.NullDecimal{}, decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(r.Base), decimal.NewNullDecimal(r.PerKg)
}

// FindRule returns the rule for an exact, case-sensitive route, or nil.
// Tables that predate the unique index may hold duplicates; the newest wins.
func (s *PricingStore) FindRule(ctx context.Context, key types.RouteKey) (*types.PricingRule, error) {
	query := `SELECT ` + ruleColumns + `
		FROM pricing
		WHERE from_country = $1 AND to_country = $2 AND package_type = $3
		ORDER BY created_at DESC
		LIMIT 1`

	rule, err := scanRule(s.db.QueryRow(ctx, query, key.From, key.To, key.PackageType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// GetRule returns the rule with id, or nil
func (s *PricingStore) GetRule(ctx context.Context, id string) (*types.PricingRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM pricing WHERE id = $1`

	rule, err := scanRule(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// ListRules returns every rule ordered by route
func (s *PricingStore) ListRules(ctx context.Context) ([]*types.PricingRule, error) {
	query := `SELECT ` + ruleColumns + `
		FROM pricing
		ORDER BY from_country, to_country, package_type, created_at DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.PricingRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// ListRoutes returns the distinct route keys in the table
func (s *PricingStore) ListRoutes(ctx context.Context) ([]types.RouteKey, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT from_country, to_country, package_type FROM pricing`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.RouteKey
	for rows.Next() {
		var k types.RouteKey
		if err := rows.Scan(&k.From, &k.To, &k.PackageType); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// UpsertRule inserts rule or replaces the rates of the existing rule on the same route
func (s *PricingStore) UpsertRule(ctx context.Context, rule *types.PricingRule) (*types.PricingRule, error) {
	nairaBase, nairaPerKg := nullable(rule.NGN)
	query := `
		INSERT INTO pricing (from_country, to_country, package_type,
			base_price, price_per_kg, naira_base_price, naira_price_per_kg)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric)
		ON CONFLICT (from_country, to_country, package_type) DO UPDATE SET
			base_price = EXCLUDED.base_price,
			price_per_kg = EXCLUDED.price_per_kg,
			naira_base_price = EXCLUDED.naira_base_price,
			naira_price_per_kg = EXCLUDED.naira_price_per_kg
		RETURNING ` + ruleColumns

	return scanRule(s.db.QueryRow(ctx, query,
		rule.Route.From, rule.Route.To, rule.Route.PackageType,
		rule.USD.Base, rule.USD.PerKg, nairaBase, nairaPerKg))
}

// UpdateRule rewrites the rule with rule.ID. It returns nil when no such rule exists.
func (s *PricingStore) UpdateRule(ctx context.Context, rule *types.PricingRule) (*types.PricingRule, error) {
	nairaBase, nairaPerKg := nullable(rule.NGN)
	query := `
		UPDATE pricing SET
			from_country = $2, to_country = $3, package_type = $4,
			base_price = $5::numeric, price_per_kg = $6::numeric,
			naira_base_price = $7::numeric, naira_price_per_kg = $8::numeric
		WHERE id = $1
		RETURNING ` + ruleColumns

	updated, err := scanRule(s.db.QueryRow(ctx, query, rule.ID,
		rule.Route.From, rule.Route.To, rule.Route.PackageType,
		rule.USD.Base, rule.USD.PerKg, nairaBase, nairaPerKg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, apperrors.Conflict(fmt.Sprintf("a pricing rule for %s (%s) already exists",
			rule.Route, rule.Route.PackageType))
	}
	return updated, err
}

// DeleteRule removes the rule with id and reports whether it existed
func (s *PricingStore) DeleteRule(ctx context.Context, id string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM pricing WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReplaceRules swaps the whole table for rules in one transaction
func (s *PricingStore) ReplaceRules(ctx context.Context, rules []*types.PricingRule) (int, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM pricing`); err != nil {
		return 0, fmt.Errorf("clearing pricing: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rule := range rules {
		nairaBase, nairaPerKg := nullable(rule.NGN)
		batch.Queue(`
			INSERT INTO pricing (from_country, to_country, package_type,
				base_price, price_per_kg, naira_base_price, naira_price_per_kg)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric)`,
			rule.Route.From, rule.Route.To, rule.Route.PackageType,
			rule.USD.Base, rule.USD.PerKg, nairaBase, nairaPerKg)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("inserting pricing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(rules), nil
}
