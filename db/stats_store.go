package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shipquote/core/stats"
	"shipquote/core/types"
)

// StatsStore reads the raw facts behind the backoffice statistics
type StatsStore struct {
	db *pgxpool.Pool
}

// NewStatsStore creates a store over db
func NewStatsStore(db *pgxpool.Pool) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

// CountProfiles returns the number of profiles
func (s *StatsStore) CountProfiles(ctx context.Context) (int, error) {
	return s.count(ctx, "profiles")
}

// CountRules returns the number of pricing rules
func (s *StatsStore) CountRules(ctx context.Context) (int, error) {
	return s.count(ctx, "pricing")
}

// OrderFacts returns status, cost and creation time of every order
func (s *StatsStore) OrderFacts(ctx context.Context) ([]stats.OrderFact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT COALESCE(status, 'pending'), COALESCE(estimated_cost, 0)::text, created_at
		FROM orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.OrderFact
	for rows.Next() {
		var (
			f      stats.OrderFact
			status string
			cost   string
		)
		if err := rows.Scan(&status, &cost, &f.CreatedAt); err != nil {
			return nil, err
		}
		d, err := parseNumeric(&cost)
		if err != nil {
			return nil, err
		}
		f.Status = types.OrderStatus(status)
		f.EstimatedCost = *d
		out = append(out, f)
	}
	return out, rows.Err()
}

// BlogFacts returns the publication state of every blog post
func (s *StatsStore) BlogFacts(ctx context.Context) ([]stats.BlogFact, error) {
	rows, err := s.db.Query(ctx, `SELECT published, created_at FROM blog_posts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.BlogFact
	for rows.Next() {
		var f stats.BlogFact
		if err := rows.Scan(&f.Published, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
