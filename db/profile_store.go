package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shipquote/core/types"
)

const profileColumns = `id::text, user_id, COALESCE(full_name, ''), COALESCE(company_name, ''),
	COALESCE(phone, ''), api_key, COALESCE(is_admin, FALSE), created_at, updated_at`

// ProfileStore reads and writes user profiles
type ProfileStore struct {
	db *pgxpool.Pool
}

// NewProfileStore creates a store over db
func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(row rowScanner) (*types.Profile, error) {
	var p types.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.CompanyName,
		&p.Phone, &p.APIKey, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProfileStore) queryProfiles(ctx context.Context, query string, args ...any) ([]*types.Profile, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ProfileStore) queryProfile(ctx context.Context, query string, args ...any) (*types.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// FindByAPIKey returns the profiles holding key. Two rows are enough to
// detect a shared key, so the scan stops there.
func (s *ProfileStore) FindByAPIKey(ctx context.Context, key string) ([]*types.Profile, error) {
	return s.queryProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE api_key = $1 LIMIT 2`, key)
}

// GetByUserID returns the profile for userID, or nil
func (s *ProfileStore) GetByUserID(ctx context.Context, userID string) (*types.Profile, error) {
	return s.queryProfile(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
}

// EnsureProfile returns the profile for userID, creating it with apiKey if absent
func (s *ProfileStore) EnsureProfile(ctx context.Context, userID, apiKey string) (*types.Profile, error) {
	query := `
		INSERT INTO profiles (user_id, api_key) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + profileColumns
	return scanProfile(s.db.QueryRow(ctx, query, userID, apiKey))
}

// ListProfiles returns every profile, newest first
func (s *ProfileStore) ListProfiles(ctx context.Context) ([]*types.Profile, error) {
	return s.queryProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
}

// ListWithKeys returns profiles that hold an API key, newest first
func (s *ProfileStore) ListWithKeys(ctx context.Context) ([]*types.Profile, error) {
	return s.queryProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE api_key <> '' ORDER BY created_at DESC`)
}

// SetAPIKey replaces userID's key. It returns nil when the profile does not exist.
func (s *ProfileStore) SetAPIKey(ctx context.Context, userID, key string) (*types.Profile, error) {
	return s.queryProfile(ctx, `
		UPDATE profiles SET api_key = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+profileColumns, userID, key)
}

// SetAdmin grants or revokes admin. It returns nil when the profile does not exist.
func (s *ProfileStore) SetAdmin(ctx context.Context, userID string, admin bool) (*types.Profile, error) {
	return s.queryProfile(ctx, `
		UPDATE profiles SET is_admin = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+profileColumns, userID, admin)
}
