package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

type keyStore struct {
	byKey map[string][]*types.Profile
	err   error
}

func (s *keyStore) FindByAPIKey(_ context.Context, key string) ([]*types.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byKey[key], nil
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		token   string
		wantErr bool
	}{
		{"valid", "Bearer abc-123", "abc-123", false},
		{"absent", "", "", true},
		{"wrong scheme", "Basic abc", "", true},
		{"lowercase scheme", "bearer abc", "", true},
		{"empty token", "Bearer ", "", true},
		{"no space", "Bearerabc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractBearer(tt.header)
			if tt.wantErr {
				if !apperrors.IsType(err, apperrors.TypeMissingCredential) {
					t.Fatalf("expected MissingCredential, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token != tt.token {
				t.Errorf("expected %q, got %q", tt.token, token)
			}
		})
	}
}

func TestKeyValidator(t *testing.T) {
	ada := &types.Profile{UserID: "u-1", FullName: "Ada Obi", APIKey: "key-1"}
	store := &keyStore{byKey: map[string][]*types.Profile{
		"key-1":  {ada},
		"shared": {{UserID: "u-2"}, {UserID: "u-3"}},
	}}
	v := NewKeyValidator(store, nil)

	p, err := v.Validate(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID != "u-1" || p.DisplayName() != "Ada Obi" {
		t.Errorf("unexpected principal %+v", p)
	}

	if _, err := v.Validate(context.Background(), "KEY-1"); !apperrors.IsType(err, apperrors.TypeInvalidCredential) {
		t.Errorf("match must be case-sensitive, got %v", err)
	}
	if _, err := v.Validate(context.Background(), "unknown"); !apperrors.IsType(err, apperrors.TypeInvalidCredential) {
		t.Errorf("expected InvalidCredential, got %v", err)
	}
	if _, err := v.Validate(context.Background(), "shared"); !apperrors.IsType(err, apperrors.TypeInvalidCredential) {
		t.Errorf("ambiguous key should fail closed, got %v", err)
	}
	if _, err := v.Validate(context.Background(), ""); !apperrors.IsType(err, apperrors.TypeMissingCredential) {
		t.Errorf("empty key should be MissingCredential, got %v", err)
	}
}

func TestKeyValidatorStoreFailure(t *testing.T) {
	v := NewKeyValidator(&keyStore{err: errors.New("timeout")}, nil)

	if _, err := v.Validate(context.Background(), "key"); !apperrors.IsType(err, apperrors.TypeInternal) {
		t.Errorf("expected Internal, got %v", err)
	}
}

func TestGenerateAPIKeyIsUUID(t *testing.T) {
	a, b := GenerateAPIKey(), GenerateAPIKey()
	if a == b {
		t.Error("keys should differ")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("key %q is not a UUID: %v", a, err)
	}
}

func signSession(t *testing.T, secret string, claims SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return token
}

func TestSessionVerifier(t *testing.T) {
	const secret = "test-secret"
	v := NewSessionVerifier(secret, "authenticated", "")

	valid := SessionClaims{
		Email: "ops@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	s, err := v.Verify(signSession(t, secret, valid))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.UserID != "user-42" || s.Email != "ops@example.com" {
		t.Errorf("unexpected session %+v", s)
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongAud := valid
	wrongAud.Audience = jwt.ClaimStrings{"anon"}
	noSubject := valid
	noSubject.Subject = ""
	noExpiry := valid
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"expired", signSession(t, secret, expired)},
		{"wrong audience", signSession(t, secret, wrongAud)},
		{"no subject", signSession(t, secret, noSubject)},
		{"no expiry", signSession(t, secret, noExpiry)},
		{"wrong secret", signSession(t, "other", valid)},
		{"garbage", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.token); !apperrors.IsType(err, apperrors.TypeUnauthorized) {
				t.Errorf("expected Unauthorized, got %v", err)
			}
		})
	}
}

func TestSessionVerifierWithoutSecret(t *testing.T) {
	v := NewSessionVerifier("", "", "")
	if _, err := v.Verify("anything"); !apperrors.IsType(err, apperrors.TypeUnauthorized) {
		t.Errorf("expected Unauthorized, got %v", err)
	}
}
