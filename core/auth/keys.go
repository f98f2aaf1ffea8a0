// Package auth authenticates callers: API keys for the pricing endpoint and
// provider-issued session tokens for the dashboard and backoffice.
package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

const bearerPrefix = "Bearer "

// PrincipalStore reverse-looks-up API keys
type PrincipalStore interface {
	// FindByAPIKey returns every profile holding key; more than one means the
	// store lost its uniqueness guarantee
	FindByAPIKey(ctx context.Context, key string) ([]*types.Profile, error)
}

// ExtractBearer pulls the token out of an Authorization header value.
// Absent header, wrong scheme, and empty token are all MissingCredential.
func ExtractBearer(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", apperrors.MissingCredential()
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return "", apperrors.MissingCredential()
	}
	return token, nil
}

// KeyValidator maps an API key to its principal
type KeyValidator struct {
	store  PrincipalStore
	logger *zap.Logger
	tracer trace.Tracer
}

// NewKeyValidator creates a validator over store
func NewKeyValidator(store PrincipalStore, logger *zap.Logger) *KeyValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyValidator{
		store:  store,
		logger: logger.Named("auth"),
		tracer: otel.Tracer("shipquote/core/auth"),
	}
}

// Validate matches key exactly against stored keys. No hashing, expiry or scopes.
func (v *KeyValidator) Validate(ctx context.Context, key string) (*types.Principal, error) {
	ctx, span := v.tracer.Start(ctx, "auth.ValidateKey")
	defer span.End()

	if key == "" {
		return nil, apperrors.MissingCredential()
	}

	profiles, err := v.store.FindByAPIKey(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "principal lookup failed")
		return nil, apperrors.Internal("principal lookup failed", err)
	}

	switch len(profiles) {
	case 0:
		return nil, apperrors.InvalidCredential()
	case 1:
		return profiles[0].Principal(), nil
	default:
		// fail closed rather than pick one of several owners
		v.logger.Warn("api key shared by multiple profiles", zap.Int("matches", len(profiles)))
		return nil, apperrors.InvalidCredential()
	}
}

// GenerateAPIKey returns a fresh random key
func GenerateAPIKey() string {
	return uuid.NewString()
}
