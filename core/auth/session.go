package auth

import (
	"github.com/golang-jwt/jwt/v5"

	apperrors "shipquote/internal/errors"
)

// SessionClaims are the claims the auth provider puts in its access tokens
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Session is a verified dashboard or backoffice caller
type Session struct {
	UserID string
	Email  string
}

// SessionVerifier checks HS256 access tokens signed with the provider's secret
type SessionVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewSessionVerifier creates a verifier. Empty audience or issuer skip that check.
func NewSessionVerifier(secret, audience, issuer string) *SessionVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &SessionVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}
}

// Verify parses and validates token. Without a configured secret nothing verifies.
func (v *SessionVerifier) Verify(token string) (*Session, error) {
	if len(v.secret) == 0 {
		return nil, apperrors.Unauthorized("Invalid token")
	}

	claims := &SessionClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.TypeUnauthorized, "Invalid token", err)
	}
	if claims.Subject == "" {
		return nil, apperrors.Unauthorized("Invalid token")
	}

	return &Session{UserID: claims.Subject, Email: claims.Email}, nil
}
