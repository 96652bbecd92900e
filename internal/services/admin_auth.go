package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gitshopapp/trackpage/internal/logging"
)

const (
	adminSubject = "admin"
	tokenIssuer  = "trackpage"
)

type AdminToken struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminAuthService checks the shared admin password and issues HS256 bearer
// tokens for the admin API. The password may be configured in plain text or
// as a bcrypt hash.
type AdminAuthService struct {
	passwordDigest [sha256.Size]byte
	passwordHash   []byte
	signingKey     []byte
	tokenTTL       time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

func NewAdminAuthService(password, signingKey string, tokenTTL time.Duration, logger *slog.Logger) (*AdminAuthService, error) {
	if password == "" {
		return nil, fmt.Errorf("admin password is required")
	}
	if len(signingKey) < 32 {
		return nil, fmt.Errorf("token signing key must be at least 32 bytes")
	}
	if tokenTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}

	s := &AdminAuthService{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
		now:        time.Now,
		logger:     logger,
	}
	if isBcryptHash(password) {
		if _, err := bcrypt.Cost([]byte(password)); err != nil {
			return nil, fmt.Errorf("invalid bcrypt admin password: %w", err)
		}
		s.passwordHash = []byte(password)
	} else {
		s.passwordDigest = sha256.Sum256([]byte(password))
	}
	return s, nil
}

func isBcryptHash(value string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

func (s *AdminAuthService) passwordMatches(password string) bool {
	if s.passwordHash != nil {
		return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	}
	digest := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(digest[:], s.passwordDigest[:]) == 1
}

func (s *AdminAuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Login verifies the password and returns a signed token.
func (s *AdminAuthService) Login(ctx context.Context, password string) (AdminToken, error) {
	if !s.passwordMatches(password) {
		logging.FromContext(ctx, s.logger).Warn("admin login rejected")
		return AdminToken{}, ErrInvalidCredentials
	}

	now := s.now()
	token := AdminToken{
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.tokenTTL),
	}

	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		Issuer:    tokenIssuer,
		ID:        token.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(token.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return AdminToken{}, fmt.Errorf("failed to sign token: %w", err)
	}
	token.Token = signed

	logging.FromContext(ctx, s.logger).Info("admin login succeeded", "token_id", token.TokenID)
	return token, nil
}

// ValidateToken parses a bearer token and returns its subject.
func (s *AdminAuthService) ValidateToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims.Subject, nil
}
