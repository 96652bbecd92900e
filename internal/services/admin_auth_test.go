package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var testSigningKey = strings.Repeat("s", 32)

func newTestAuth(t *testing.T) *AdminAuthService {
	t.Helper()

	auth, err := NewAdminAuthService("correct horse", testSigningKey, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewAdminAuthService() error = %v", err)
	}
	auth.now = func() time.Time { return testNow }
	return auth
}

func TestNewAdminAuthServiceValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		key      string
		ttl      time.Duration
	}{
		{name: "missing password", key: testSigningKey, ttl: time.Hour},
		{name: "short key", password: "correct horse", key: "short", ttl: time.Hour},
		{name: "zero ttl", password: "correct horse", key: testSigningKey},
		{name: "malformed bcrypt hash", password: "$2a$10$short", key: testSigningKey, ttl: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewAdminAuthService(tt.password, tt.key, tt.ttl, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAdminLoginAndValidate(t *testing.T) {
	t.Parallel()

	auth := newTestAuth(t)

	if _, err := auth.Login(context.Background(), "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	token, err := auth.Login(context.Background(), "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token.Token == "" || token.TokenID == "" {
		t.Fatalf("expected token, got %+v", token)
	}
	if !token.ExpiresAt.Equal(testNow.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %s", token.ExpiresAt)
	}

	subject, err := auth.ValidateToken(token.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if subject != adminSubject {
		t.Fatalf("unexpected subject %q", subject)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	t.Parallel()

	auth := newTestAuth(t)
	valid, err := auth.Login(context.Background(), "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	otherKey := newTestAuth(t)
	otherKey.signingKey = []byte(strings.Repeat("x", 32))
	forged, err := otherKey.Login(context.Background(), "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   adminSubject,
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	expired := newTestAuth(t)
	expired.now = func() time.Time { return testNow.Add(2 * time.Hour) }

	tests := []struct {
		name  string
		auth  *AdminAuthService
		token string
	}{
		{name: "empty", auth: auth, token: " "},
		{name: "garbage", auth: auth, token: "not-a-jwt"},
		{name: "wrong key", auth: auth, token: forged.Token},
		{name: "alg none", auth: auth, token: none},
		{name: "expired", auth: expired, token: valid.Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tt.auth.ValidateToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestAdminLoginWithBcryptPassword(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}
	auth, err := NewAdminAuthService(string(hash), testSigningKey, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewAdminAuthService() error = %v", err)
	}

	if _, err := auth.Login(context.Background(), string(hash)); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("the hash itself must not log in, got %v", err)
	}
	if _, err := auth.Login(context.Background(), "correct horse"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
}
