package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/bioren/user-directory/internal/core/domain"
)

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	v, err := NewJWTVerifier(Config{Secret: "secret", RoleClaim: "app_role"})
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}

	token := signHS256(t, "secret", jwt.MapClaims{
		"sub":      "u1",
		"email":    "a@x.com",
		"app_role": "visitor",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	id, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if id.SubjectID != "u1" || id.Email != "a@x.com" || id.Role != "visitor" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestJWTVerifier_IssuerAndAudience(t *testing.T) {
	v, err := NewJWTVerifier(Config{Secret: "secret", IssuerURL: "bioren-dev", Audience: "bioren"})
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}

	good := signHS256(t, "secret", jwt.MapClaims{
		"sub": "u1", "iss": "bioren-dev", "aud": "bioren",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := v.Verify(context.Background(), good); err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}

	bad := signHS256(t, "secret", jwt.MapClaims{
		"sub": "u1", "iss": "bioren-dev", "aud": "other",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := v.Verify(context.Background(), bad); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong audience, got %v", err)
	}
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v, err := NewJWTVerifier(Config{Secret: "secret"})
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}

	tokens := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": signHS256(t, "other", jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}),
		"expired":      signHS256(t, "secret", jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no expiry":    signHS256(t, "secret", jwt.MapClaims{"sub": "u1"}),
		"no subject":   signHS256(t, "secret", jwt.MapClaims{"email": "a@x.com", "exp": time.Now().Add(time.Hour).Unix()}),
	}

	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestJWTVerifier_RejectsOtherAlgorithms(t *testing.T) {
	v, err := NewJWTVerifier(Config{Secret: "secret"})
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}

	claims := jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := v.Verify(context.Background(), signed); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	v, err := New(context.Background(), Config{Provider: ProviderHS256, Secret: "secret"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := v.(*JWTVerifier); !ok {
		t.Fatalf("expected *JWTVerifier, got %T", v)
	}

	if _, err := New(context.Background(), Config{Provider: ProviderHS256}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for hs256 without secret")
	}
	if _, err := New(context.Background(), Config{Provider: "saml"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
