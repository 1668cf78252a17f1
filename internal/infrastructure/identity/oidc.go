package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/bioren/user-directory/internal/core/domain"
)

// OIDCVerifier validates ID tokens against an OpenID Connect issuer. For
// Firebase Auth the issuer is https://securetoken.google.com/<project-id>
// and the audience is the project id.
type OIDCVerifier struct {
	verifier  *oidc.IDTokenVerifier
	roleClaim string
	timeout   time.Duration
}

// NewOIDCVerifier runs issuer discovery and prepares a verifier bound to
// cfg.Audience. Signing keys are fetched lazily and refreshed on rotation.
func NewOIDCVerifier(ctx context.Context, cfg Config) (*OIDCVerifier, error) {
	if cfg.IssuerURL == "" || cfg.Audience == "" {
		return nil, errors.New("identity: oidc provider requires issuer url and audience")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	discoverCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	provider, err := oidc.NewProvider(discoverCtx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("identity: oidc discovery: %w", err)
	}

	return &OIDCVerifier{
		verifier:  provider.Verifier(&oidc.Config{ClientID: cfg.Audience}),
		roleClaim: roleClaimOrDefault(cfg.RoleClaim),
		timeout:   timeout,
	}, nil
}

func newOIDCVerifierWithKeySet(issuer, audience, roleClaim string, keySet oidc.KeySet, now func() time.Time) *OIDCVerifier {
	return &OIDCVerifier{
		verifier:  oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: audience, Now: now}),
		roleClaim: roleClaimOrDefault(roleClaim),
		timeout:   defaultTimeout,
	}
}

// Verify checks signature, issuer, audience and expiry of rawToken.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*domain.VerifiedIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	tok, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, rejected(err)
	}

	claims := map[string]any{}
	if err := tok.Claims(&claims); err != nil {
		return nil, rejected(err)
	}
	return identityFromClaims(tok.Subject, claims, v.roleClaim)
}
