// Package identity adapts external token issuers to ports.IdentityVerifier.
//
// Two backends exist: an OIDC verifier that discovers the issuer's signing
// keys (Firebase Auth, Google, Keycloak...) and a shared-secret HS256
// verifier for local development.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bioren/user-directory/internal/core/domain"
	"github.com/bioren/user-directory/internal/core/ports"
)

const (
	ProviderOIDC  = "oidc"
	ProviderHS256 = "hs256"

	defaultRoleClaim = "role"
	defaultTimeout   = 5 * time.Second
)

// Config selects and parameterises a verifier backend.
type Config struct {
	Provider  string
	IssuerURL string
	Audience  string
	RoleClaim string
	// Secret is the HS256 signing key. Only used by the hs256 provider.
	Secret  string
	Timeout time.Duration
}

// New builds the verifier named by cfg.Provider.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (ports.IdentityVerifier, error) {
	var (
		v   ports.IdentityVerifier
		err error
	)

	switch cfg.Provider {
	case ProviderOIDC, "":
		v, err = NewOIDCVerifier(ctx, cfg)
	case ProviderHS256:
		v, err = NewJWTVerifier(cfg)
	default:
		return nil, fmt.Errorf("identity: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("provider", cfg.Provider).
		Str("issuer", cfg.IssuerURL).
		Str("audience", cfg.Audience).
		Msg("identity verifier configured")
	return v, nil
}

// rejected hides the provider's error taxonomy behind domain.ErrUnauthorized.
func rejected(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
}

// identityFromClaims maps decoded token claims onto a VerifiedIdentity. Claim
// values are taken as asserted by the issuer.
func identityFromClaims(subject string, claims map[string]any, roleClaim string) (*domain.VerifiedIdentity, error) {
	if subject == "" {
		return nil, rejected(fmt.Errorf("token has no subject"))
	}

	id := &domain.VerifiedIdentity{SubjectID: subject, Claims: claims}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if role, ok := claims[roleClaim]; ok && role != nil {
		id.Role = fmt.Sprint(role)
	}
	return id, nil
}

func roleClaimOrDefault(name string) string {
	if name == "" {
		return defaultRoleClaim
	}
	return name
}
