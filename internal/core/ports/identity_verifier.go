package ports

import (
	"context"

	"github.com/bioren/user-directory/internal/core/domain"
)

// IdentityVerifier checks a raw bearer token against the identity provider.
// Every failure wraps domain.ErrUnauthorized.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.VerifiedIdentity, error)
}
