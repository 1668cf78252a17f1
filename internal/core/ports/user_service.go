package ports

import (
	"context"

	"github.com/bioren/user-directory/internal/core/domain"
)

// LoginResult is the minimal identity payload returned on login.
type LoginResult struct {
	SubjectID string
	Email     string
}

// UserService implements the user directory use cases. Every operation takes
// the raw Authorization header value.
type UserService interface {
	Register(ctx context.Context, authHeader, displayName string) (*domain.UserProfile, error)
	Login(ctx context.Context, authHeader string) (*LoginResult, error)
	// Lookup reports found=false with a nil error when no profile exists.
	Lookup(ctx context.Context, authHeader string) (profile *domain.UserProfile, found bool, err error)
}
