package ports

import (
	"context"

	"github.com/bioren/user-directory/internal/core/domain"
)

// UserRepository persists user profiles keyed by subject id.
type UserRepository interface {
	// Upsert writes the whole profile, replacing any existing document.
	Upsert(ctx context.Context, profile *domain.UserProfile) error
	// FindBySubjectID returns domain.ErrProfileNotFound when no document exists.
	FindBySubjectID(ctx context.Context, subjectID string) (*domain.UserProfile, error)
}
