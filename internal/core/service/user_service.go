package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bioren/user-directory/internal/core/domain"
	"github.com/bioren/user-directory/internal/core/ports"
)

// UserService implements registration, login and profile lookup on top of an
// identity verifier and a profile repository.
type UserService struct {
	verifier ports.IdentityVerifier
	repo     ports.UserRepository
	log      zerolog.Logger
}

func NewUserService(verifier ports.IdentityVerifier, repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{verifier: verifier, repo: repo, log: log}
}

// Register verifies the caller and writes their profile, overwriting any
// previous registration for the same subject.
func (s *UserService) Register(ctx context.Context, authHeader, displayName string) (*domain.UserProfile, error) {
	id, err := s.authenticate(ctx, authHeader)
	if err != nil {
		return nil, err
	}

	profile := domain.NewUserProfile(id, displayName)
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, storageError("register", err)
	}

	s.log.Info().Str("subject_id", profile.SubjectID).Msg("profile registered")
	return profile, nil
}

// Login verifies the caller and echoes back who they are. It never touches
// the repository.
func (s *UserService) Login(ctx context.Context, authHeader string) (*ports.LoginResult, error) {
	id, err := s.authenticate(ctx, authHeader)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("subject_id", id.SubjectID).
		Str("role", id.Role).
		Msg("login verified")

	return &ports.LoginResult{SubjectID: id.SubjectID, Email: id.Email}, nil
}

// Lookup verifies the caller and reads their stored profile.
func (s *UserService) Lookup(ctx context.Context, authHeader string) (*domain.UserProfile, bool, error) {
	id, err := s.authenticate(ctx, authHeader)
	if err != nil {
		return nil, false, err
	}

	profile, err := s.repo.FindBySubjectID(ctx, id.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, false, nil
		}
		return nil, false, storageError("lookup", err)
	}
	return profile, true, nil
}

func (s *UserService) authenticate(ctx context.Context, authHeader string) (*domain.VerifiedIdentity, error) {
	token, err := ParseBearer(authHeader)
	if err != nil {
		return nil, err
	}

	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token verification failed")
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return id, nil
}

// storageError keeps the repository cause in the chain while tagging it as a
// storage failure, unless the repository already did.
func storageError(op string, err error) error {
	if errors.Is(err, domain.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
