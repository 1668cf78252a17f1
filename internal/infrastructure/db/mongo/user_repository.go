package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bioren/user-directory/internal/core/domain"
)

// CollectionUsers holds one document per user, keyed by subject id.
const CollectionUsers = "usuarios"

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(CollectionUsers)}
}

// Upsert replaces the whole document for profile.SubjectID, inserting it when
// absent. Fields missing from profile are dropped, not merged.
func (r *UserRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.SubjectID == "" {
		return fmt.Errorf("upsert profile: %w: empty subject id", domain.ErrStorage)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": profile.SubjectID},
		profile,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

// FindBySubjectID retrieves a profile by its subject id.
func (r *UserRepository) FindBySubjectID(ctx context.Context, subjectID string) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.UserProfile
	err := r.col.FindOne(ctx, bson.M{"_id": subjectID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w: %w", domain.ErrStorage, err)
	}
	return &p, nil
}
