package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/library-backend/internal/apperror"
	"github.com/sakif/library-backend/internal/model"
	"github.com/sakif/library-backend/internal/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

// userRepo implements repository.UserRepository against the users collection.
type userRepo struct {
	collection *mongo.Collection
}

// Create inserts a new user. The unique index on username turns a duplicate
// signup into a validation error rather than a raw driver error.
func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.ValidationFailed("username is already taken", user.Username)
		}
		return fmt.Errorf("mongo: creating user: %w", err)
	}
	return nil
}

// FindByID returns the user with the given id.
func (r *userRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", id.Hex())
		}
		return nil, fmt.Errorf("mongo: finding user %s: %w", id.Hex(), err)
	}
	return &user, nil
}

// FindByUsername returns the user with the given username.
func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("mongo: finding user %q: %w", username, err)
	}
	return &user, nil
}
