package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/sakif/library-backend/internal/apperror"
	"github.com/sakif/library-backend/internal/model"
)

// These tests run against the driver's mock deployment: command responses
// are scripted per test, no mongod required. They pin the behaviour wrapped
// AROUND the driver — error translation and the duplicate-key retry — not
// query correctness, which only a live server can judge.

func TestNewDB_PerEntityCollections(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("wiring", func(mt *mtest.T) {
		db := newDB(mt.Client)

		if got := db.authors.collection.Name(); got != "authors" {
			mt.Errorf("authors collection = %q, want %q", got, "authors")
		}
		if got := db.books.collection.Name(); got != "books" {
			mt.Errorf("books collection = %q, want %q", got, "books")
		}
		if got := db.users.collection.Name(); got != "users" {
			mt.Errorf("users collection = %q, want %q", got, "users")
		}

		// The accessors must hand out non-nil implementations of the
		// repository interfaces the services are wired with.
		if db.Authors() == nil || db.Books() == nil || db.Users() == nil {
			mt.Error("repository accessor returned nil")
		}
	})
}

func TestAuthorUpsert_RetriesOnDuplicateKey(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key then winner", func(mt *mtest.T) {
		id := primitive.NewObjectID()

		// First findAndModify loses the insert race on the unique name index
		// (E11000); the retry returns the winner's document.
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11000,
				Message: "E11000 duplicate key error collection: library.authors",
				Name:    "DuplicateKey",
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: id},
				{Key: "name", Value: "Robert Martin"},
			}}),
		)

		db := newDB(mt.Client)
		author, err := db.Authors().Upsert(context.Background(), "Robert Martin")
		if err != nil {
			mt.Fatalf("Upsert() error = %v, want the retry to succeed", err)
		}
		if author.ID != id || author.Name != "Robert Martin" {
			mt.Errorf("Upsert() = %+v, want the winner's document", author)
		}
	})

	mt.Run("other command errors are not retried", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    13,
				Message: "not authorized",
				Name:    "Unauthorized",
			}),
		)

		db := newDB(mt.Client)
		if _, err := db.Authors().Upsert(context.Background(), "Robert Martin"); err == nil {
			mt.Fatal("Upsert() swallowed a non-duplicate command error")
		}
	})
}

func TestAuthorFindByName_NotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no documents", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.authors", mtest.FirstBatch))

		db := newDB(mt.Client)
		_, err := db.Authors().FindByName(context.Background(), "Nobody")
		if !errors.Is(err, apperror.ErrNotFound) {
			mt.Fatalf("FindByName() error = %v, want ErrNotFound", err)
		}
	})
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unique index violation", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: library.users",
		}))

		db := newDB(mt.Client)
		user := &model.User{Username: "reader", Password: "bcrypt-hash", FavouriteGenre: "crime"}
		err := db.Users().Create(context.Background(), user)
		if !errors.Is(err, apperror.ErrValidation) {
			mt.Fatalf("Create() error = %v, want ErrValidation", err)
		}
	})
}
