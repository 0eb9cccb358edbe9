// Package repository defines the storage interfaces the service layer
// depends on. The concrete MongoDB implementation lives in repository/mongo;
// tests inject hand-written in-memory mocks. Programming against these
// interfaces keeps the services free of any driver import.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/library-backend/internal/model"
)

// BookFilter narrows a book listing. Zero value means "all books".
// AuthorID and Genres combine conjunctively: a book must match both when
// both are set.
type BookFilter struct {
	AuthorID *primitive.ObjectID // books referencing this author
	Genres   []string            // books whose genre list intersects this set
}

// AuthorRepository persists authors.
type AuthorRepository interface {
	// Upsert finds the author with the given name, creating it atomically if
	// absent. A single find-or-insert (not find-then-create) so concurrent
	// calls for the same name cannot produce duplicate authors.
	Upsert(ctx context.Context, name string) (*model.Author, error)

	// FindByName returns the author with the exact name, or
	// apperror.ErrNotFound.
	FindByName(ctx context.Context, name string) (*model.Author, error)

	// FindByID returns the author with the given id, or apperror.ErrNotFound.
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Author, error)

	// SetBorn updates the author's birth year and returns the updated record.
	SetBorn(ctx context.Context, id primitive.ObjectID, born int) (*model.Author, error)

	// All returns every author.
	All(ctx context.Context) ([]model.Author, error)

	// Count returns the total number of authors.
	Count(ctx context.Context) (int64, error)
}

// BookRepository persists books.
type BookRepository interface {
	// Create inserts a new book. The repository assigns the ID.
	Create(ctx context.Context, book *model.Book) error

	// Find returns the books matching the filter.
	Find(ctx context.Context, filter BookFilter) ([]model.Book, error)

	// Count returns the total number of books.
	Count(ctx context.Context) (int64, error)

	// CountByAuthor returns how many books reference the given author.
	CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a new user. The repository assigns the ID. A duplicate
	// username surfaces as apperror.ErrValidation.
	Create(ctx context.Context, user *model.User) error

	// FindByID returns the user with the given id, or apperror.ErrNotFound.
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)

	// FindByUsername returns the user with the given username, or
	// apperror.ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}
