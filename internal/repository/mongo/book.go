package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/library-backend/internal/model"
	"github.com/sakif/library-backend/internal/repository"
)

var _ repository.BookRepository = (*bookRepo)(nil)

// bookRepo implements repository.BookRepository against the books collection.
type bookRepo struct {
	collection *mongo.Collection
}

// Create inserts a new book and writes the generated id back onto the model.
func (r *bookRepo) Create(ctx context.Context, book *model.Book) error {
	book.ID = primitive.NewObjectID()
	if book.Genres == nil {
		book.Genres = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, book); err != nil {
		return fmt.Errorf("mongo: creating book: %w", err)
	}
	return nil
}

// Find returns the books matching the filter. Conditions are combined
// conjunctively: {author: X, genres: {$in: [...]}} requires both to hold.
// Mongo matches {genres: {$in: vals}} against array fields element-wise,
// which gives exactly the "genre list intersects the set" semantics.
func (r *bookRepo) Find(ctx context.Context, filter repository.BookFilter) ([]model.Book, error) {
	query := bson.M{}
	if filter.AuthorID != nil {
		query["author"] = *filter.AuthorID
	}
	if len(filter.Genres) > 0 {
		query["genres"] = bson.M{"$in": filter.Genres}
	}

	cur, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("mongo: listing books: %w", err)
	}

	books := []model.Book{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("mongo: decoding books: %w", err)
	}
	return books, nil
}

// Count returns the total number of books.
func (r *bookRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo: counting books: %w", err)
	}
	return n, nil
}

// CountByAuthor returns how many books reference the given author. Computed
// fresh on every call — Author.bookCount is never cached or denormalized.
func (r *bookRepo) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"author": authorID})
	if err != nil {
		return 0, fmt.Errorf("mongo: counting books for author %s: %w", authorID.Hex(), err)
	}
	return n, nil
}
