package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/library-backend/internal/apperror"
	"github.com/sakif/library-backend/internal/model"
	"github.com/sakif/library-backend/internal/repository"
)

// Compile-time check that authorRepo implements the interface. If a method
// goes missing the compiler errors here, not at the call site much later.
var _ repository.AuthorRepository = (*authorRepo)(nil)

// authorRepo implements repository.AuthorRepository against the authors
// collection.
type authorRepo struct {
	collection *mongo.Collection
}

// Upsert finds the author with the given name, creating it if absent — in a
// single atomic FindOneAndUpdate so two concurrent calls for the same name
// yield the same record.
//
// $setOnInsert only writes fields when the operation inserts; a plain $set
// would touch the document on every call. ReturnDocument(After) makes the
// driver hand back the post-upsert document, so we get the generated _id
// without a second query.
func (r *authorRepo) Upsert(ctx context.Context, name string) (*model.Author, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	filter := bson.M{"name": name}
	update := bson.M{"$setOnInsert": bson.M{"name": name}}

	var author model.Author
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&author)
	if mongo.IsDuplicateKeyError(err) {
		// Two concurrent upserts for a brand-new name can both decide to
		// insert; the loser's insert hits the unique name index with E11000.
		// By then the winner's document exists, so one retry finds it.
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&author)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: upserting author %q: %w", name, err)
	}

	return &author, nil
}

// FindByName returns the author with the exact name.
// mongo.ErrNoDocuments is translated to the domain's NotFound error — the
// same pattern as translating sql.ErrNoRows, so callers never see a driver
// error type.
func (r *authorRepo) FindByName(ctx context.Context, name string) (*model.Author, error) {
	var author model.Author
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&author)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("author", name)
		}
		return nil, fmt.Errorf("mongo: finding author %q: %w", name, err)
	}
	return &author, nil
}

// FindByID returns the author with the given id.
func (r *authorRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Author, error) {
	var author model.Author
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&author)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("author", id.Hex())
		}
		return nil, fmt.Errorf("mongo: finding author %s: %w", id.Hex(), err)
	}
	return &author, nil
}

// SetBorn updates the author's birth year and returns the updated record.
func (r *authorRepo) SetBorn(ctx context.Context, id primitive.ObjectID, born int) (*model.Author, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var author model.Author
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"born": born}},
		opts,
	).Decode(&author)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("author", id.Hex())
		}
		return nil, fmt.Errorf("mongo: updating author %s: %w", id.Hex(), err)
	}
	return &author, nil
}

// All returns every author.
func (r *authorRepo) All(ctx context.Context) ([]model.Author, error) {
	cur, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo: listing authors: %w", err)
	}

	authors := []model.Author{}
	if err := cur.All(ctx, &authors); err != nil {
		return nil, fmt.Errorf("mongo: decoding authors: %w", err)
	}
	return authors, nil
}

// Count returns the total number of authors.
func (r *authorRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo: counting authors: %w", err)
	}
	return n, nil
}
