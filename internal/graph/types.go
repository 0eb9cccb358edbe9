package graph

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/sakif/library-backend/internal/model"
	"github.com/sakif/library-backend/internal/service"
)

// Per-type resolvers. Each wraps a model value plus whatever the type's
// computed fields need. Scalar fields just echo the model; Book.author and
// Author.bookCount hit the service on demand — a query that doesn't select
// them costs nothing extra.

// BookResolver resolves the Book type.
type BookResolver struct {
	library *service.LibraryService
	book    model.Book
}

// Title resolves Book.title.
func (r *BookResolver) Title() string {
	return r.book.Title
}

// Published resolves Book.published.
func (r *BookResolver) Published() int32 {
	return int32(r.book.Published)
}

// Genres resolves Book.genres. The schema type is [String!]!, so a book
// stored without genres resolves to an empty list, never null.
func (r *BookResolver) Genres() []string {
	if r.book.Genres == nil {
		return []string{}
	}
	return r.book.Genres
}

// Author lazily resolves Book.author from the stored reference. Books
// without a reference (and dangling references) resolve to null.
func (r *BookResolver) Author(ctx context.Context) (*AuthorResolver, error) {
	if r.book.AuthorID.IsZero() {
		return nil, nil
	}
	author, err := r.library.AuthorByID(ctx, r.book.AuthorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, nil
	}
	return &AuthorResolver{library: r.library, author: *author}, nil
}

// AuthorResolver resolves the Author type.
type AuthorResolver struct {
	library *service.LibraryService
	author  model.Author
}

// Name resolves Author.name.
func (r *AuthorResolver) Name() string {
	return r.author.Name
}

// ID resolves Author.id.
func (r *AuthorResolver) ID() graphql.ID {
	return graphql.ID(r.author.ID.Hex())
}

// Born resolves Author.born; null when the birth year is unknown.
func (r *AuthorResolver) Born() *int32 {
	if r.author.Born == nil {
		return nil
	}
	born := int32(*r.author.Born)
	return &born
}

// BookCount counts this author's books, fresh on every read.
func (r *AuthorResolver) BookCount(ctx context.Context) (int32, error) {
	n, err := r.library.BookCountFor(ctx, r.author.ID)
	return int32(n), err
}

// UserResolver resolves the User type. Note there is no password field — the
// hash never crosses the API boundary.
type UserResolver struct {
	user model.User
}

// Username resolves User.username.
func (r *UserResolver) Username() string {
	return r.user.Username
}

// FavouriteGenre resolves User.favouriteGenre.
func (r *UserResolver) FavouriteGenre() string {
	return r.user.FavouriteGenre
}

// ID resolves User.id.
func (r *UserResolver) ID() graphql.ID {
	return graphql.ID(r.user.ID.Hex())
}

// TokenResolver resolves the Token type returned by login.
type TokenResolver struct {
	value string
}

// Value resolves Token.value: the signed JWT.
func (r *TokenResolver) Value() string {
	return r.value
}
