// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Resolver (GraphQL layer)  → parses arguments, shapes responses
//	Service (business layer)  → authorizes, validates, orchestrates
//	Repository (data layer)   → reads/writes MongoDB
//
// Services take a context.Context and plain values, never anything from
// net/http or the GraphQL machinery. Authorization reads the current user
// from the context — the auth middleware puts it there once per request, so
// every operation sees the same explicitly-threaded identity.
//
// Services depend on the repository interfaces, not the mongo package:
// tests inject in-memory mocks, production injects *mongo.DB, and this
// package can't tell the difference.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/library-backend/internal/apperror"
	"github.com/sakif/library-backend/internal/auth"
	"github.com/sakif/library-backend/internal/model"
	"github.com/sakif/library-backend/internal/pubsub"
	"github.com/sakif/library-backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryService implements the book/author operations.
type LibraryService struct {
	authors repository.AuthorRepository
	books   repository.BookRepository
	events  *pubsub.Broadcaster
	logger  *slog.Logger
}

// NewLibraryService creates a LibraryService with all required dependencies.
// Wired in server.New alongside the rest of the dependency graph.
func NewLibraryService(
	authors repository.AuthorRepository,
	books repository.BookRepository,
	events *pubsub.Broadcaster,
	logger *slog.Logger,
) *LibraryService {
	return &LibraryService{
		authors: authors,
		books:   books,
		events:  events,
		logger:  logger,
	}
}

// BookCount returns the total number of books. No auth required.
func (s *LibraryService) BookCount(ctx context.Context) (int64, error) {
	return s.books.Count(ctx)
}

// AuthorCount returns the total number of authors. No auth required.
func (s *LibraryService) AuthorCount(ctx context.Context) (int64, error) {
	return s.authors.Count(ctx)
}

// AllAuthors returns every author. The per-author bookCount is a separate
// lazy field resolution (see BookCountFor) — it is computed only when a
// client actually selects the field.
func (s *LibraryService) AllAuthors(ctx context.Context) ([]model.Author, error) {
	return s.authors.All(ctx)
}

// AllBooks returns books optionally filtered by author name and/or genre.
//
// Filter semantics are conjunctive: when both arguments are given, a book
// must match both. A nil argument means "don't filter on this". An author
// name that matches no author yields an empty list, not an error.
func (s *LibraryService) AllBooks(ctx context.Context, authorName, genre *string) ([]model.Book, error) {
	filter := repository.BookFilter{}

	if authorName != nil && *authorName != "" {
		author, err := s.authors.FindByName(ctx, *authorName)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				// No such author — no book can match the conjunction.
				return []model.Book{}, nil
			}
			return nil, err
		}
		filter.AuthorID = &author.ID
	}

	if genre != nil && *genre != "" {
		filter.Genres = []string{*genre}
	}

	books, err := s.books.Find(ctx, filter)
	if err != nil {
		s.logger.Error("listing books failed", slog.String("error", err.Error()))
		return nil, apperror.Internal("failed to list books")
	}
	return books, nil
}

// FilterByGenre returns books whose genre list intersects the given set.
// An empty set intersects nothing, so it returns an empty list.
func (s *LibraryService) FilterByGenre(ctx context.Context, genres []string) ([]model.Book, error) {
	if len(genres) == 0 {
		return []model.Book{}, nil
	}

	books, err := s.books.Find(ctx, repository.BookFilter{Genres: genres})
	if err != nil {
		s.logger.Error("filtering books failed", slog.String("error", err.Error()))
		return nil, apperror.Internal("failed to filter books")
	}
	return books, nil
}

// BooksByFavouriteGenre returns the books matching the current user's
// favourite genre. Requires an authenticated user.
func (s *LibraryService) BooksByFavouriteGenre(ctx context.Context) ([]model.Book, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthenticated("log in to see recommendations")
	}
	return s.FilterByGenre(ctx, []string{user.FavouriteGenre})
}

// AddBook creates a new book for the current user, auto-vivifying the author
// if this is the first book naming them.
//
// The auth check runs before anything touches the database — an
// unauthenticated call must leave no book and no author behind.
//
// The author lookup is a single atomic upsert, not find-then-create, so two
// concurrent AddBook calls naming the same new author converge on one
// author record.
//
// On success the new book is published on the BOOK_ADDED topic so active
// bookAdded subscriptions hear about it.
func (s *LibraryService) AddBook(ctx context.Context, title, authorName string, published int, genres []string) (*model.Book, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthenticated("log in to add books")
	}

	title = strings.TrimSpace(title)
	authorName = strings.TrimSpace(authorName)
	if title == "" {
		return nil, apperror.ValidationFailed("book title is required", title)
	}
	if authorName == "" {
		return nil, apperror.ValidationFailed("author name is required", authorName)
	}

	author, err := s.authors.Upsert(ctx, authorName)
	if err != nil {
		s.logger.Error("author upsert failed",
			slog.String("author", authorName),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal("failed to save book")
	}

	book := &model.Book{
		Title:     title,
		Published: published,
		Genres:    genres,
		AuthorID:  author.ID,
	}
	if err := s.books.Create(ctx, book); err != nil {
		s.logger.Error("saving book failed",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal("failed to save book")
	}

	s.logger.Info("book added",
		slog.String("id", book.ID.Hex()),
		slog.String("title", book.Title),
		slog.String("author", author.Name),
		slog.String("addedBy", user.Username),
	)

	s.events.Publish(pubsub.TopicBookAdded, *book)

	return book, nil
}

// EditAuthor sets an author's birth year. Requires an authenticated user.
//
// An unknown author name returns (nil, nil) — the GraphQL field is nullable
// and the original contract treats this as "nothing to edit", not an error.
// No write happens in that case.
func (s *LibraryService) EditAuthor(ctx context.Context, name string, born int) (*model.Author, error) {
	if _, ok := auth.UserFromContext(ctx); !ok {
		return nil, apperror.Unauthenticated("log in to edit authors")
	}

	author, err := s.authors.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service: finding author %q: %w", name, err)
	}

	updated, err := s.authors.SetBorn(ctx, author.ID, born)
	if err != nil {
		s.logger.Error("editing author failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, apperror.ValidationFailed("editing author failed", born)
	}

	s.logger.Info("author updated",
		slog.String("name", updated.Name),
		slog.Int("born", born),
	)
	return updated, nil
}

// BookCountFor counts the books referencing an author. Backs the
// Author.bookCount field — computed on every read, never cached.
func (s *LibraryService) BookCountFor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	return s.books.CountByAuthor(ctx, authorID)
}

// AuthorByID fetches the author a book references. Backs the lazy
// Book.author field. A dangling reference resolves to nil rather than an
// error, matching the field's nullability.
func (s *LibraryService) AuthorByID(ctx context.Context, id primitive.ObjectID) (*model.Author, error) {
	author, err := s.authors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return author, nil
}
