package graph

import (
	"context"

	"github.com/sakif/library-backend/internal/auth"
	"github.com/sakif/library-backend/internal/model"
	"github.com/sakif/library-backend/internal/pubsub"
	"github.com/sakif/library-backend/internal/service"
)

// Resolver is the root resolver. It holds the injected services every
// operation needs — the GraphQL equivalent of the teacher pattern where
// handlers receive their service in the constructor.
//
// Authorization is NOT done here: resolvers pass the context through and the
// service layer reads the current user from it. That keeps the GraphQL layer
// a thin argument-shaping skin over the business logic.
type Resolver struct {
	library *service.LibraryService
	auth    *service.AuthService
	events  *pubsub.Broadcaster
}

// NewResolver creates the root resolver with its dependencies.
func NewResolver(library *service.LibraryService, authSvc *service.AuthService, events *pubsub.Broadcaster) *Resolver {
	return &Resolver{
		library: library,
		auth:    authSvc,
		events:  events,
	}
}

// ---- Query ----

// BookCount resolves Query.bookCount.
func (r *Resolver) BookCount(ctx context.Context) (int32, error) {
	n, err := r.library.BookCount(ctx)
	return int32(n), err
}

// AuthorCount resolves Query.authorCount.
func (r *Resolver) AuthorCount(ctx context.Context) (int32, error) {
	n, err := r.library.AuthorCount(ctx)
	return int32(n), err
}

// AllBooks resolves Query.allBooks with optional conjunctive filters.
func (r *Resolver) AllBooks(ctx context.Context, args struct {
	Author *string
	Genres *string
}) ([]*BookResolver, error) {
	books, err := r.library.AllBooks(ctx, args.Author, args.Genres)
	if err != nil {
		return nil, err
	}
	return r.bookResolvers(books), nil
}

// AllAuthors resolves Query.allAuthors.
func (r *Resolver) AllAuthors(ctx context.Context) ([]*AuthorResolver, error) {
	authors, err := r.library.AllAuthors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*AuthorResolver, 0, len(authors))
	for _, a := range authors {
		out = append(out, &AuthorResolver{library: r.library, author: a})
	}
	return out, nil
}

// Me resolves Query.me: the current user, or null for anonymous requests.
// Never errors — "not logged in" is a valid answer here.
func (r *Resolver) Me(ctx context.Context) *UserResolver {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil
	}
	return &UserResolver{user: *user}
}

// FilterByGenre resolves Query.filterByGenre.
func (r *Resolver) FilterByGenre(ctx context.Context, args struct {
	Genres []string
}) ([]*BookResolver, error) {
	books, err := r.library.FilterByGenre(ctx, args.Genres)
	if err != nil {
		return nil, err
	}
	return r.bookResolvers(books), nil
}

// AllBooksByFavouriteGenre resolves the personalized book list. The service
// rejects anonymous callers.
func (r *Resolver) AllBooksByFavouriteGenre(ctx context.Context) ([]*BookResolver, error) {
	books, err := r.library.BooksByFavouriteGenre(ctx)
	if err != nil {
		return nil, err
	}
	return r.bookResolvers(books), nil
}

// ---- Mutation ----

// AddBook resolves Mutation.addBook.
func (r *Resolver) AddBook(ctx context.Context, args struct {
	Title     string
	Author    string
	Published int32
	Genres    *[]string
}) (*BookResolver, error) {
	var genres []string
	if args.Genres != nil {
		genres = *args.Genres
	}

	book, err := r.library.AddBook(ctx, args.Title, args.Author, int(args.Published), genres)
	if err != nil {
		return nil, err
	}
	return &BookResolver{library: r.library, book: *book}, nil
}

// EditAuthor resolves Mutation.editAuthor. Returns null (not an error) when
// the author doesn't exist.
func (r *Resolver) EditAuthor(ctx context.Context, args struct {
	Name      string
	SetBornTo int32
}) (*AuthorResolver, error) {
	author, err := r.library.EditAuthor(ctx, args.Name, int(args.SetBornTo))
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, nil
	}
	return &AuthorResolver{library: r.library, author: *author}, nil
}

// CreateUser resolves Mutation.createUser.
func (r *Resolver) CreateUser(ctx context.Context, args struct {
	Username       string
	Password       string
	FavouriteGenre string
}) (*UserResolver, error) {
	user, err := r.auth.CreateUser(ctx, args.Username, args.Password, args.FavouriteGenre)
	if err != nil {
		return nil, err
	}
	return &UserResolver{user: *user}, nil
}

// Login resolves Mutation.login.
func (r *Resolver) Login(ctx context.Context, args struct {
	Username string
	Password string
}) (*TokenResolver, error) {
	token, _, err := r.auth.Login(ctx, args.Username, args.Password)
	if err != nil {
		return nil, err
	}
	return &TokenResolver{value: token}, nil
}

// ---- Subscription ----

// BookAdded resolves Subscription.bookAdded.
//
// It registers a subscriber on the broadcaster for the lifetime of ctx (the
// websocket connection) and bridges the event channel into resolver values.
// The bridge goroutine exits when the broadcaster closes the event channel
// on deregistration, which in turn ends the GraphQL subscription.
func (r *Resolver) BookAdded(ctx context.Context) (<-chan *BookResolver, error) {
	events := r.events.Subscribe(ctx, pubsub.TopicBookAdded)

	out := make(chan *BookResolver)
	go func() {
		defer close(out)
		for book := range events {
			select {
			case out <- &BookResolver{library: r.library, book: book}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (r *Resolver) bookResolvers(books []model.Book) []*BookResolver {
	out := make([]*BookResolver, 0, len(books))
	for _, b := range books {
		out = append(out, &BookResolver{library: r.library, book: b})
	}
	return out
}
