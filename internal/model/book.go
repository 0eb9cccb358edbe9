package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Book represents a book in the library.
//
// AuthorID is a foreign-key-style reference to an Author document, not an
// embedded copy. The GraphQL layer resolves it lazily when a client actually
// asks for the author field. A zero ObjectID means the book has no author
// reference (the API then returns null for the field).
type Book struct {
	ID        primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	Title     string             `json:"title"     bson:"title"`
	Published int                `json:"published" bson:"published"`
	Genres    []string           `json:"genres"    bson:"genres"`
	AuthorID  primitive.ObjectID `json:"authorId"  bson:"author,omitempty"`
}
