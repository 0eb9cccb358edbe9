// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain data carriers with
// struct tags telling the bson and json encoders how to map fields.
package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Author represents a book author.
//
// Authors are created in two ways:
//   - implicitly, the first time a book names an author we haven't seen
//     (the repository does this with a single atomic upsert, so two
//     concurrent addBook calls for the same name still yield one record)
//   - never directly through the API
//
// WHY Born *int (not int)?
// The birth year is genuinely optional — many authors are created from a book
// title alone and only get a year later via editAuthor. A nil pointer is
// "unknown", which maps cleanly to GraphQL's nullable Int and to an absent
// bson field. Using 0 as "unknown" would collide with a real (if unlikely)
// year.
type Author struct {
	ID   primitive.ObjectID `json:"id"   bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"` // unique index in Mongo
	Born *int               `json:"born" bson:"born,omitempty"`
}
