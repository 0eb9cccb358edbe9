package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a registered account.
//
// Password holds the bcrypt hash, never the plaintext — the hash string is
// self-contained (salt and cost embedded), so no separate salt field is
// needed. The json:"-" tag keeps it out of any serialized output; the GraphQL
// schema doesn't expose a password field either, so this is belt and braces.
//
// Users are immutable after signup in this system's scope: there is no
// edit-profile or change-password operation.
type User struct {
	ID             primitive.ObjectID `json:"id"             bson:"_id,omitempty"`
	Username       string             `json:"username"       bson:"username"` // unique index, min length 4
	Password       string             `json:"-"              bson:"password"` // bcrypt hash
	FavouriteGenre string             `json:"favouriteGenre" bson:"favouriteGenre"`
}
