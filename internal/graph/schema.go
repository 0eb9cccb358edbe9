// Package graph defines the GraphQL schema and its resolvers.
//
// The schema is declared as a string and parsed at startup by
// graphql-go, which validates that every field has a matching resolver
// method — a typo in either place fails server boot, not a production query.
package graph

// Schema is the GraphQL schema definition.
//
// Resolution is method-based: each field maps to an exported method on the
// types in this package (Query/Mutation/Subscription fields on Resolver,
// object fields on the per-type resolvers). Fields like Author.bookCount and
// Book.author are therefore computed per request, only when selected.
const Schema = `
	schema {
		query: Query
		mutation: Mutation
		subscription: Subscription
	}

	type User {
		username: String!
		favouriteGenre: String!
		id: ID!
	}

	type Token {
		value: String!
	}

	type Book {
		title: String!
		author: Author
		published: Int!
		genres: [String!]!
	}

	type Author {
		name: String!
		id: ID!
		born: Int
		bookCount: Int!
	}

	type Query {
		bookCount: Int!
		authorCount: Int!
		allBooks(author: String, genres: String): [Book]!
		allAuthors: [Author]!
		me: User
		filterByGenre(genres: [String!]!): [Book]!
		allBooksByFavouriteGenre: [Book]!
	}

	type Mutation {
		addBook(
			title: String!
			author: String!
			published: Int!
			genres: [String!]
		): Book!

		editAuthor(
			name: String!
			setBornTo: Int!
		): Author

		createUser(
			username: String!
			password: String!
			favouriteGenre: String!
		): User

		login(
			username: String!
			password: String!
		): Token
	}

	type Subscription {
		bookAdded: Book!
	}
`
