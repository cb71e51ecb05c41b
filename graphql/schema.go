package graphql

// Read-only catalog view with overlay state merged in. Writes go through
// the in-chat admin editor or the /api/stock endpoints, never GraphQL.
const Schema = `
	schema {
		query: Query
	}

	type Query {
		categories: [Category!]!
		leaf(addressKey: String!): Leaf
	}

	type Category {
		key: String!
		title: String!
		kind: String!
		brands: [Brand!]!
		leaves: [Leaf!]!
	}

	type Brand {
		key: String!
		title: String!
		kind: String!
		priceRange: String
	}

	type Leaf {
		addressKey: String!
		name: String!
		price: String!
		available: Boolean!
		eta: String
	}
`
