package graphql

import (
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"shopbot.GO/catalog"
	"shopbot.GO/stock"
)

// Handler builds the /graphql HTTP handler.
func Handler(tree *catalog.Tree, overlay *stock.Overlay) (http.Handler, error) {
	schema, err := gql.ParseSchema(Schema, &RootResolver{Tree: tree, Overlay: overlay})
	if err != nil {
		return nil, err
	}
	return &relay.Handler{Schema: schema}, nil
}
