// Command accounts runs a federation subgraph owning the User entity.
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	graphql "github.com/gqlkit/graphql"
	"github.com/gqlkit/graphql/federation"
	"github.com/gqlkit/graphql/log"
	"github.com/gqlkit/graphql/relay"
	"github.com/gqlkit/graphql/schema"
)

const sdl = `
	type Query {
		me: User
	}

	type User @key(fields: "id") {
		id: ID!
		username: String!
	}
`

type user struct {
	ID       graphql.ID
	Username string
}

var users = map[string]*user{
	"1": {ID: "1", Username: "@ada"},
	"2": {ID: "2", Username: "@grace"},
}

type resolver struct{}

func (resolver) Me() *user { return users["1"] }

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	b := schema.NewBuilder()
	if err := b.LoadSDL(sdl); err != nil {
		logger.Fatal("load schema", zap.Error(err))
	}
	federation.Register(b, federation.Options{
		MaxParallelism: 8,
		Entities: map[string]federation.EntityResolver{
			"User": func(ctx context.Context, rep map[string]interface{}) (interface{}, error) {
				id, _ := rep["id"].(string)
				u, ok := users[id]
				if !ok {
					return nil, fmt.Errorf("user %q not found", id)
				}
				return u, nil
			},
		},
	})
	s, err := b.Finish()
	if err != nil {
		logger.Fatal("build schema", zap.Error(err))
	}
	exec, err := graphql.NewSchema(s, resolver{}, graphql.Logger(log.NewZapLogger(logger)))
	if err != nil {
		logger.Fatal("executable schema", zap.Error(err))
	}

	h := &relay.Handler{Schema: exec, Logger: logger}
	r := chi.NewRouter()
	r.Mount("/", h.Routes())

	logger.Info("accounts subgraph listening", zap.String("addr", ":4001"))
	if err := http.ListenAndServe(":4001", r); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
