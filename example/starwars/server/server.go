// Command server serves the Star Wars schema with the playground at /query.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	graphql "github.com/gqlkit/graphql"
	"github.com/gqlkit/graphql/example/starwars"
	"github.com/gqlkit/graphql/extensions"
	"github.com/gqlkit/graphql/log"
	"github.com/gqlkit/graphql/relay"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	schema := graphql.MustParseSchema(starwars.Schema, &starwars.Resolver{},
		graphql.Logger(log.NewZapLogger(logger)),
		graphql.Extensions(extensions.Logger{Logger: logger}, extensions.Analyzer{}),
		graphql.MaxDepth(10),
	)

	h := &relay.Handler{Schema: schema, Logger: logger, Playground: true}
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Mount("/", h.Routes())

	logger.Info("listening", zap.String("addr", ":8080"))
	if err := http.ListenAndServe(":8080", r); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
