// Command gqlengine serves, validates and executes GraphQL documents.
package main

import "github.com/gqlkit/graphql/internal/cli"

func main() {
	cli.Execute()
}
