// Package playground renders the GraphQL Playground IDE for an endpoint.
package playground

import (
	"bytes"
	"html/template"
	"net/http"
)

const defaultVersion = "1.7.28"

// Option configures the rendered page.
type Option func(*config)

type config struct {
	Title    string
	Endpoint string
	Version  string
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(c *config) {
		c.Title = title
	}
}

// WithVersion selects the graphql-playground-react release loaded from the
// CDN.
func WithVersion(version string) Option {
	return func(c *config) {
		c.Version = version
	}
}

// Render returns the playground page querying endpoint.
func Render(endpoint string, options ...Option) ([]byte, error) {
	c := &config{Title: "GraphQL Playground", Endpoint: endpoint, Version: defaultVersion}
	for _, opt := range options {
		opt(c)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Handler serves the playground page. It panics if the page cannot be
// rendered.
func Handler(endpoint string, options ...Option) http.HandlerFunc {
	out, err := Render(endpoint, options...)
	if err != nil {
		panic(err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(out)
	}
}

var page = template.Must(template.New("graphql-playground").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset=utf-8/>
	<meta name="viewport" content="user-scalable=no, initial-scale=1.0, minimum-scale=1.0, maximum-scale=1.0, minimal-ui">
	<link rel="shortcut icon" href="https://graphcool-playground.netlify.com/favicon.png">
	<link rel="stylesheet" href="//cdn.jsdelivr.net/npm/graphql-playground-react@{{ .Version }}/build/static/css/index.css"/>
	<link rel="shortcut icon" href="//cdn.jsdelivr.net/npm/graphql-playground-react@{{ .Version }}/build/favicon.png"/>
	<script src="//cdn.jsdelivr.net/npm/graphql-playground-react@{{ .Version }}/build/static/js/middleware.js"></script>
	<title>{{.Title}}</title>
</head>
<body>
<style type="text/css">
	html { font-family: "Open Sans", sans-serif; overflow: hidden; }
	body { margin: 0; background: #172a3a; }
</style>
<div id="root"/>
<script type="text/javascript">
	window.addEventListener('load', function (event) {
		const root = document.getElementById('root');
		root.classList.add('playgroundIn');
		GraphQLPlayground.init(root, {
			endpoint: location.protocol + '//' + location.host + '{{.Endpoint}}',
		})
	})
</script>
</body>
</html>
`))
