package relay

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	graphql "github.com/gqlkit/graphql"
	"github.com/gqlkit/graphql/playground"
)

const (
	ContentTypeJSON           = "application/json"
	ContentTypeGraphQL        = "application/graphql"
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"

	// RequestIDHeader carries the identifier assigned to every request.
	RequestIDHeader = "X-Request-Id"
)

// Handler executes GraphQL requests received over HTTP. GraphQL level
// failures are reported in the response body with status 200; only
// malformed HTTP requests get a 4xx status.
type Handler struct {
	Schema *graphql.Schema

	// Logger defaults to the global zap logger.
	Logger *zap.Logger

	// Pretty indents the JSON responses.
	Pretty bool

	// Playground serves the GraphQL playground to browsers asking for HTML.
	Playground bool
}

// NewRequest reads a GraphQL request from query parameters, a JSON body, a
// form body or an application/graphql body.
func NewRequest(r *http.Request) (*graphql.Request, error) {
	if req, ok, err := fromValues(r.URL.Query()); ok || err != nil {
		return req, err
	}

	if r.Method != http.MethodPost || r.Body == nil {
		return nil, errMissingQuery
	}

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch contentType {
	case ContentTypeGraphQL:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		return &graphql.Request{Query: string(body)}, nil

	case ContentTypeFormURLEncoded:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		if req, ok, err := fromValues(r.PostForm); ok || err != nil {
			return req, err
		}
		return nil, errMissingQuery

	default:
		var req graphql.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, &requestError{"invalid JSON body: " + err.Error()}
		}
		return &req, nil
	}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

var errMissingQuery = &requestError{"missing query"}

func fromValues(values url.Values) (*graphql.Request, bool, error) {
	query := values.Get("query")
	if query == "" && values.Get("extensions") == "" {
		return nil, false, nil
	}
	req := &graphql.Request{
		Query:         query,
		OperationName: values.Get("operationName"),
	}
	if s := values.Get("variables"); s != "" {
		if err := json.Unmarshal([]byte(s), &req.Variables); err != nil {
			return nil, true, &requestError{"invalid variables: " + err.Error()}
		}
	}
	if s := values.Get("extensions"); s != "" {
		if err := json.Unmarshal([]byte(s), &req.Extensions); err != nil {
			return nil, true, &requestError{"invalid extensions: " + err.Error()}
		}
	}
	return req, true, nil
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = ksuid.New().String()
	}
	w.Header().Set(RequestIDHeader, id)

	if h.Playground && r.Method == http.MethodGet && wantsHTML(r) {
		playground.Handler(r.URL.Path).ServeHTTP(w, r)
		return
	}

	req, err := NewRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := h.Schema.Execute(r.Context(), req)

	var body []byte
	if h.Pretty {
		body, err = json.MarshalIndent(response, "", "\t")
	} else {
		body, err = json.Marshal(response)
	}
	if err != nil {
		h.logger().Error("graphql: encode response", zap.String("request_id", id), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	if cc := response.CacheControl.String(); cc != "" && len(response.Errors) == 0 {
		w.Header().Set("Cache-Control", cc)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger().Debug("graphql: write response", zap.String("request_id", id), zap.Error(err))
	}
}

func wantsHTML(r *http.Request) bool {
	if _, raw := r.URL.Query()["raw"]; raw || r.URL.Query().Get("query") != "" {
		return false
	}
	accept := r.Header.Get("Accept")
	return !strings.Contains(accept, ContentTypeJSON) && strings.Contains(accept, "text/html")
}

// Routes mounts the handler on /query and a liveness probe on /healthz.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Method(http.MethodGet, "/query", h)
	r.Method(http.MethodPost, "/query", h)
	return r
}
