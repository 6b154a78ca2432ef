package extensions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gqlkit/graphql/errors"
)

// PersistedQueries implements automatic persisted queries: a request may
// carry only the sha256 hash of a query registered by an earlier request.
type PersistedQueries struct {
	store *lru.Cache[string, string]
}

// NewPersistedQueries keeps up to size queries.
func NewPersistedQueries(size int) (*PersistedQueries, error) {
	store, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &PersistedQueries{store: store}, nil
}

func (p *PersistedQueries) Create() Extension {
	return &persistedQuery{store: p.store}
}

type persistedQuery struct {
	Base
	store *lru.Cache[string, string]
}

func (e *persistedQuery) PrepareRequest(ctx context.Context, req *Request) error {
	ext, ok := req.Extensions["persistedQuery"].(map[string]interface{})
	if !ok {
		return nil
	}
	if !isVersion1(ext["version"]) {
		return errors.Errorf("%s", "PersistedQueryNotSupported")
	}
	hash, _ := ext["sha256Hash"].(string)
	if hash == "" {
		return errors.Errorf("%s", "persisted query extension requires a sha256Hash")
	}

	if req.Query == "" {
		query, ok := e.store.Get(hash)
		if !ok {
			err := errors.Errorf("%s", "PersistedQueryNotFound")
			err.Extensions = map[string]interface{}{"code": "PERSISTED_QUERY_NOT_FOUND"}
			return err
		}
		req.Query = query
		return nil
	}

	sum := sha256.Sum256([]byte(req.Query))
	if hex.EncodeToString(sum[:]) != hash {
		return errors.Errorf("%s", "provided sha does not match query")
	}
	e.store.Add(hash, req.Query)
	return nil
}

func isVersion1(v interface{}) bool {
	switch v := v.(type) {
	case float64:
		return v == 1
	case int:
		return v == 1
	case int64:
		return v == 1
	}
	return false
}
