// Package relay serves a schema over HTTP and encodes Relay global object
// identifiers.
package relay

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	graphql "github.com/gqlkit/graphql"
)

// MarshalID encodes kind and the JSON encoding of spec into an opaque ID.
func MarshalID(kind string, spec interface{}) graphql.ID {
	d, err := json.Marshal(spec)
	if err != nil {
		panic(fmt.Errorf("relay.MarshalID: %s", err))
	}
	return graphql.ID(base64.URLEncoding.EncodeToString(append([]byte(kind+":"), d...)))
}

// UnmarshalKind returns the kind encoded in id, or an empty string if id
// was not produced by MarshalID.
func UnmarshalKind(id graphql.ID) string {
	kind, _, err := split(id)
	if err != nil {
		return ""
	}
	return kind
}

// UnmarshalSpec decodes the spec encoded in id into v.
func UnmarshalSpec(id graphql.ID, v interface{}) error {
	_, spec, err := split(id)
	if err != nil {
		return err
	}
	return json.Unmarshal(spec, v)
}

// UnmarshalID decodes id into v and returns its kind.
func UnmarshalID(id graphql.ID, v interface{}) (string, error) {
	kind, spec, err := split(id)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(spec, v); err != nil {
		return "", err
	}
	return kind, nil
}

func split(id graphql.ID) (string, []byte, error) {
	s, err := base64.URLEncoding.DecodeString(string(id))
	if err != nil {
		return "", nil, err
	}
	i := strings.IndexByte(string(s), ':')
	if i == -1 {
		return "", nil, errors.New("invalid graphql.ID")
	}
	return string(s[:i]), s[i+1:], nil
}
