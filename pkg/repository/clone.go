package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// clone returns a deep copy of v via a JSON round trip. Resource types are
// plain JSON documents, so nothing is lost.
func clone[T any](v T) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("clone: marshal: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("clone: unmarshal: %w", err)
	}
	return out, nil
}

// sameState reports whether two resources are observably identical.
// The modification timestamp is excluded and nil collections equal empty ones.
var sameStateOptions = cmp.Options{
	cmpopts.IgnoreFields(Base{}, "LastModifiedAt"),
	cmpopts.EquateEmpty(),
}

func sameState[T any](a, b T) bool {
	return cmp.Equal(a, b, sameStateOptions)
}

// toDocument converts a resource to its generic JSON form.
func toDocument(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
