// internal/app/store/backend/list.go
package backend

import (
	"bytes"
	"encoding/json"
)

// list decodes a listing response. The backend wraps listings in an
// envelope ({"payments": [...]}) but some deployments answer with the bare
// array; both decode to the same items. A missing or null key is an empty
// listing.
type list[T any] struct {
	key   string
	items []T
}

func listOf[T any](key string) *list[T] {
	return &list[T]{key: key}
}

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &l.items)
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	raw, ok := env[l.key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, &l.items)
}
