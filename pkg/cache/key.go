package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached list page.
type Key struct {
	// Endpoint is the list endpoint path (e.g. "/markets").
	Endpoint string

	// Query holds the request's query parameters, including the
	// pagination fields.
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: listpager:endpoint:param1=val1:param2=val2
//
// Example:
//
//	listpager:markets:active=true:limit=100:offset=200
func (k Key) String() string {
	parts := []string{"listpager"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism
	if len(k.Query) > 0 {
		keys := make([]string, 0, len(k.Query))
		for key := range k.Query {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Query.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
