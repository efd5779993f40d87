package cache

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
	}{
		{
			name:     "endpoint only",
			key:      Key{Endpoint: "/markets"},
			expected: "listpager:markets",
		},
		{
			name: "endpoint with query params",
			key: Key{
				Endpoint: "/markets",
				Query:    url.Values{"limit": {"100"}, "offset": {"200"}},
			},
			expected: "listpager:markets:limit=100:offset=200",
		},
		{
			name: "query params sorted deterministically",
			key: Key{
				Endpoint: "/events",
				Query:    url.Values{"offset": {"0"}, "active": {"true"}, "limit": {"50"}},
			},
			expected: "listpager:events:active=true:limit=50:offset=0",
		},
		{
			name:     "slashes trimmed",
			key:      Key{Endpoint: "/markets/"},
			expected: "listpager:markets",
		},
		{
			name:     "empty endpoint",
			key:      Key{},
			expected: "listpager",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.key.String())
		})
	}
}

func TestKey_String_DistinctPages(t *testing.T) {
	page1 := Key{Endpoint: "/markets", Query: url.Values{"limit": {"100"}, "offset": {"0"}}}
	page2 := Key{Endpoint: "/markets", Query: url.Values{"limit": {"100"}, "offset": {"100"}}}

	assert.NotEqual(t, page1.String(), page2.String(), "each page must cache under its own key")
}
