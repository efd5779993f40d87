package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mhelbich/listpager/pkg/pagination"
)

// Envelope describes where a list response keeps its items and total count.
// The zero value means the response body is a bare JSON array. Upstream
// APIs wrap their listings differently: some return `[...]`, others
// `{"data": [...], "count": 123}`.
type Envelope struct {
	// ItemsKey is the object field holding the item array. Empty means
	// the whole body is the array.
	ItemsKey string

	// CountKey is the object field holding the total count, if the API
	// reports one. Only read when ItemsKey is set.
	CountKey string
}

// ListFetcher binds one list endpoint into a pagination.PageFetcher. The
// returned fetcher performs a retried, rate-limited, optionally cached GET
// per page; pagination drives it without knowing any of that.
func (c *Client) ListFetcher(endpoint string, env Envelope) pagination.PageFetcher {
	return pagination.PageFetcherFunc(func(ctx context.Context, params url.Values) ([]json.RawMessage, *int, error) {
		body, err := c.Get(ctx, endpoint, params)
		if err != nil {
			return nil, nil, err
		}
		return decodeListBody(body, env)
	})
}

// decodeListBody extracts the raw records and optional total count from a
// list response body according to the envelope.
func decodeListBody(body []byte, env Envelope) ([]json.RawMessage, *int, error) {
	if env.ItemsKey == "" {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, nil, fmt.Errorf("decode list response: %w", err)
		}
		return items, nil, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("decode list envelope: %w", err)
	}

	rawItems, ok := wrapper[env.ItemsKey]
	if !ok {
		return nil, nil, fmt.Errorf("list envelope missing %q field", env.ItemsKey)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return nil, nil, fmt.Errorf("decode %q field: %w", env.ItemsKey, err)
	}

	var total *int
	if env.CountKey != "" {
		if rawCount, ok := wrapper[env.CountKey]; ok {
			var n int
			if err := json.Unmarshal(rawCount, &n); err != nil {
				return nil, nil, fmt.Errorf("decode %q field: %w", env.CountKey, err)
			}
			total = &n
		}
	}
	return items, total, nil
}
