package pagination

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// PageFetcher is the single abstract operation the Paginator consumes:
// fetch one page given the request parameters built by a Strategy, returning
// the raw records and the upstream total count when the response carries one.
// A fetcher must fail rather than return a malformed or partial page
// silently. Retry policy is the fetcher's concern; the Paginator treats it
// as an opaque decorator.
type PageFetcher interface {
	FetchPage(ctx context.Context, params url.Values) (items []json.RawMessage, totalCount *int, err error)
}

// PageFetcherFunc adapts an ordinary function to the PageFetcher interface.
type PageFetcherFunc func(ctx context.Context, params url.Values) ([]json.RawMessage, *int, error)

// FetchPage calls f.
func (f PageFetcherFunc) FetchPage(ctx context.Context, params url.Values) ([]json.RawMessage, *int, error) {
	return f(ctx, params)
}

// Strategy encapsulates how a requested limit/offset becomes fetch
// parameters and how page metadata is derived from a page's result. The
// Paginator never inspects pagination-style-specific fields directly, so
// alternative strategies (cursor-based, keyset) plug in without driver
// changes.
type Strategy interface {
	// BuildRequestParams returns the query parameters for one page fetch.
	// Caller-provided extra parameters are merged in without overwriting
	// the pagination fields.
	BuildRequestParams(limit, offset int, extra url.Values) (url.Values, error)

	// ExtractPageInfo derives page metadata from a fetched page.
	ExtractPageInfo(items []json.RawMessage, requestedLimit, currentOffset, page int, totalCount *int) PageInfo
}

// OffsetStrategy implements limit/offset pagination: each request carries a
// skip count and a page size, and a full page means more may follow.
type OffsetStrategy struct {
	// MaxPageSize is the upper clamp applied to any requested limit.
	MaxPageSize int
}

// BuildRequestParams clamps limit to MaxPageSize and merges extra
// parameters. A non-positive limit or negative offset is a
// ConfigurationError, never coerced.
func (s OffsetStrategy) BuildRequestParams(limit, offset int, extra url.Values) (url.Values, error) {
	if s.MaxPageSize > 0 && limit > s.MaxPageSize {
		limit = s.MaxPageSize
	}
	if limit <= 0 {
		return nil, newConfigError("limit", "must be positive, got %d", limit)
	}
	if offset < 0 {
		return nil, newConfigError("offset", "must not be negative, got %d", offset)
	}

	params := make(url.Values, len(extra)+2)
	for key, vals := range extra {
		if key == "limit" || key == "offset" {
			continue
		}
		params[key] = append([]string(nil), vals...)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	return params, nil
}

// ExtractPageInfo reports HasNext when the page came back full. A short
// page ends the listing. When the fetcher reported a total count, a full
// page that exactly reaches it also ends the listing, which avoids one
// trailing empty fetch.
func (s OffsetStrategy) ExtractPageInfo(items []json.RawMessage, requestedLimit, currentOffset, page int, totalCount *int) PageInfo {
	count := len(items)
	hasNext := count == requestedLimit
	if hasNext && totalCount != nil && currentOffset+count >= *totalCount {
		hasNext = false
	}
	return PageInfo{
		Page:       page,
		PageSize:   requestedLimit,
		ItemCount:  count,
		TotalCount: totalCount,
		HasNext:    hasNext,
		NextOffset: currentOffset + count,
	}
}
