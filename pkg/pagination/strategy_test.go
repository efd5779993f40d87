package pagination

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawItems(n int) []json.RawMessage {
	items := make([]json.RawMessage, n)
	for i := range items {
		items[i] = json.RawMessage(fmt.Sprintf(`{"id":%d}`, i))
	}
	return items
}

func TestOffsetStrategy_BuildRequestParams(t *testing.T) {
	strategy := OffsetStrategy{MaxPageSize: 1000}

	tests := []struct {
		name           string
		limit          int
		offset         int
		expectedLimit  string
		expectedOffset string
	}{
		{
			name:           "limit within bounds",
			limit:          100,
			offset:         0,
			expectedLimit:  "100",
			expectedOffset: "0",
		},
		{
			name:           "limit clamped to max page size",
			limit:          5000,
			offset:         200,
			expectedLimit:  "1000",
			expectedOffset: "200",
		},
		{
			name:           "limit of one",
			limit:          1,
			offset:         999,
			expectedLimit:  "1",
			expectedOffset: "999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := strategy.BuildRequestParams(tt.limit, tt.offset, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedLimit, params.Get("limit"))
			assert.Equal(t, tt.expectedOffset, params.Get("offset"))
		})
	}
}

func TestOffsetStrategy_BuildRequestParams_MergesExtra(t *testing.T) {
	strategy := OffsetStrategy{MaxPageSize: 1000}

	extra := url.Values{}
	extra.Set("active", "true")
	extra.Set("limit", "99999")
	extra.Set("offset", "-5")

	params, err := strategy.BuildRequestParams(50, 10, extra)
	require.NoError(t, err)

	assert.Equal(t, "true", params.Get("active"))
	assert.Equal(t, "50", params.Get("limit"), "extra must not overwrite limit")
	assert.Equal(t, "10", params.Get("offset"), "extra must not overwrite offset")

	// The caller's map stays untouched.
	assert.Equal(t, "99999", extra.Get("limit"))
}

func TestOffsetStrategy_BuildRequestParams_Invalid(t *testing.T) {
	strategy := OffsetStrategy{MaxPageSize: 1000}

	tests := []struct {
		name   string
		limit  int
		offset int
	}{
		{name: "zero limit", limit: 0, offset: 0},
		{name: "negative limit", limit: -5, offset: 0},
		{name: "negative offset", limit: 100, offset: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := strategy.BuildRequestParams(tt.limit, tt.offset, nil)
			require.Error(t, err)

			var confErr *ConfigurationError
			assert.True(t, errors.As(err, &confErr), "expected ConfigurationError, got %T", err)
		})
	}
}

func TestOffsetStrategy_ExtractPageInfo(t *testing.T) {
	strategy := OffsetStrategy{MaxPageSize: 1000}

	total250 := 250
	total200 := 200

	tests := []struct {
		name           string
		itemCount      int
		requestedLimit int
		currentOffset  int
		page           int
		totalCount     *int
		wantHasNext    bool
		wantNextOffset int
	}{
		{
			name:           "full page means more may follow",
			itemCount:      100,
			requestedLimit: 100,
			currentOffset:  0,
			page:           1,
			wantHasNext:    true,
			wantNextOffset: 100,
		},
		{
			name:           "short page ends the listing",
			itemCount:      50,
			requestedLimit: 100,
			currentOffset:  200,
			page:           3,
			wantHasNext:    false,
			wantNextOffset: 250,
		},
		{
			name:           "empty page ends the listing",
			itemCount:      0,
			requestedLimit: 100,
			currentOffset:  200,
			page:           3,
			wantHasNext:    false,
			wantNextOffset: 200,
		},
		{
			name:           "full page below known total continues",
			itemCount:      100,
			requestedLimit: 100,
			currentOffset:  100,
			page:           2,
			totalCount:     &total250,
			wantHasNext:    true,
			wantNextOffset: 200,
		},
		{
			name:           "full page reaching known total ends the listing",
			itemCount:      100,
			requestedLimit: 100,
			currentOffset:  100,
			page:           2,
			totalCount:     &total200,
			wantHasNext:    false,
			wantNextOffset: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := strategy.ExtractPageInfo(rawItems(tt.itemCount), tt.requestedLimit, tt.currentOffset, tt.page, tt.totalCount)

			assert.Equal(t, tt.page, info.Page)
			assert.Equal(t, tt.requestedLimit, info.PageSize)
			assert.Equal(t, tt.itemCount, info.ItemCount)
			assert.Equal(t, tt.wantHasNext, info.HasNext)
			assert.Equal(t, tt.wantNextOffset, info.NextOffset)
			assert.Equal(t, tt.totalCount, info.TotalCount)
		})
	}
}
