package pagination

// PageInfo describes the position and extent of one fetched page.
// It is a value object, freshly built per fetch.
type PageInfo struct {
	// Page is the 1-based ordinal of the page just fetched.
	Page int `json:"page"`

	// PageSize is the limit that was requested for the fetch.
	PageSize int `json:"page_size"`

	// ItemCount is the number of items actually returned (<= PageSize).
	ItemCount int `json:"item_count"`

	// TotalCount is the upstream total, when the fetcher reports one.
	TotalCount *int `json:"total_count,omitempty"`

	// HasNext indicates whether another page should be fetched.
	HasNext bool `json:"has_next"`

	// NextOffset is the offset of the next page. Meaningful only when
	// HasNext is true.
	NextOffset int `json:"next_offset"`
}

// PaginatedResponse pairs one page of converted items with the metadata of
// the fetch that produced it.
type PaginatedResponse[T any] struct {
	Data []T      `json:"data"`
	Meta PageInfo `json:"meta"`
}
