package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for paginated retrievals.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listpager_pages_fetched_total",
		Help: "Total pages fetched by retrieval mode",
	}, []string{"mode"})

	itemsReturnedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listpager_items_returned_total",
		Help: "Total items surfaced to callers by retrieval mode",
	}, []string{"mode"})

	capTruncationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listpager_cap_truncations_total",
		Help: "Retrievals truncated by the max total results cap",
	})
)

// Retrieval modes used as metric labels.
const (
	modeFetchAll  = "fetch_all"
	modeFetchPage = "fetch_page"
	modeIterPages = "iter_pages"
)

// largeRequestThreshold triggers the advisory large-request warning.
const largeRequestThreshold = 1000

// Converter turns one raw record into a typed item.
type Converter[T any] func(json.RawMessage) (T, error)

// Paginator drives a PageFetcher through successive pages. It holds only
// the strategy, the fetcher reference, the converter, and configuration;
// every retrieval allocates its own cursor, so a single Paginator is safe
// to reuse for concurrent retrievals.
type Paginator[T any] struct {
	strategy Strategy
	fetcher  PageFetcher
	convert  Converter[T]
	config   Config
	logger   zerolog.Logger
}

// FetchOptions parameterizes one retrieval call.
type FetchOptions struct {
	// Limit bounds the total items returned across all pages. Nil means
	// no explicit bound. A non-positive value is a ConfigurationError.
	Limit *int

	// Offset is the starting offset. Must not be negative.
	Offset int

	// PageSize is the per-fetch page size. Zero selects the configured
	// DefaultPageSize; the value is clamped to MaxPageSize.
	PageSize int

	// Extra query parameters merged into every page request. The
	// pagination fields always win over entries here.
	Extra url.Values

	// AutoPaginate overrides the configured policy when set:
	// call-site override > instance default.
	AutoPaginate *bool
}

// Limit returns a pointer to n, for use as FetchOptions.Limit.
func Limit(n int) *int { return &n }

// New creates a Paginator from a strategy, a single-page fetcher, and a
// per-record converter.
func New[T any](strategy Strategy, fetcher PageFetcher, convert Converter[T], cfg Config) (*Paginator[T], error) {
	if strategy == nil {
		return nil, newConfigError("strategy", "must not be nil")
	}
	if fetcher == nil {
		return nil, newConfigError("fetcher", "must not be nil")
	}
	if convert == nil {
		return nil, newConfigError("converter", "must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Paginator[T]{
		strategy: strategy,
		fetcher:  fetcher,
		convert:  convert,
		config:   cfg,
		logger:   log.With().Str("component", "paginator").Logger(),
	}, nil
}

// NewOffsetPaginator binds a fetcher and converter into a ready-to-use
// Paginator with an OffsetStrategy clamped to the configured MaxPageSize.
func NewOffsetPaginator[T any](fetcher PageFetcher, convert Converter[T], cfg Config) (*Paginator[T], error) {
	return New(OffsetStrategy{MaxPageSize: cfg.MaxPageSize}, fetcher, convert, cfg)
}

// cursor is the entire mutable state of one retrieval. It lives for one
// FetchAll/FetchPage call or one IterPages traversal and is never stored on
// the Paginator, so concurrent retrievals cannot interfere.
type cursor struct {
	offset int
	page   int
}

// FetchAll eagerly drives pages until termination and returns the
// concatenation, in page-then-within-page order. Termination: the strategy
// reports no next page, the explicit Limit is satisfied, the configured
// MaxTotalResults cap is reached (the just-fetched page's tail is
// truncated), or auto-pagination is off, in which case exactly one page is
// fetched. On any page failure the whole call fails and no partial result
// is returned.
func (p *Paginator[T]) FetchAll(ctx context.Context, opts FetchOptions) ([]T, error) {
	pageSize, err := p.resolvePageSize(opts)
	if err != nil {
		return nil, err
	}
	p.warnIfLarge(opts)

	cur := &cursor{offset: opts.Offset}
	var collected []T
	for {
		requested := pageSize
		if opts.Limit != nil {
			if remaining := *opts.Limit - len(collected); remaining < requested {
				requested = remaining
			}
		}

		items, info, err := p.fetchOne(ctx, cur, requested, opts.Extra, modeFetchAll)
		if err != nil {
			return nil, err
		}
		collected = append(collected, items...)

		if maxResults := p.config.MaxTotalResults; maxResults > 0 && len(collected) >= maxResults {
			if len(collected) > maxResults {
				collected = collected[:maxResults]
			}
			capTruncationsTotal.Inc()
			p.logger.Warn().
				Int("cap", maxResults).
				Int("pages", cur.page).
				Msg("Retrieval truncated at result cap")
			break
		}
		if opts.Limit != nil && len(collected) >= *opts.Limit {
			collected = collected[:*opts.Limit]
			break
		}
		if !info.HasNext || !p.resolveAutoPaginate(opts) {
			break
		}
	}

	itemsReturnedTotal.WithLabelValues(modeFetchAll).Add(float64(len(collected)))
	p.logger.Debug().
		Int("items", len(collected)).
		Int("pages", cur.page).
		Msg("Retrieval complete")
	return collected, nil
}

// FetchPage fetches exactly one page regardless of the auto-pagination
// policy and returns both data and metadata. It is a pure query: nothing
// advances beyond this single page, so callers can manage offsets
// themselves for next-page style UX.
func (p *Paginator[T]) FetchPage(ctx context.Context, opts FetchOptions) (*PaginatedResponse[T], error) {
	pageSize, err := p.resolvePageSize(opts)
	if err != nil {
		return nil, err
	}
	if opts.Limit != nil && *opts.Limit < pageSize {
		pageSize = *opts.Limit
	}

	cur := &cursor{offset: opts.Offset}
	items, info, err := p.fetchOne(ctx, cur, pageSize, opts.Extra, modeFetchPage)
	if err != nil {
		return nil, err
	}

	itemsReturnedTotal.WithLabelValues(modeFetchPage).Add(float64(len(items)))
	return &PaginatedResponse[T]{Data: items, Meta: info}, nil
}

// IterPages returns a lazy, pull-based item sequence. At most one page is
// buffered; each time the buffer drains and the consumer pulls again, one
// page fetch runs synchronously. Every traversal of the returned sequence
// starts a fresh cursor at Offset, so repeated or concurrent traversals do
// not interfere. If a page fetch fails, items already yielded remain valid
// and the error surfaces at the pull where the next item would have been.
// Abandoning the sequence early performs no further fetches and needs no
// cleanup. Invalid options are reported here, before any fetch.
func (p *Paginator[T]) IterPages(ctx context.Context, opts FetchOptions) (iter.Seq2[T, error], error) {
	pageSize, err := p.resolvePageSize(opts)
	if err != nil {
		return nil, err
	}
	p.warnIfLarge(opts)
	autoPaginate := p.resolveAutoPaginate(opts)

	return func(yield func(T, error) bool) {
		cur := &cursor{offset: opts.Offset}
		yielded := 0
		for {
			requested := pageSize
			if opts.Limit != nil {
				if remaining := *opts.Limit - yielded; remaining < requested {
					requested = remaining
				}
			}

			items, info, err := p.fetchOne(ctx, cur, requested, opts.Extra, modeIterPages)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}

			truncated := false
			if maxResults := p.config.MaxTotalResults; maxResults > 0 && yielded+len(items) > maxResults {
				items = items[:maxResults-yielded]
				truncated = true
			}
			if opts.Limit != nil && yielded+len(items) > *opts.Limit {
				items = items[:*opts.Limit-yielded]
			}

			for _, item := range items {
				if !yield(item, nil) {
					return
				}
				yielded++
				itemsReturnedTotal.WithLabelValues(modeIterPages).Inc()
			}

			if truncated {
				capTruncationsTotal.Inc()
				return
			}
			if maxResults := p.config.MaxTotalResults; maxResults > 0 && yielded >= maxResults {
				return
			}
			if opts.Limit != nil && yielded >= *opts.Limit {
				return
			}
			if !info.HasNext || !autoPaginate {
				return
			}
		}
	}, nil
}

// fetchOne performs a single page fetch and advances the cursor. Transport
// errors from the fetcher propagate unmodified.
func (p *Paginator[T]) fetchOne(ctx context.Context, cur *cursor, requested int, extra url.Values, mode string) ([]T, PageInfo, error) {
	params, err := p.strategy.BuildRequestParams(requested, cur.offset, extra)
	if err != nil {
		return nil, PageInfo{}, err
	}

	raw, total, err := p.fetcher.FetchPage(ctx, params)
	if err != nil {
		p.logger.Warn().
			Err(err).
			Int("offset", cur.offset).
			Int("page", cur.page+1).
			Str("mode", mode).
			Msg("Page fetch failed")
		return nil, PageInfo{}, err
	}

	cur.page++
	info := p.strategy.ExtractPageInfo(raw, requested, cur.offset, cur.page, total)

	items := make([]T, 0, len(raw))
	for i, rec := range raw {
		item, err := p.convert(rec)
		if err != nil {
			return nil, PageInfo{}, fmt.Errorf("convert record %d at offset %d: %w", i, cur.offset, err)
		}
		items = append(items, item)
	}

	cur.offset = info.NextOffset
	pagesFetchedTotal.WithLabelValues(mode).Inc()

	p.logger.Debug().
		Int("page", info.Page).
		Int("item_count", info.ItemCount).
		Bool("has_next", info.HasNext).
		Int("next_offset", info.NextOffset).
		Msg("Fetched page")
	return items, info, nil
}

// resolvePageSize validates the call options and returns the effective
// per-fetch page size.
func (p *Paginator[T]) resolvePageSize(opts FetchOptions) (int, error) {
	if opts.Limit != nil && *opts.Limit <= 0 {
		return 0, newConfigError("limit", "must be positive, got %d", *opts.Limit)
	}
	if opts.Offset < 0 {
		return 0, newConfigError("offset", "must not be negative, got %d", opts.Offset)
	}
	if opts.PageSize < 0 {
		return 0, newConfigError("page_size", "must not be negative, got %d", opts.PageSize)
	}

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = p.config.DefaultPageSize
	}
	if pageSize > p.config.MaxPageSize {
		pageSize = p.config.MaxPageSize
	}
	return pageSize, nil
}

// resolveAutoPaginate applies call-site override > instance default.
func (p *Paginator[T]) resolveAutoPaginate(opts FetchOptions) bool {
	if opts.AutoPaginate != nil {
		return *opts.AutoPaginate
	}
	return p.config.AutoPaginate
}

func (p *Paginator[T]) warnIfLarge(opts FetchOptions) {
	if !p.config.WarnOnLargeRequests {
		return
	}
	switch {
	case opts.Limit == nil && p.resolveAutoPaginate(opts) && p.config.MaxTotalResults == 0:
		p.logger.Warn().Msg("Unbounded auto-paginated retrieval requested, consider setting a limit")
	case opts.Limit != nil && *opts.Limit > largeRequestThreshold:
		p.logger.Warn().
			Int("limit", *opts.Limit).
			Msg("Large retrieval requested")
	}
}
