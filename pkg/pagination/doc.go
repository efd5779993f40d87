// Package pagination drives offset-paginated list endpoints.
//
// Upstream APIs differ in how a page is requested and how its metadata is
// read. A Strategy normalizes that per API, and the Paginator turns a
// caller-supplied single-page fetch into three retrieval modes:
//
//   - FetchAll: eagerly drives pages until termination and returns the
//     concatenated, optionally-capped result (all-or-nothing on failure)
//   - FetchPage: fetches exactly one page plus its metadata
//   - IterPages: a lazy item sequence that buffers at most one page and
//     starts a fresh cursor on every traversal
//
// Example usage:
//
//	paginator, err := pagination.NewOffsetPaginator(fetcher, convertMarket, pagination.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	markets, err := paginator.FetchAll(ctx, pagination.FetchOptions{})
//
// Pages are always fetched strictly sequentially: under the offset strategy
// the next offset is only knowable after observing how many items the
// current page returned. The Paginator keeps no retrieval state on the
// instance, so one Paginator may serve concurrent retrievals.
package pagination
