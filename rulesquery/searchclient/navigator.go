package searchclient

import (
	"context"
	"slices"
	"sync"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

// Searcher fetches search results. *Client satisfies it.
type Searcher interface {
	Search(
		ctx context.Context,
		raw rulesquery.RawQuery,
		paging rulesquery.Paging,
		facets ...string,
	) (rulesquery.SearchResult, error)
}

// Navigator follows a sequence of queries, e.g. URL changes while a user browses rules,
// and only fetches when the filter actually changed.
//
// Navigator is safe for concurrent use, but navigations are serialized.
type Navigator struct {
	searcher Searcher
	paging   rulesquery.Paging
	facets   []string

	mu        sync.Mutex
	last      rulesquery.RawQuery
	result    rulesquery.SearchResult
	hasResult bool
}

// NewNavigator creates a Navigator fetching the given page and facets on every change.
func NewNavigator(searcher Searcher, paging rulesquery.Paging, facets ...string) *Navigator {
	return &Navigator{
		searcher: searcher,
		paging:   paging,
		facets:   slices.Clone(facets),
	}
}

// Navigate returns the result for raw and whether it was fetched.
//
// If raw denotes the same filter as the previous successful navigation (rulesquery.AreQueriesEqual),
// the previous result is returned without a request. View-only keys such as "open" or "selected"
// never cause a fetch.
func (n *Navigator) Navigate(ctx context.Context, raw rulesquery.RawQuery) (rulesquery.SearchResult, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.hasResult && rulesquery.AreQueriesEqual(n.last, raw) {
		return n.result, false, nil
	}

	result, err := n.searcher.Search(ctx, raw, n.paging, n.facets...)
	if err != nil {
		return rulesquery.SearchResult{}, false, err
	}

	n.last = rulesquery.RawQueryFromValues(raw.Values())
	n.result = result
	n.hasResult = true

	return result, true, nil
}

// Reset forgets the previous navigation, so the next one fetches.
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.last = nil
	n.result = rulesquery.SearchResult{}
	n.hasResult = false
}
