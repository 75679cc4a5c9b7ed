package httpapi_test

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

// searcherSpy is a canned RuleSearcher recording its calls.
type searcherSpy struct {
	mu             sync.Mutex
	rules          rulesquery.Rules
	total          int
	facets         rulesquery.Facets
	searchErr      error
	facetErr       error
	searchCalls    int
	facetCalls     int
	lastQuery      rulesquery.Query
	lastPaging     rulesquery.Paging
	lastFacets     []string
	lastRequestCtx context.Context
}

func (s *searcherSpy) Search(ctx context.Context, query rulesquery.Query, paging rulesquery.Paging) (rulesquery.Rules, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchCalls++
	s.lastQuery = query
	s.lastPaging = paging
	s.lastRequestCtx = ctx

	if s.searchErr != nil {
		return nil, 0, s.searchErr
	}

	return s.rules, s.total, nil
}

func (s *searcherSpy) FacetCounts(_ context.Context, _ rulesquery.Query, facets ...string) (rulesquery.Facets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.facetCalls++
	s.lastFacets = facets

	if s.facetErr != nil {
		return nil, s.facetErr
	}

	return s.facets, nil
}

func (s *searcherSpy) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.searchCalls, s.facetCalls
}
