package httpapi

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

const (
	paramPage     = "p"
	paramPageSize = "ps"
	paramFacets   = "facets"
	paramFacet    = "facet"
	paramA        = "a"
	paramB        = "b"
	statusOK      = "ok"
	cacheHit      = "HIT"
	cacheMiss     = "MISS"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := rulesquery.WithEventualConsistency(r.Context())
	raw := rulesquery.RawQueryFromValues(r.URL.Query())

	paging, pagingErr := parsePaging(raw)
	if pagingErr != nil {
		writeError(w, http.StatusBadRequest, pagingErr)
		return
	}

	facets := rulesquery.ParseArray(raw.GetAll(paramFacets))
	query := rulesquery.ParseQuery(raw).Canonical()
	encoded := rulesquery.SerializeQuery(query).Encode()
	key := cacheKey(encoded, paging, facets)

	if cached, ok := s.lookupCache(key); ok {
		s.recordCacheLookup(ctx, true)
		w.Header().Set(HeaderCache, cacheHit)
		writeJSON(w, http.StatusOK, cached)

		return
	}

	s.recordCacheLookup(ctx, false)

	rules, total, searchErr := s.searcher.Search(ctx, query, paging)
	if searchErr != nil {
		s.logError(ctx, logMsgSearchFailed, searchErr, logAttrQuery, encoded)
		writeError(w, statusForError(searchErr), searchErr)

		return
	}

	facetCounts := make(rulesquery.Facets)
	if len(facets) > 0 {
		counts, facetErr := s.searcher.FacetCounts(ctx, query, facets...)
		if facetErr != nil {
			s.logError(ctx, logMsgFacetsFailed, facetErr, logAttrQuery, encoded)
			writeError(w, statusForError(facetErr), facetErr)

			return
		}

		facetCounts = counts
	}

	result := rulesquery.SearchResult{
		Rules:  rules,
		Total:  total,
		Paging: paging,
		Facets: facetCounts,
		Query:  encoded,
	}

	s.storeInCache(key, result)
	w.Header().Set(HeaderCache, cacheMiss)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	raw := rulesquery.RawQueryFromValues(r.URL.Query())
	query := rulesquery.ParseQuery(raw)

	writeJSON(w, http.StatusOK, NormalizeResponse{
		Query:    rulesquery.SerializeQuery(query),
		Encoded:  rulesquery.SerializeQueryWithExtras(query, raw).Encode(),
		Extras:   rulesquery.SplitUnknown(raw),
		Open:     rulesquery.GetOpen(raw),
		Selected: rulesquery.GetSelected(raw),
	})
}

func (s *Server) handleEqual(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	a := rulesquery.ParseRawQuery(values.Get(paramA))
	b := rulesquery.ParseRawQuery(values.Get(paramB))

	writeJSON(w, http.StatusOK, EqualResponse{Equal: rulesquery.AreQueriesEqual(a, b)})
}

func (s *Server) handleFacetPolicy(w http.ResponseWriter, r *http.Request) {
	requested := rulesquery.ParseArray(r.URL.Query()[paramFacet])
	if len(requested) == 0 {
		writeError(w, http.StatusBadRequest, errMissingFacet)
		return
	}

	policies := make([]FacetPolicy, 0, len(requested))
	for _, facet := range requested {
		policies = append(policies, FacetPolicy{
			Facet:       facet,
			Requestable: rulesquery.ShouldRequestFacet(facet),
			ServerFacet: rulesquery.GetServerFacet(facet),
			Expanded:    rulesquery.ExpandFacets([]string{facet}),
		})
	}

	writeJSON(w, http.StatusOK, FacetPolicyResponse{Facets: policies})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK})
}

// parsePaging reads p and ps, defaulting to rulesquery.DefaultPaging.
func parsePaging(raw rulesquery.RawQuery) (rulesquery.Paging, error) {
	paging := rulesquery.DefaultPaging()

	if value, ok := raw.Get(paramPage); ok {
		page, err := strconv.Atoi(value)
		if err != nil {
			return paging, errInvalidPagingParam
		}

		paging.PageIndex = page
	}

	if value, ok := raw.Get(paramPageSize); ok {
		pageSize, err := strconv.Atoi(value)
		if err != nil {
			return paging, errInvalidPagingParam
		}

		paging.PageSize = pageSize
	}

	if err := paging.Validate(); err != nil {
		return paging, err
	}

	return paging, nil
}

// cacheKey combines the canonical query with paging and the facet request.
func cacheKey(encodedQuery string, paging rulesquery.Paging, facets []string) string {
	sortedFacets := slices.Clone(facets)
	slices.Sort(sortedFacets)
	sortedFacets = slices.Compact(sortedFacets)

	return strings.Join([]string{
		encodedQuery,
		strconv.Itoa(paging.PageIndex),
		strconv.Itoa(paging.PageSize),
		strings.Join(sortedFacets, ","),
	}, "|")
}
