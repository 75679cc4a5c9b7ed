package rulesquery

import "math"

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// Paging selects one page of search results. PageIndex starts at 1.
type Paging struct {
	PageIndex int `json:"p"`
	PageSize  int `json:"ps"`
}

// DefaultPaging returns the first page with DefaultPageSize.
func DefaultPaging() Paging {
	return Paging{PageIndex: 1, PageSize: DefaultPageSize}
}

// Validate returns ErrInvalidPaging unless PageIndex >= 1 and 1 <= PageSize <= MaxPageSize
// and the Offset of the page fits into an int.
func (p Paging) Validate() error {
	if p.PageIndex < 1 || p.PageSize < 1 || p.PageSize > MaxPageSize {
		return ErrInvalidPaging
	}

	if p.PageIndex-1 > math.MaxInt/p.PageSize {
		return ErrInvalidPaging
	}

	return nil
}

// Offset returns the number of results skipped before this page.
func (p Paging) Offset() int {
	return (p.PageIndex - 1) * p.PageSize
}

// SearchResult is one page of rules matching a Query, together with the requested facet counts.
type SearchResult struct {
	Rules  Rules  `json:"rules"`
	Total  int    `json:"total"`
	Paging Paging `json:"paging"`
	Facets Facets `json:"facets"`
	Query  string `json:"query"`
}
