package searchclient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/searchclient"
)

// countingSearcher answers with the number of the call as total.
type countingSearcher struct {
	calls      int
	err        error
	lastFacets []string
}

func (s *countingSearcher) Search(
	_ context.Context,
	_ rulesquery.RawQuery,
	_ rulesquery.Paging,
	facets ...string,
) (rulesquery.SearchResult, error) {

	s.calls++
	s.lastFacets = facets

	if s.err != nil {
		return rulesquery.SearchResult{}, s.err
	}

	return rulesquery.SearchResult{Total: s.calls}, nil
}

//nolint:funlen
func Test_Navigator_Navigate(t *testing.T) {
	// setup
	searcher := &countingSearcher{}
	navigator := searchclient.NewNavigator(searcher, rulesquery.DefaultPaging(), rulesquery.FacetLanguages)
	ctx := context.Background()

	steps := []struct {
		description     string
		rawQuery        string
		expectedFetched bool
		expectedTotal   int
	}{
		{description: "first navigation", rawQuery: "languages=java&tags=cwe", expectedFetched: true, expectedTotal: 1},
		{description: "reordered", rawQuery: "tags=cwe&languages=java", expectedFetched: false, expectedTotal: 1},
		{description: "view state only", rawQuery: "tags=cwe&languages=java&open=java:S1&severities=", expectedFetched: false, expectedTotal: 1},
		{description: "changed filter", rawQuery: "tags=cwe&languages=py", expectedFetched: true, expectedTotal: 2},
		{description: "flag casing", rawQuery: "tags=cwe&languages=py&is_template=TRUE", expectedFetched: false, expectedTotal: 2},
		{description: "flag", rawQuery: "tags=cwe&languages=py&is_template=true", expectedFetched: true, expectedTotal: 3},
	}

	for _, step := range steps {
		// act
		result, fetched, err := navigator.Navigate(ctx, rulesquery.ParseRawQuery(step.rawQuery))

		// assert
		require.NoError(t, err, step.description)
		assert.Equal(t, step.expectedFetched, fetched, step.description)
		assert.Equal(t, step.expectedTotal, result.Total, step.description)
	}

	assert.Equal(t, []string{rulesquery.FacetLanguages}, searcher.lastFacets)
}

func Test_Navigator_FetchesAgainAfterError(t *testing.T) {
	// setup
	searcher := &countingSearcher{err: errors.New("unavailable")}
	navigator := searchclient.NewNavigator(searcher, rulesquery.DefaultPaging())
	raw := rulesquery.ParseRawQuery("languages=java")

	// act
	_, _, firstErr := navigator.Navigate(context.Background(), raw)
	searcher.err = nil
	result, fetched, secondErr := navigator.Navigate(context.Background(), raw)

	// assert
	require.Error(t, firstErr)
	require.NoError(t, secondErr)
	assert.True(t, fetched)
	assert.Equal(t, 2, result.Total)
}

func Test_Navigator_Reset(t *testing.T) {
	// setup
	searcher := &countingSearcher{}
	navigator := searchclient.NewNavigator(searcher, rulesquery.DefaultPaging())
	raw := rulesquery.ParseRawQuery("languages=java")
	_, _, err := navigator.Navigate(context.Background(), raw)
	require.NoError(t, err, "error in arranging test data")

	// act
	navigator.Reset()
	_, fetched, err := navigator.Navigate(context.Background(), raw)

	// assert
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, 2, searcher.calls)
}

func Test_Navigator_KeepsOwnCopyOfQuery(t *testing.T) {
	// setup
	searcher := &countingSearcher{}
	navigator := searchclient.NewNavigator(searcher, rulesquery.DefaultPaging())
	raw := rulesquery.ParseRawQuery("languages=java")
	_, _, err := navigator.Navigate(context.Background(), raw)
	require.NoError(t, err, "error in arranging test data")

	// act
	raw.Set("languages", "py")
	_, fetched, err := navigator.Navigate(context.Background(), raw)

	// assert
	require.NoError(t, err)
	assert.True(t, fetched)
}
